// Package labelme reads labelme annotation files.
//
// A labelme file is a JSON document describing one image and the shapes drawn
// on it:
//
//	{
//	  "version": "5.2.1",
//	  "flags": {},
//	  "shapes": [
//	    {"label": "BLX", "points": [[1, 1], [4, 4]], "group_id": null,
//	     "shape_type": "rectangle", "flags": {}}
//	  ],
//	  "imagePath": "card_001.jpg",
//	  "imageData": "<base64>",
//	  "imageHeight": 480,
//	  "imageWidth": 640
//	}
//
// # Image Dimensions
//
// Masks must match the image's pixel grid, so ResolveImage determines the
// image size from, in order of preference:
//
//  1. The embedded imageData, decoded with EXIF auto-orientation
//  2. The file named by imagePath, relative to the annotation file
//  3. The imageHeight and imageWidth header fields
//
// JPEG, PNG, GIF, BMP, TIFF and WebP images are supported. Only the decoded
// size is used; pixel data is not retained.
package labelme
