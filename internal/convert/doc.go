// Package convert turns a set of labelme annotation files into one COCO
// dataset.
//
// # Pipeline
//
// Each image is handled by ProcessImage, which runs independently of every
// other image:
//
//	labelme file → image size → shapes → instances → category → RLE area/bbox
//
// The result is either a success payload (image record and annotations, ids
// unassigned) or an *ImageError naming the input. Panics inside the pipeline
// are recovered and reported as failures of that image.
//
// # Running
//
// Run processes images in parallel, keeps results indexed by input position,
// and then makes one ordered pass that logs failures and assigns image and
// annotation ids. The output is therefore identical regardless of worker
// count or completion order.
//
// # Discovery
//
// Discover finds annotation files with a doublestar pattern such as
// "**/*.json". DiscoverGrouped walks the per-label layout
// <root>/<member>/<set>/<pattern> for every member of one group.
package convert
