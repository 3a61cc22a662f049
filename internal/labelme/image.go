package labelme

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrNoImage is returned when a record carries no way to size its image.
var ErrNoImage = errors.New("no image data, image file or header dimensions")

// Source names where an image size came from.
type Source string

const (
	SourceImageData Source = "imageData"
	SourceImagePath Source = "imagePath"
	SourceHeader    Source = "header"
)

// ImageInfo describes the annotated image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Source is where the dimensions were read from.
	Source Source `json:"source"`

	// HeaderMismatch is true when the decoded size disagrees with the
	// imageHeight/imageWidth fields of the record. The decoded size wins.
	HeaderMismatch bool `json:"header_mismatch"`
}

// ResolveImage determines the pixel dimensions of the record's image.
//
// Embedded data is preferred, then the referenced file, then the header
// fields. A referenced file that does not exist falls through to the header;
// any other read or decode failure is returned.
func ResolveImage(rec *Record) (*ImageInfo, error) {
	return ResolveImageCached(rec, nil)
}

// ResolveImageCached is ResolveImage with decoded file sizes shared through
// cache. A nil cache disables caching.
func ResolveImageCached(rec *Record, cache *SizeCache) (*ImageInfo, error) {
	if rec.ImageData != "" {
		w, h, err := embeddedSize(rec.ImageData)
		if err != nil {
			return nil, err
		}
		return rec.infoFor(w, h, SourceImageData), nil
	}

	if rec.ImagePath != "" {
		path := rec.ImagePath
		if !filepath.IsAbs(path) && rec.Path != "" {
			path = filepath.Join(filepath.Dir(rec.Path), path)
		}
		path = filepath.Clean(path)
		if w, h, ok := cache.get(path); ok {
			return rec.infoFor(w, h, SourceImagePath), nil
		}
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		switch {
		case err == nil:
			b := img.Bounds()
			cache.put(path, b.Dx(), b.Dy())
			return rec.infoFor(b.Dx(), b.Dy(), SourceImagePath), nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to load image %s: %w", path, err)
		}
	}

	if rec.ImageWidth > 0 && rec.ImageHeight > 0 {
		return &ImageInfo{Width: rec.ImageWidth, Height: rec.ImageHeight, Source: SourceHeader}, nil
	}
	return nil, ErrNoImage
}

// embeddedSize reads the displayed size of base64 imageData from the image
// header alone. EXIF orientations that rotate by 90 degrees swap the axes,
// as imaging.AutoOrientation does for files.
func embeddedSize(data string) (width, height int, err error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode imageData: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	if swapsAxes(exifOrientation(raw)) {
		return cfg.Height, cfg.Width, nil
	}
	return cfg.Width, cfg.Height, nil
}

func (r *Record) infoFor(width, height int, src Source) *ImageInfo {
	info := &ImageInfo{Width: width, Height: height, Source: src}
	if r.ImageWidth > 0 && r.ImageHeight > 0 {
		info.HeaderMismatch = r.ImageWidth != width || r.ImageHeight != height
	}
	return info
}
