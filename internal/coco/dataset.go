// Package coco builds COCO instance-segmentation dataset documents.
//
// Field order in every type matches the order keys appear in the written
// JSON, which is the order COCO tooling conventionally emits.
package coco

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ironsheep/labelme2coco/internal/category"
	"github.com/ironsheep/labelme2coco/internal/mask"
)

// DateFormat is the layout of Info.DateCreated.
const DateFormat = "2006-01-02 15:04:05.000000"

// DatasetType is the value of the top-level "type" key.
const DatasetType = "instances"

// Info is the dataset header.
type Info struct {
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Version     *string `json:"version"`
	Year        int     `json:"year"`
	Contributor *string `json:"contributor"`
	DateCreated string  `json:"date_created"`
}

// NewInfo builds a header from configured metadata and the creation time.
func NewInfo(meta category.Info, now time.Time) Info {
	return Info{
		Description: meta.Description,
		URL:         meta.URL,
		Version:     meta.Version,
		Year:        now.Year(),
		Contributor: meta.Contributor,
		DateCreated: now.Format(DateFormat),
	}
}

// License is a dataset license entry. Every image references license 0.
type License struct {
	URL  *string `json:"url"`
	ID   int     `json:"id"`
	Name *string `json:"name"`
}

// Image is one image record.
type Image struct {
	License      int     `json:"license"`
	URL          *string `json:"url"`
	FileName     string  `json:"file_name"`
	Height       int     `json:"height"`
	Width        int     `json:"width"`
	DateCaptured *string `json:"date_captured"`
	ID           int     `json:"id"`
}

// SegmentationFormat selects how annotation regions are written.
type SegmentationFormat string

const (
	// FormatPolygon writes one flat coordinate list per drawn shape.
	FormatPolygon SegmentationFormat = "polygon"

	// FormatRLE writes the merged instance mask as a compressed RLE object.
	FormatRLE SegmentationFormat = "rle"
)

// ParseSegmentationFormat validates a format name. An empty name means
// FormatPolygon.
func ParseSegmentationFormat(name string) (SegmentationFormat, error) {
	switch f := SegmentationFormat(name); f {
	case "":
		return FormatPolygon, nil
	case FormatPolygon, FormatRLE:
		return f, nil
	default:
		return "", fmt.Errorf("unknown segmentation format %q (want %q or %q)", name, FormatPolygon, FormatRLE)
	}
}

// Segmentation is an annotation region. It is written as the RLE object when
// RLE is set and as the polygon list otherwise.
type Segmentation struct {
	Polygons [][]float64
	RLE      *mask.CompressedRLE
}

// MarshalJSON implements json.Marshaler.
func (s Segmentation) MarshalJSON() ([]byte, error) {
	if s.RLE != nil {
		return json.Marshal(s.RLE)
	}
	return json.Marshal(s.Polygons)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Segmentation) UnmarshalJSON(data []byte) error {
	*s = Segmentation{}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var rle mask.CompressedRLE
		if err := json.Unmarshal(trimmed, &rle); err != nil {
			return err
		}
		s.RLE = &rle
		return nil
	}
	return json.Unmarshal(data, &s.Polygons)
}

// Annotation is one object instance.
type Annotation struct {
	ID           int          `json:"id"`
	ImageID      int          `json:"image_id"`
	CategoryID   int          `json:"category_id"`
	Segmentation Segmentation `json:"segmentation"`
	Area         float64      `json:"area"`
	BBox         [4]float64   `json:"bbox"`
	IsCrowd      int          `json:"iscrowd"`
}

// Category is an output category.
type Category struct {
	Supercategory *string `json:"supercategory"`
	ID            int     `json:"id"`
	Name          string  `json:"name"`
}

// Dataset is the complete output document.
type Dataset struct {
	Info        Info         `json:"info"`
	Licenses    []License    `json:"licenses"`
	Images      []Image      `json:"images"`
	Type        string       `json:"type"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}
