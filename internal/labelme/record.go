package labelme

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/labelme2coco/internal/shape"
)

// ErrInvalidRecord is returned for annotation files with malformed content.
var ErrInvalidRecord = errors.New("invalid labelme record")

// Record is one parsed annotation file.
type Record struct {
	// Path is the file the record was read from. Empty for records parsed
	// from memory.
	Path string

	// Version is the labelme version that wrote the file.
	Version string

	// Shapes are the drawn shapes in file order.
	Shapes []shape.Shape

	// ImagePath names the annotated image relative to the record's directory.
	ImagePath string

	// ImageData is the base64 image embedded in the file, if any.
	ImageData string

	// ImageHeight and ImageWidth are the header dimensions, 0 when absent.
	ImageHeight int
	ImageWidth  int
}

// Base returns the record's file name without directory and extension.
func (r *Record) Base() string {
	name := r.Path
	if name == "" {
		name = r.ImagePath
	}
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type fileJSON struct {
	Version     string          `json:"version"`
	Flags       map[string]bool `json:"flags"`
	Shapes      []shapeJSON     `json:"shapes"`
	ImagePath   string          `json:"imagePath"`
	ImageData   *string         `json:"imageData"`
	ImageHeight *int            `json:"imageHeight"`
	ImageWidth  *int            `json:"imageWidth"`
}

type shapeJSON struct {
	Label       string          `json:"label"`
	Points      [][]float64     `json:"points"`
	GroupID     *int            `json:"group_id"`
	ShapeType   string          `json:"shape_type"`
	Flags       map[string]bool `json:"flags"`
	Description string          `json:"description"`
}

// Load reads and parses an annotation file.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation: %w", err)
	}
	rec, err := Parse(data)
	if err != nil {
		return nil, err
	}
	rec.Path = path
	return rec, nil
}

// Parse decodes annotation JSON.
func Parse(data []byte) (*Record, error) {
	var raw fileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	rec := &Record{
		Version:   raw.Version,
		ImagePath: raw.ImagePath,
		Shapes:    make([]shape.Shape, 0, len(raw.Shapes)),
	}
	if raw.ImageData != nil {
		rec.ImageData = *raw.ImageData
	}
	if raw.ImageHeight != nil {
		rec.ImageHeight = *raw.ImageHeight
	}
	if raw.ImageWidth != nil {
		rec.ImageWidth = *raw.ImageWidth
	}

	for i, s := range raw.Shapes {
		points := make([]shape.Point, len(s.Points))
		for j, p := range s.Points {
			if len(p) != 2 {
				return nil, fmt.Errorf("%w: shape %d (%s) point %d has %d coordinates",
					ErrInvalidRecord, i, s.Label, j, len(p))
			}
			points[j] = shape.Point{X: p[0], Y: p[1]}
		}
		rec.Shapes = append(rec.Shapes, shape.Shape{
			Label:   s.Label,
			GroupID: s.GroupID,
			Type:    shape.Type(s.ShapeType),
			Points:  points,
		})
	}
	return rec, nil
}
