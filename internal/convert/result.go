package convert

import (
	"fmt"

	"github.com/ironsheep/labelme2coco/internal/coco"
	"github.com/ironsheep/labelme2coco/internal/labelme"
	"github.com/ironsheep/labelme2coco/internal/mask"
)

// Input identifies one annotation file.
type Input struct {
	Source string
}

// Annotation is an encoded instance awaiting id assignment.
type Annotation struct {
	CategoryID   int
	Segmentation coco.Segmentation
	Area         float64
	BBox         mask.BBox
}

// Image is the image record of a processed input.
type Image struct {
	FileName string
	Width    int
	Height   int
	Info     *labelme.ImageInfo
}

// Result is the outcome of processing one input. Exactly one of Err or the
// success fields is meaningful.
type Result struct {
	Source      string
	Image       Image
	Annotations []Annotation

	// Dropped lists labels of instances with no category.
	Dropped []string

	Err *ImageError
}

// OK reports whether the image was processed successfully.
func (r *Result) OK() bool {
	return r.Err == nil
}

// ImageError is a failure confined to one input.
type ImageError struct {
	Source string
	Err    error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// Summary counts what a run produced.
type Summary struct {
	Inputs      int
	Images      int
	Failed      int
	Annotations int
	Dropped     int
}
