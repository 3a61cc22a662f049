package coco

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/labelme2coco/internal/category"
	"github.com/ironsheep/labelme2coco/internal/mask"
)

// ErrOutputExists is returned by WriteFile when the target exists and
// overwriting was not requested.
var ErrOutputExists = errors.New("output file already exists")

// ImageDir is the directory image file names are placed under.
const ImageDir = "JPEGImages"

// ImageFileName returns the file_name recorded for an annotation file base.
func ImageFileName(base string) string {
	return ImageDir + "/" + base + ".jpg"
}

// Assembler accumulates images and annotations, assigning ids in call
// order. Image and annotation ids both start at 0. Not safe for concurrent
// use.
type Assembler struct {
	ds     Dataset
	nextIm int
	nextAn int
}

// NewAssembler starts a dataset with the given header and categories.
func NewAssembler(info Info, categories []category.Category) *Assembler {
	a := &Assembler{
		ds: Dataset{
			Info:        info,
			Licenses:    []License{{ID: 0}},
			Images:      []Image{},
			Type:        DatasetType,
			Annotations: []Annotation{},
			Categories:  make([]Category, 0, len(categories)),
		},
	}
	for _, c := range categories {
		a.ds.Categories = append(a.ds.Categories, Category{ID: c.ID, Name: c.Name})
	}
	return a
}

// AddImage records an image and returns its id.
func (a *Assembler) AddImage(fileName string, width, height int) int {
	id := a.nextIm
	a.nextIm++
	a.ds.Images = append(a.ds.Images, Image{
		FileName: fileName,
		Height:   height,
		Width:    width,
		ID:       id,
	})
	return id
}

// AddAnnotation records an instance of imageID and returns its id.
func (a *Assembler) AddAnnotation(imageID, categoryID int, seg Segmentation, area float64, bbox mask.BBox) int {
	id := a.nextAn
	a.nextAn++
	a.ds.Annotations = append(a.ds.Annotations, Annotation{
		ID:           id,
		ImageID:      imageID,
		CategoryID:   categoryID,
		Segmentation: seg,
		Area:         area,
		BBox:         bbox,
		IsCrowd:      0,
	})
	return id
}

// Dataset returns the assembled document. The result shares storage with the
// assembler.
func (a *Assembler) Dataset() *Dataset {
	return &a.ds
}

// WriteFile writes the dataset as JSON to path, creating parent directories.
//
// The document is written to a temporary file in the same directory and
// renamed into place, so readers never see a partial file.
func (a *Assembler) WriteFile(path string, overwrite bool) error {
	return a.ds.WriteFile(path, overwrite)
}

// WriteFile writes d as JSON to path. See Assembler.WriteFile.
func (d *Dataset) WriteFile(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrOutputExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat output: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := json.NewEncoder(tmp).Encode(d); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	committed = true
	return nil
}
