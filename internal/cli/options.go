package cli

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/ironsheep/labelme2coco/internal/coco"
	"github.com/ironsheep/labelme2coco/internal/convert"
	"github.com/ironsheep/labelme2coco/internal/instance"
)

// ID schemes for shapes without a group id.
const (
	IDSchemeUUID    = "uuid"
	IDSchemeCounter = "counter"
)

// ErrInvalidOption is returned for flag values that cannot be used.
var ErrInvalidOption = errors.New("invalid option")

// Options are the command's flags.
type Options struct {
	InputDir      string
	Pattern       string
	OutputDir     string
	SetName       string
	Labels        string
	Config        string
	GroupedLayout bool
	Group         string
	Workers       int
	IDScheme      string
	Segmentation  string
	Overwrite     bool
}

// DefaultOptions returns the flag defaults.
func DefaultOptions() Options {
	return Options{
		Pattern:      convert.DefaultPattern,
		SetName:      "train",
		Group:        "CARD",
		Workers:      runtime.GOMAXPROCS(0),
		IDScheme:     IDSchemeUUID,
		Segmentation: string(coco.FormatPolygon),
	}
}

// Validate checks option values.
func (o *Options) Validate() error {
	switch {
	case o.InputDir == "":
		return fmt.Errorf("%w: --input-dir is required", ErrInvalidOption)
	case o.OutputDir == "":
		return fmt.Errorf("%w: --output-dir is required", ErrInvalidOption)
	case o.Labels == "":
		return fmt.Errorf("%w: --labels is required", ErrInvalidOption)
	case o.Pattern == "":
		return fmt.Errorf("%w: --pattern must not be empty", ErrInvalidOption)
	case o.SetName == "":
		return fmt.Errorf("%w: --set-name must not be empty", ErrInvalidOption)
	case o.Workers < 1:
		return fmt.Errorf("%w: --workers must be at least 1, got %d", ErrInvalidOption, o.Workers)
	case o.GroupedLayout && o.Group == "":
		return fmt.Errorf("%w: --group is required with --grouped-layout", ErrInvalidOption)
	}
	if _, err := o.idGenerator(); err != nil {
		return err
	}
	if _, err := coco.ParseSegmentationFormat(o.Segmentation); err != nil {
		return fmt.Errorf("%w: --segmentation: %v", ErrInvalidOption, err)
	}
	return nil
}

func (o *Options) idGenerator() (instance.IDGenerator, error) {
	switch o.IDScheme {
	case IDSchemeUUID:
		return instance.UUID(), nil
	case IDSchemeCounter:
		return instance.NewCounter(""), nil
	default:
		return nil, fmt.Errorf("%w: --id-scheme must be %s or %s, got %q",
			ErrInvalidOption, IDSchemeUUID, IDSchemeCounter, o.IDScheme)
	}
}
