package convert

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/labelme2coco/internal/category"
	"github.com/ironsheep/labelme2coco/internal/coco"
	"github.com/ironsheep/labelme2coco/internal/instance"
	"github.com/ironsheep/labelme2coco/internal/labelme"
	"github.com/ironsheep/labelme2coco/internal/mask"
)

// ErrPanic wraps a panic recovered while processing an image.
var ErrPanic = errors.New("panic during conversion")

// Converter runs the per-image pipeline over many inputs.
//
// Configuration fields must not change once Run starts. A Converter may be
// shared between goroutines.
type Converter struct {
	Resolver *category.Resolver
	IDs      instance.IDGenerator
	Info     coco.Info
	Logger   *log.Logger

	// Sizes shares decoded image sizes between inputs. May be nil.
	Sizes *labelme.SizeCache

	// Format selects polygon or RLE segmentations. Empty means polygon.
	Format coco.SegmentationFormat

	// Workers bounds the number of images processed at once. Zero means
	// GOMAXPROCS.
	Workers int
}

// NewConverter creates a converter. A nil ids uses UUID group ids and a nil
// logger uses log.Default().
func NewConverter(resolver *category.Resolver, ids instance.IDGenerator, info coco.Info, logger *log.Logger) *Converter {
	if ids == nil {
		ids = instance.UUID()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Converter{
		Resolver: resolver,
		IDs:      ids,
		Info:     info,
		Logger:   logger,
		Sizes:    labelme.NewSizeCache(),
	}
}

func (c *Converter) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ProcessImage converts one annotation file. It never returns a partial
// result: on any failure only Source and Err are set.
func (c *Converter) ProcessImage(ctx context.Context, in Input) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(in, fmt.Errorf("%w: %v\n%s", ErrPanic, r, debug.Stack()))
		}
	}()

	if err := ctx.Err(); err != nil {
		return failed(in, err)
	}

	rec, err := labelme.Load(in.Source)
	if err != nil {
		return failed(in, err)
	}
	info, err := labelme.ResolveImageCached(rec, c.Sizes)
	if err != nil {
		return failed(in, err)
	}

	instances, err := instance.Aggregate(rec.Shapes, info.Width, info.Height, c.IDs)
	if err != nil {
		return failed(in, err)
	}

	res = Result{
		Source: in.Source,
		Image: Image{
			FileName: coco.ImageFileName(rec.Base()),
			Width:    info.Width,
			Height:   info.Height,
			Info:     info,
		},
		Annotations: make([]Annotation, 0, len(instances)),
	}
	for _, inst := range instances {
		cat, ok := c.Resolver.Resolve(inst.Key.Label)
		if !ok {
			res.Dropped = append(res.Dropped, inst.Key.Label)
			continue
		}
		rle := mask.Encode(inst.Mask)
		seg := coco.Segmentation{Polygons: inst.Segmentation}
		if c.Format == coco.FormatRLE {
			compressed := rle.Compressed()
			seg = coco.Segmentation{RLE: &compressed}
		}
		res.Annotations = append(res.Annotations, Annotation{
			CategoryID:   cat.ID,
			Segmentation: seg,
			Area:         float64(rle.Area()),
			BBox:         rle.BBox(),
		})
	}
	return res
}

func failed(in Input, err error) Result {
	return Result{Source: in.Source, Err: &ImageError{Source: in.Source, Err: err}}
}

// Run converts inputs and assembles the dataset.
//
// Per-image failures are logged and counted but do not stop the run. The
// returned error is non-nil only when ctx is cancelled, in which case images
// not yet started are skipped and no dataset is returned.
func (c *Converter) Run(ctx context.Context, inputs []Input) (*coco.Dataset, Summary, error) {
	results := make([]Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = c.ProcessImage(gctx, in)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}

	asm := coco.NewAssembler(c.Info, c.Resolver.Categories())
	sum := Summary{Inputs: len(inputs)}
	for i := range results {
		res := &results[i]
		if !res.OK() {
			sum.Failed++
			c.Logger.Error("failed to convert image", "file", res.Source, "err", res.Err.Err)
			continue
		}
		if res.Image.Info != nil && res.Image.Info.HeaderMismatch {
			c.Logger.Warn("image size differs from annotation header",
				"file", res.Source, "width", res.Image.Width, "height", res.Image.Height)
		}
		for _, label := range res.Dropped {
			c.Logger.Debug("dropped instance with no category", "file", res.Source, "label", label)
		}

		imageID := asm.AddImage(res.Image.FileName, res.Image.Width, res.Image.Height)
		for _, ann := range res.Annotations {
			asm.AddAnnotation(imageID, ann.CategoryID, ann.Segmentation, ann.Area, ann.BBox)
		}
		sum.Images++
		sum.Annotations += len(res.Annotations)
		sum.Dropped += len(res.Dropped)
		c.Logger.Debug("converted image", "file", res.Source, "id", imageID, "annotations", len(res.Annotations))
	}

	return asm.Dataset(), sum, nil
}
