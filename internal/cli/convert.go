package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/labelme2coco/internal/category"
	"github.com/ironsheep/labelme2coco/internal/coco"
	"github.com/ironsheep/labelme2coco/internal/convert"
)

// OutputPath returns where the dataset for opts is written.
func (o *Options) OutputPath() string {
	return filepath.Join(o.OutputDir, o.SetName, OutputFile)
}

func (c *CLI) convert(ctx context.Context, opts Options) error {
	start := time.Now()
	out := opts.OutputPath()

	// Fail before doing any work rather than after.
	if !opts.Overwrite {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%w: %s (use --overwrite to replace it)", coco.ErrOutputExists, out)
		}
	}

	cats, err := category.LoadLabels(opts.Labels)
	if err != nil {
		return err
	}
	for _, id := range category.Blank(cats) {
		c.Logger.Warn("blank line in labels file reserves a category with no name", "labels", opts.Labels, "id", id)
	}
	cfg, err := c.loadConfig(opts.Config)
	if err != nil {
		return err
	}
	table, err := cfg.Table()
	if err != nil {
		return err
	}
	resolver := category.NewResolver(cats, table)
	for _, name := range resolver.Unused() {
		c.Logger.Warn("group matches no category in labels file", "group", name)
	}
	c.Logger.Debug("loaded categories", "labels", opts.Labels, "categories", len(cats), "groups", len(table.Groups()))

	inputs, err := c.discover(opts, table)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		c.Logger.Warn("no annotation files found", "dir", opts.InputDir, "pattern", opts.Pattern)
	}
	c.Logger.Info("creating dataset", "output", out, "files", len(inputs), "workers", opts.Workers)

	ids, err := opts.idGenerator()
	if err != nil {
		return err
	}
	format, err := coco.ParseSegmentationFormat(opts.Segmentation)
	if err != nil {
		return err
	}
	conv := convert.NewConverter(resolver, ids, coco.NewInfo(cfg.Info, c.now()), c.Logger)
	conv.Workers = opts.Workers
	conv.Format = format

	ds, sum, err := conv.Run(ctx, inputs)
	if err != nil {
		return err
	}
	if err := ds.WriteFile(out, opts.Overwrite); err != nil {
		return err
	}

	c.Logger.Info("wrote dataset",
		"output", out,
		"images", sum.Images,
		"annotations", sum.Annotations,
		"failed", sum.Failed,
		"dropped", sum.Dropped,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (c *CLI) loadConfig(path string) (*category.Config, error) {
	if path == "" {
		return category.DefaultConfig(), nil
	}
	cfg, err := category.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", path, "groups", len(cfg.Groups))
	return cfg, nil
}

func (c *CLI) discover(opts Options, table *category.GroupTable) ([]convert.Input, error) {
	if !opts.GroupedLayout {
		return convert.Discover(opts.InputDir, opts.Pattern)
	}
	inputs, err := convert.DiscoverGrouped(opts.InputDir, opts.SetName, opts.Pattern, table, opts.Group)
	if errors.Is(err, convert.ErrUnknownGroup) {
		return nil, fmt.Errorf("--group: %w", err)
	}
	return inputs, err
}
