// Package cli implements the labelme2coco command-line interface.
//
// The tool is a single cobra command that loads the label file and group
// configuration, discovers annotation files, converts them in parallel and
// writes <output-dir>/<set-name>/annotations.json.
//
// # Logging
//
// Logs go to stderr through charmbracelet/log. Debug output is enabled by
// --verbose or by setting LABELME2COCO_LOG_LEVEL=debug.
package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/labelme2coco/internal/buildinfo"
)

const (
	appName = "labelme2coco"

	// EnvLogLevel names the environment variable holding the log level.
	EnvLogLevel = "LABELME2COCO_LOG_LEVEL"

	// OutputFile is the name of the dataset file inside the set directory.
	OutputFile = "annotations.json"
)

// CLI holds state shared by the command.
type CLI struct {
	Logger *log.Logger

	now func() time.Time
}

// New creates a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		now: time.Now,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LevelFromEnv returns the level named by LABELME2COCO_LOG_LEVEL, or info
// when it is unset or unrecognised.
func LevelFromEnv() log.Level {
	v := strings.TrimSpace(os.Getenv(EnvLogLevel))
	if v == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(strings.ToLower(v))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// RootCommand creates the labelme2coco command.
func (c *CLI) RootCommand() *cobra.Command {
	opts := DefaultOptions()
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "Convert labelme annotations to a COCO instance-segmentation dataset",
		Long: `labelme2coco reads labelme JSON files, merges shapes that share a label and
group id into object instances, maps each label to an output category through
the configured groups, and writes a COCO dataset with RLE-derived areas and
bounding boxes.`,
		Example: `  labelme2coco --input-dir data --output-dir out --labels labels.txt
  labelme2coco --input-dir data --output-dir out --labels labels.txt \
      --grouped-layout --set-name val --config groups.toml`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			return c.convert(cmd.Context(), opts)
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	f := root.Flags()
	f.StringVar(&opts.InputDir, "input-dir", "", "input annotated directory")
	f.StringVar(&opts.Pattern, "pattern", opts.Pattern, "glob matching annotation files (supports **)")
	f.StringVar(&opts.OutputDir, "output-dir", "", "output dataset directory")
	f.StringVar(&opts.SetName, "set-name", opts.SetName, "dataset split name")
	f.StringVar(&opts.Labels, "labels", "", "labels file, first line must be __ignore__")
	f.StringVar(&opts.Config, "config", "", "TOML file with dataset info and label groups (default: built-in CARD group)")
	f.BoolVar(&opts.GroupedLayout, "grouped-layout", false, "read <input-dir>/<label>/<set-name>/<pattern> for each member of --group")
	f.StringVar(&opts.Group, "group", opts.Group, "group whose members name the input subdirectories")
	f.IntVar(&opts.Workers, "workers", opts.Workers, "images processed in parallel")
	f.StringVar(&opts.IDScheme, "id-scheme", opts.IDScheme, "ids for ungrouped shapes: uuid or counter")
	f.StringVar(&opts.Segmentation, "segmentation", opts.Segmentation, "segmentation output: polygon or rle")
	f.BoolVar(&opts.Overwrite, "overwrite", false, "replace an existing annotations.json")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	_ = root.MarkFlagRequired("input-dir")
	_ = root.MarkFlagRequired("output-dir")
	_ = root.MarkFlagRequired("labels")

	return root
}
