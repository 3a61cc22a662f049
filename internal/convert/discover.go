package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ironsheep/labelme2coco/internal/category"
)

// DefaultPattern matches every JSON file below the root.
const DefaultPattern = "**/*.json"

// ErrUnknownGroup is returned by DiscoverGrouped for a group not in the table.
var ErrUnknownGroup = errors.New("unknown group")

// Discover returns the files under root matching pattern, sorted by path.
func Discover(root, pattern string) ([]Input, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, pattern)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input %s is not a directory", root)
	}

	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to match %q: %w", pattern, err)
	}
	sort.Strings(matches)

	inputs := make([]Input, len(matches))
	for i, m := range matches {
		inputs[i] = Input{Source: filepath.Join(root, filepath.FromSlash(m))}
	}
	return inputs, nil
}

// DiscoverGrouped walks <root>/<member>/<set> for each member of group, in
// member order. Members without a directory are skipped.
func DiscoverGrouped(root, set, pattern string, table *category.GroupTable, group string) ([]Input, error) {
	g, ok := table.Lookup(group)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}

	var inputs []Input
	for _, member := range g.Members {
		dir := filepath.Join(root, member, set)
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			continue
		}
		found, err := Discover(dir, pattern)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", member, err)
		}
		inputs = append(inputs, found...)
	}
	return inputs, nil
}
