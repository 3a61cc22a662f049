package category

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// IgnoreSentinel must be the first line of every label file.
const IgnoreSentinel = "__ignore__"

var (
	// ErrMissingSentinel is returned when a label file does not start with
	// IgnoreSentinel.
	ErrMissingSentinel = errors.New("label file must start with " + IgnoreSentinel)

	// ErrDuplicateLabel is returned when a class name appears twice.
	ErrDuplicateLabel = errors.New("duplicate class name")
)

// Category is one output class.
type Category struct {
	ID   int
	Name string
}

// LoadLabels reads a label file from disk.
func LoadLabels(path string) ([]Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open label file: %w", err)
	}
	defer f.Close()

	cats, err := ParseLabels(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cats, nil
}

// ParseLabels reads newline-delimited class names. The first line must be
// IgnoreSentinel and every following line becomes a category with the next
// id, so a class keeps the id given by its line number. Surrounding whitespace
// is trimmed. A blank line between class names still takes an id and yields a
// category with an empty name; blank lines at the end of the file are
// dropped.
func ParseLabels(r io.Reader) ([]Category, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read labels: %w", err)
		}
		return nil, ErrMissingSentinel
	}
	if first := strings.TrimSpace(scanner.Text()); first != IgnoreSentinel {
		return nil, fmt.Errorf("%w, got %q", ErrMissingSentinel, first)
	}

	var cats []Category
	seen := make(map[string]bool)
	blanks := 0
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			blanks++
			continue
		}
		for ; blanks > 0; blanks-- {
			cats = append(cats, Category{ID: len(cats)})
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, name)
		}
		seen[name] = true
		cats = append(cats, Category{ID: len(cats), Name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return cats, nil
}

// Blank returns the ids of categories with an empty name.
func Blank(cats []Category) []int {
	var ids []int
	for _, c := range cats {
		if c.Name == "" {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
