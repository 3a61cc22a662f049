package category

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed default.toml
var defaultConfig string

var (
	// ErrInvalidGroup is returned for group table entries without a name.
	ErrInvalidGroup = errors.New("invalid group")

	// ErrUnknownKey is returned for config keys that match no field.
	ErrUnknownKey = errors.New("unknown key")
)

// Group is a top-level category and the fine-grained labels it contains.
type Group struct {
	Name    string   `toml:"name"`
	Members []string `toml:"members"`
}

// Info holds the optional descriptive fields of the dataset header. Nil
// fields are written as JSON null.
type Info struct {
	Description *string `toml:"description"`
	URL         *string `toml:"url"`
	Version     *string `toml:"version"`
	Contributor *string `toml:"contributor"`
}

// Config is the contents of a conversion config file.
type Config struct {
	Info   Info    `toml:"info"`
	Groups []Group `toml:"group"`
}

// GroupTable is an ordered, read-only list of groups.
type GroupTable struct {
	groups []Group
}

// NewGroupTable validates groups and returns a table preserving their order.
func NewGroupTable(groups []Group) (*GroupTable, error) {
	seen := make(map[string]bool, len(groups))
	out := make([]Group, 0, len(groups))
	for i, g := range groups {
		if g.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidGroup, i)
		}
		if seen[g.Name] {
			return nil, fmt.Errorf("%w: %q declared twice", ErrInvalidGroup, g.Name)
		}
		seen[g.Name] = true
		members := make([]string, len(g.Members))
		copy(members, g.Members)
		out = append(out, Group{Name: g.Name, Members: members})
	}
	return &GroupTable{groups: out}, nil
}

// Groups returns a copy of the groups in declaration order.
func (t *GroupTable) Groups() []Group {
	out := make([]Group, len(t.groups))
	for i, g := range t.groups {
		out[i] = Group{Name: g.Name, Members: append([]string(nil), g.Members...)}
	}
	return out
}

// Lookup returns the group with the given name.
func (t *GroupTable) Lookup(name string) (Group, bool) {
	for _, g := range t.groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// LoadConfig reads a TOML config file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// ParseConfig decodes TOML config text. Unknown keys are rejected as in
// LoadConfig.
func ParseConfig(data string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func checkUndecoded(md toml.MetaData) error {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w %q", ErrUnknownKey, undecoded[0].String())
	}
	return nil
}

// DefaultConfig returns the built-in config holding the identity document
// groups.
func DefaultConfig() *Config {
	cfg, err := ParseConfig(defaultConfig)
	if err != nil {
		panic(fmt.Sprintf("embedded default config: %v", err))
	}
	return cfg
}

// Table builds the group table of cfg.
func (c *Config) Table() (*GroupTable, error) {
	return NewGroupTable(c.Groups)
}
