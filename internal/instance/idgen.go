package instance

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out group identifiers for shapes drawn without one.
//
// Every returned id must be unique for the lifetime of the generator and must
// not parse as a decimal integer, so it can never collide with a group id
// written in an annotation file. Implementations must be safe for concurrent
// use because one generator is shared by all image workers.
type IDGenerator interface {
	NewID() string
}

// Counter generates ids of the form "<prefix>N" from a monotonic counter.
type Counter struct {
	prefix string
	next   atomic.Uint64
}

// DefaultCounterPrefix replaces counter prefixes that could form an integer.
const DefaultCounterPrefix = "#"

// NewCounter returns a counter generator. A prefix that is empty or made only
// of an optional sign and digits ("1", "-", "+07") would let generated ids
// read as integers, so DefaultCounterPrefix is used instead.
func NewCounter(prefix string) *Counter {
	digits := prefix
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}
	if strings.Trim(digits, "0123456789") == "" {
		prefix = DefaultCounterPrefix
	}
	return &Counter{prefix: prefix}
}

// NewID returns the next id.
func (c *Counter) NewID() string {
	return c.prefix + strconv.FormatUint(c.next.Add(1), 10)
}

// UUIDGenerator generates time-based (version 1) UUIDs.
type UUIDGenerator struct{}

// UUID returns a generator backed by github.com/google/uuid.
func UUID() UUIDGenerator { return UUIDGenerator{} }

// NewID returns a new version 1 UUID, falling back to a random version 4
// UUID if no node id or clock sequence can be obtained.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewUUID()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
