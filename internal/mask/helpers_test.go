package mask

import (
	"errors"
	"fmt"
	"math/bits"
)

var errInvalidRLE = errors.New("invalid run-length encoding")

func countSet(m *Mask) int {
	n := 0
	for _, w := range m.words {
		n += bits.OnesCount64(w)
	}
	return n
}

func cloneMask(m *Mask) *Mask {
	c := &Mask{width: m.width, height: m.height, words: make([]uint64, len(m.words))}
	copy(c.words, m.words)
	return c
}

func sameMask(a, b *Mask) bool {
	if a.width != b.width || a.height != b.height {
		return false
	}
	for i := range a.words {
		if a.words[i] != b.words[i] {
			return false
		}
	}
	return true
}

// decodeRLE expands r back into a mask.
func decodeRLE(r *RLE) (*Mask, error) {
	m := New(r.Width, r.Height)
	total := r.Width * r.Height
	pos := 0
	for i, c := range r.Counts {
		end := pos + int(c)
		if end > total {
			return nil, fmt.Errorf("%w: counts exceed %dx%d", errInvalidRLE, r.Width, r.Height)
		}
		if i%2 == 1 {
			for p := pos; p < end; p++ {
				m.Set(p/r.Height, p%r.Height)
			}
		}
		pos = end
	}
	if pos != total {
		return nil, fmt.Errorf("%w: counts cover %d of %d pixels", errInvalidRLE, pos, total)
	}
	return m, nil
}

// decodeCounts parses a compressed counts string.
func decodeCounts(s string) ([]uint32, error) {
	counts := make([]uint32, 0, len(s))
	p := 0
	for p < len(s) {
		var x int64
		k := 0
		more := true
		for more {
			if p >= len(s) {
				return nil, fmt.Errorf("%w: truncated counts string", errInvalidRLE)
			}
			c := int64(s[p]) - 48
			if c < 0 || c > 63 {
				return nil, fmt.Errorf("%w: byte %q at offset %d", errInvalidRLE, s[p], p)
			}
			x |= (c & 0x1f) << (5 * k)
			more = c&0x20 != 0
			p++
			k++
			if !more && c&0x10 != 0 {
				x |= -1 << (5 * k)
			}
		}
		if m := len(counts); m > 2 {
			x += int64(counts[m-2])
		}
		counts = append(counts, uint32(x))
	}
	return counts, nil
}
