package mask

import "fmt"

const wordBits = 64

// Mask is a binary pixel grid stored as a row-major bitset.
type Mask struct {
	width  int
	height int
	words  []uint64
}

// New returns an empty mask of the given size. Negative dimensions are
// treated as zero.
func New(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	n := width * height
	return &Mask{
		width:  width,
		height: height,
		words:  make([]uint64, (n+wordBits-1)/wordBits),
	}
}

// Width returns the number of columns.
func (m *Mask) Width() int { return m.width }

// Height returns the number of rows.
func (m *Mask) Height() int { return m.height }

func (m *Mask) index(x, y int) (int, bool) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0, false
	}
	return y*m.width + x, true
}

// Get reports whether the pixel at column x, row y is set.
// Coordinates outside the mask read as unset.
func (m *Mask) Get(x, y int) bool {
	i, ok := m.index(x, y)
	if !ok {
		return false
	}
	return m.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Set marks the pixel at column x, row y. Out-of-range pixels are ignored.
func (m *Mask) Set(x, y int) {
	i, ok := m.index(x, y)
	if !ok {
		return
	}
	m.words[i/wordBits] |= 1 << (uint(i) % wordBits)
}

// SetSpan marks pixels x0..x1-1 on row y, clipped to the mask.
func (m *Mask) SetSpan(y, x0, x1 int) {
	if y < 0 || y >= m.height {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > m.width {
		x1 = m.width
	}
	for x := x0; x < x1; x++ {
		i := y*m.width + x
		m.words[i/wordBits] |= 1 << (uint(i) % wordBits)
	}
}

// Or sets every pixel of m that is set in other.
//
// Both masks must have the same dimensions.
func (m *Mask) Or(other *Mask) error {
	if other.width != m.width || other.height != m.height {
		return fmt.Errorf("mask size mismatch: %dx%d vs %dx%d",
			m.width, m.height, other.width, other.height)
	}
	for i := range m.words {
		m.words[i] |= other.words[i]
	}
	return nil
}
