package mask

// RLE is an uncompressed COCO run-length encoding of a mask.
//
// Counts alternate unset/set runs in column-major order, starting with an
// unset run that may be zero. The counts of a valid RLE sum to Width*Height.
type RLE struct {
	Width  int
	Height int
	Counts []uint32
}

// BBox is a bounding box in COCO order: x, y, width, height.
type BBox [4]float64

// CompressedRLE is the JSON form of an RLE as written in COCO files.
type CompressedRLE struct {
	Size   [2]int `json:"size"` // [height, width]
	Counts string `json:"counts"`
}

// Encode run-length encodes m in column-major order.
func Encode(m *Mask) *RLE {
	r := &RLE{Width: m.width, Height: m.height}
	counts := make([]uint32, 0, 8)

	var run uint32
	prev := false
	for x := 0; x < m.width; x++ {
		for y := 0; y < m.height; y++ {
			v := m.Get(x, y)
			if v != prev {
				counts = append(counts, run)
				run = 0
				prev = v
			}
			run++
		}
	}
	r.Counts = append(counts, run)
	return r
}

// Area returns the number of set pixels, the sum of the set runs.
func (r *RLE) Area() int {
	area := 0
	for i := 1; i < len(r.Counts); i += 2 {
		area += int(r.Counts[i])
	}
	return area
}

// BBox returns the tight bounding box of the set pixels.
//
// An RLE with no set runs yields the zero box. When a set run wraps from one
// column into the next, the box spans the full mask height, matching
// pycocotools.
func (r *RLE) BBox() BBox {
	m := (len(r.Counts) / 2) * 2
	if m == 0 || r.Height == 0 {
		return BBox{}
	}
	h := r.Height
	xs, ys := r.Width, h
	xe, ye := 0, 0
	cc, xp := 0, 0

	for j := 0; j < m; j++ {
		cc += int(r.Counts[j])
		t := cc - j%2
		y := t % h
		x := (t - y) / h
		if j%2 == 0 {
			xp = x
		} else if xp < x {
			ys = 0
			ye = h - 1
		}
		xs = min(xs, x)
		xe = max(xe, x)
		ys = min(ys, y)
		ye = max(ye, y)
	}

	return BBox{float64(xs), float64(ys), float64(xe - xs + 1), float64(ye - ys + 1)}
}

// String returns the COCO compressed counts string.
//
// Each count past the second is stored as the difference from the count two
// positions earlier, then written as 5-bit groups offset into printable ASCII
// with bit 0x20 marking continuation.
func (r *RLE) String() string {
	buf := make([]byte, 0, len(r.Counts)*2)
	for i, c := range r.Counts {
		x := int64(c)
		if i > 2 {
			x -= int64(r.Counts[i-2])
		}
		more := true
		for more {
			b := byte(x & 0x1f)
			x >>= 5
			if b&0x10 != 0 {
				more = x != -1
			} else {
				more = x != 0
			}
			if more {
				b |= 0x20
			}
			buf = append(buf, b+48)
		}
	}
	return string(buf)
}

// Compressed returns the JSON-ready compressed form of r, as written for
// RLE segmentations.
func (r *RLE) Compressed() CompressedRLE {
	return CompressedRLE{Size: [2]int{r.Height, r.Width}, Counts: r.String()}
}
