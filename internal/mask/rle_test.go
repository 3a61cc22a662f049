package mask

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestEncode_Rectangle(t *testing.T) {
	// 10x10 image, pixels x in [1,4), y in [1,4)
	m := rectMask(10, 10, 1, 1, 4, 4)
	r := Encode(m)

	want := []uint32{11, 3, 7, 3, 7, 3, 66}
	if !reflect.DeepEqual(r.Counts, want) {
		t.Errorf("Counts = %v, want %v", r.Counts, want)
	}
	if r.Area() != 9 {
		t.Errorf("Area = %d, want 9", r.Area())
	}
	if got := r.BBox(); got != (BBox{1, 1, 3, 3}) {
		t.Errorf("BBox = %v, want [1 1 3 3]", got)
	}
}

func TestEncode_Empty(t *testing.T) {
	r := Encode(New(10, 10))
	if !reflect.DeepEqual(r.Counts, []uint32{100}) {
		t.Errorf("Counts = %v, want [100]", r.Counts)
	}
	if r.Area() != 0 {
		t.Errorf("Area = %d, want 0", r.Area())
	}
	if got := r.BBox(); got != (BBox{}) {
		t.Errorf("BBox = %v, want zero box", got)
	}
}

func TestEncode_Full(t *testing.T) {
	r := Encode(rectMask(10, 10, 0, 0, 10, 10))
	// Leading unset run of length zero.
	if !reflect.DeepEqual(r.Counts, []uint32{0, 100}) {
		t.Errorf("Counts = %v, want [0 100]", r.Counts)
	}
	if got := r.BBox(); got != (BBox{0, 0, 10, 10}) {
		t.Errorf("BBox = %v, want [0 0 10 10]", got)
	}
}

func TestEncode_ZeroSize(t *testing.T) {
	r := Encode(New(0, 0))
	if !reflect.DeepEqual(r.Counts, []uint32{0}) {
		t.Errorf("Counts = %v, want [0]", r.Counts)
	}
	if r.Area() != 0 || r.BBox() != (BBox{}) {
		t.Error("Expected zero area and box for empty mask")
	}
}

func TestBBox_RunAcrossColumns(t *testing.T) {
	// Set the bottom pixel of column 0 and the top pixel of column 1. They form
	// one run in column-major order, which widens the box to full height.
	m := New(3, 4)
	m.Set(0, 3)
	m.Set(1, 0)
	r := Encode(m)

	if !reflect.DeepEqual(r.Counts, []uint32{3, 2, 7}) {
		t.Fatalf("Counts = %v, want [3 2 7]", r.Counts)
	}
	if got := r.BBox(); got != (BBox{0, 0, 2, 4}) {
		t.Errorf("BBox = %v, want [0 0 2 4]", got)
	}
}

func TestRLE_AreaAndBBoxMatchPixels(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		w, h := 1+rng.Intn(20), 1+rng.Intn(20)
		m := New(w, h)
		// Random blobs that do not wrap between columns.
		for i := 0; i < 3; i++ {
			x0, y0 := rng.Intn(w), rng.Intn(h)
			x1, y1 := x0+1+rng.Intn(w-x0), y0+1+rng.Intn(h-y0)
			for y := y0; y < y1; y++ {
				m.SetSpan(y, x0, x1)
			}
		}
		r := Encode(m)

		if r.Area() != countSet(m) {
			t.Fatalf("iter %d: Area = %d, pixel count = %d", iter, r.Area(), countSet(m))
		}

		minX, minY, maxX, maxY := w, h, -1, -1
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if m.Get(x, y) {
					minX, minY = min(minX, x), min(minY, y)
					maxX, maxY = max(maxX, x), max(maxY, y)
				}
			}
		}
		box := r.BBox()
		bx, by := int(box[0]), int(box[1])
		bw, bh := int(box[2]), int(box[3])
		if bx > minX || by > minY || bx+bw-1 < maxX || by+bh-1 < maxY {
			t.Fatalf("iter %d: BBox %v does not contain all pixels", iter, box)
		}
		// Each edge of the box touches a set pixel unless a run wrapped a
		// column, which only widens y.
		if bx != minX || bx+bw-1 != maxX {
			t.Fatalf("iter %d: BBox %v not tight in x (%d..%d)", iter, box, minX, maxX)
		}
		if by == minY && by+bh-1 != maxY {
			t.Fatalf("iter %d: BBox %v not tight in y (%d..%d)", iter, box, minY, maxY)
		}

		back, err := decodeRLE(r)
		if err != nil {
			t.Fatalf("iter %d: decode failed: %v", iter, err)
		}
		if !sameMask(back, m) {
			t.Fatalf("iter %d: decode(Encode(m)) != m", iter)
		}
	}
}

func TestRLE_String(t *testing.T) {
	// Expected strings produced by pycocotools' rleToString.
	tests := []struct {
		counts []uint32
		want   string
	}{
		{[]uint32{11, 3, 7, 3, 7, 3, 66}, ";37000k1"},
		{[]uint32{100}, "T3"},
		{[]uint32{0, 100}, "0T3"},
		{[]uint32{0, 4, 3, 1, 40}, "043MU1"},
	}
	for _, tt := range tests {
		r := &RLE{Width: 10, Height: 10, Counts: tt.counts}
		if got := r.String(); got != tt.want {
			t.Errorf("String(%v) = %q, want %q", tt.counts, got, tt.want)
		}

		back, err := decodeCounts(tt.want)
		if err != nil {
			t.Fatalf("decodeCounts(%q) failed: %v", tt.want, err)
		}
		if !reflect.DeepEqual(back, tt.counts) {
			t.Errorf("decodeCounts(%q) = %v, want %v", tt.want, back, tt.counts)
		}
	}
}

func TestRLE_Compressed(t *testing.T) {
	r := Encode(rectMask(10, 6, 1, 1, 4, 4))
	c := r.Compressed()
	if c.Size != [2]int{6, 10} {
		t.Errorf("Size = %v, want [6 10] (height, width)", c.Size)
	}
	back, err := decodeCounts(c.Counts)
	if err != nil {
		t.Fatalf("decodeCounts failed: %v", err)
	}
	if !reflect.DeepEqual(back, r.Counts) {
		t.Errorf("round trip counts = %v, want %v", back, r.Counts)
	}
}
