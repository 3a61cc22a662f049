package labelme

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/labelme2coco/internal/shape"
)

const sampleRecord = `{
  "version": "5.2.1",
  "flags": {},
  "shapes": [
    {"label": "BLX", "points": [[1, 1], [4, 4]], "group_id": null,
     "shape_type": "rectangle", "flags": {}},
    {"label": "CMND", "points": [[0, 0], [5, 0], [5, 5]], "group_id": 2,
     "shape_type": "polygon", "flags": {}, "description": "front"}
  ],
  "imagePath": "card_001.jpg",
  "imageData": null,
  "imageHeight": 8,
  "imageWidth": 10
}`

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// jpegWithOrientation encodes a w x h JPEG. A non-zero orientation adds an
// Exif APP1 segment holding it.
func jpegWithOrientation(t *testing.T, w, h int, orientation byte, bigEndian bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("failed to encode JPEG: %v", err)
	}
	data := buf.Bytes()
	if orientation == 0 {
		return data
	}

	tiff := []byte{
		'M', 'M', 0x00, 0x2a, 0x00, 0x00, 0x00, 0x08, // header, IFD0 at 8
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, orientation, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	if !bigEndian {
		tiff = []byte{
			'I', 'I', 0x2a, 0x00, 0x08, 0x00, 0x00, 0x00,
			0x01, 0x00,
			0x12, 0x01, 0x03, 0x00, 0x01, 0x00, 0x00, 0x00, orientation, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00,
		}
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	size := len(payload) + 2
	app1 := append([]byte{0xff, 0xe1, byte(size >> 8), byte(size)}, payload...)

	out := append([]byte{}, data[:2]...)
	out = append(out, app1...)
	return append(out, data[2:]...)
}

func TestParse(t *testing.T) {
	rec, err := Parse([]byte(sampleRecord))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if rec.Version != "5.2.1" || rec.ImagePath != "card_001.jpg" {
		t.Errorf("Header = %q %q", rec.Version, rec.ImagePath)
	}
	if rec.ImageData != "" {
		t.Errorf("Null imageData should parse as empty, got %q", rec.ImageData)
	}
	if rec.ImageWidth != 10 || rec.ImageHeight != 8 {
		t.Errorf("Dimensions = %dx%d, want 10x8", rec.ImageWidth, rec.ImageHeight)
	}
	if len(rec.Shapes) != 2 {
		t.Fatalf("Expected 2 shapes, got %d", len(rec.Shapes))
	}

	first := rec.Shapes[0]
	if first.Label != "BLX" || first.Type != shape.Rectangle || first.GroupID != nil {
		t.Errorf("First shape = %+v", first)
	}
	if first.Points[1] != (shape.Point{X: 4, Y: 4}) {
		t.Errorf("First shape points = %v", first.Points)
	}

	second := rec.Shapes[1]
	if second.GroupID == nil || *second.GroupID != 2 {
		t.Errorf("Second shape group = %v, want 2", second.GroupID)
	}
	if second.Kind() != shape.Polygon || len(second.Points) != 3 {
		t.Errorf("Second shape = %+v", second)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"three coordinates", `{"shapes":[{"label":"a","points":[[1,2,3]]}]}`},
		{"one coordinate", `{"shapes":[{"label":"a","points":[[1]]}]}`},
		{"string group", `{"shapes":[{"label":"a","points":[],"group_id":"x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("Expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestLoadAndBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card_001.json")
	if err := os.WriteFile(path, []byte(sampleRecord), 0o644); err != nil {
		t.Fatalf("failed to write record: %v", err)
	}

	rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rec.Path != path {
		t.Errorf("Path = %q, want %q", rec.Path, path)
	}
	if rec.Base() != "card_001" {
		t.Errorf("Base = %q, want card_001", rec.Base())
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestResolveImage_Embedded(t *testing.T) {
	rec := &Record{
		ImageData:   base64.StdEncoding.EncodeToString(encodePNG(t, 7, 3)),
		ImageWidth:  7,
		ImageHeight: 3,
	}
	info, err := ResolveImage(rec)
	if err != nil {
		t.Fatalf("ResolveImage failed: %v", err)
	}
	if info.Width != 7 || info.Height != 3 || info.Source != SourceImageData {
		t.Errorf("ResolveImage = %+v", info)
	}
	if info.HeaderMismatch {
		t.Error("Matching header reported as mismatch")
	}
}

func TestResolveImage_EmbeddedOrientation(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name        string
		orientation byte
		bigEndian   bool
		w, h        int
	}{
		{"no exif", 0, true, 4, 2},
		{"upright", 1, true, 4, 2},
		{"rotated 180", 3, true, 4, 2},
		{"rotated 90", 6, true, 2, 4},
		{"transverse little endian", 7, false, 2, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := jpegWithOrientation(t, 4, 2, tt.orientation, tt.bigEndian)
			info, err := ResolveImage(&Record{ImageData: base64.StdEncoding.EncodeToString(data)})
			if err != nil {
				t.Fatalf("ResolveImage failed: %v", err)
			}
			if info.Width != tt.w || info.Height != tt.h {
				t.Errorf("Embedded size = %dx%d, want %dx%d", info.Width, info.Height, tt.w, tt.h)
			}

			// The same bytes read from a file go through imaging's own
			// orientation handling and must agree.
			name := fmt.Sprintf("img%d.jpg", tt.orientation)
			if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
				t.Fatalf("failed to write image: %v", err)
			}
			file, err := ResolveImage(&Record{Path: filepath.Join(dir, "a.json"), ImagePath: name})
			if err != nil {
				t.Fatalf("ResolveImage(file) failed: %v", err)
			}
			if file.Width != info.Width || file.Height != info.Height {
				t.Errorf("File size %dx%d differs from embedded size %dx%d", file.Width, file.Height, info.Width, info.Height)
			}
		})
	}
}

func TestExifOrientation_Malformed(t *testing.T) {
	plain := jpegWithOrientation(t, 4, 2, 0, true)
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"png", encodePNG(t, 2, 2)},
		{"no app1", plain},
		{"truncated app1", []byte{0xff, 0xd8, 0xff, 0xe1, 0x00, 0x40, 'E', 'x'}},
		{"not exif", append([]byte{0xff, 0xd8, 0xff, 0xe1, 0x00, 0x10}, []byte("XMP\x00abcdefghijkl")[:14]...)},
		{"out of range value", jpegWithOrientation(t, 4, 2, 9, true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if o := exifOrientation(tt.data); o != 0 {
				t.Errorf("exifOrientation = %d, want 0", o)
			}
		})
	}
}

func TestResolveImage_HeaderMismatch(t *testing.T) {
	rec := &Record{
		ImageData:   base64.StdEncoding.EncodeToString(encodePNG(t, 7, 3)),
		ImageWidth:  70,
		ImageHeight: 30,
	}
	info, err := ResolveImage(rec)
	if err != nil {
		t.Fatalf("ResolveImage failed: %v", err)
	}
	if info.Width != 7 || info.Height != 3 {
		t.Errorf("Decoded size should win, got %dx%d", info.Width, info.Height)
	}
	if !info.HeaderMismatch {
		t.Error("Expected HeaderMismatch")
	}
}

func TestResolveImage_ImagePath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "card.png"), encodePNG(t, 4, 9), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	rec := &Record{Path: filepath.Join(dir, "card.json"), ImagePath: "card.png"}

	info, err := ResolveImage(rec)
	if err != nil {
		t.Fatalf("ResolveImage failed: %v", err)
	}
	if info.Width != 4 || info.Height != 9 || info.Source != SourceImagePath {
		t.Errorf("ResolveImage = %+v", info)
	}
}

func TestResolveImage_HeaderFallback(t *testing.T) {
	rec := &Record{
		Path:        filepath.Join(t.TempDir(), "card.json"),
		ImagePath:   "missing.jpg",
		ImageWidth:  10,
		ImageHeight: 8,
	}
	info, err := ResolveImage(rec)
	if err != nil {
		t.Fatalf("ResolveImage failed: %v", err)
	}
	if info.Width != 10 || info.Height != 8 || info.Source != SourceHeader {
		t.Errorf("ResolveImage = %+v", info)
	}
}

func TestResolveImage_Errors(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	tests := []struct {
		name string
		rec  *Record
	}{
		{"nothing", &Record{}},
		{"zero header", &Record{ImageWidth: 0, ImageHeight: 5}},
		{"bad base64", &Record{ImageData: "!!!"}},
		{"bad embedded image", &Record{ImageData: base64.StdEncoding.EncodeToString([]byte("nope"))}},
		{"corrupt file", &Record{Path: filepath.Join(dir, "a.json"), ImagePath: "corrupt.png", ImageWidth: 3, ImageHeight: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ResolveImage(tt.rec); err == nil {
				t.Error("Expected error")
			}
		})
	}

	if _, err := ResolveImage(&Record{}); !errors.Is(err, ErrNoImage) {
		t.Errorf("Expected ErrNoImage, got %v", err)
	}
}

func TestResolveImageCached(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "shared.png")
	if err := os.WriteFile(imgPath, encodePNG(t, 5, 6), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	cache := NewSizeCache()
	first := &Record{Path: filepath.Join(dir, "front.json"), ImagePath: "shared.png"}
	second := &Record{Path: filepath.Join(dir, "sub", "..", "back.json"), ImagePath: "shared.png"}

	if _, err := ResolveImageCached(first, cache); err != nil {
		t.Fatalf("ResolveImageCached failed: %v", err)
	}
	if len(cache.sizes) != 1 {
		t.Fatalf("Cache has %d entries, want 1", len(cache.sizes))
	}

	// The file is gone; the size must come from the cache.
	if err := os.Remove(imgPath); err != nil {
		t.Fatalf("failed to remove image: %v", err)
	}
	info, err := ResolveImageCached(second, cache)
	if err != nil {
		t.Fatalf("ResolveImageCached failed: %v", err)
	}
	if info.Width != 5 || info.Height != 6 || info.Source != SourceImagePath {
		t.Errorf("Cached info = %+v", info)
	}

	if _, err := ResolveImageCached(second, NewSizeCache()); !errors.Is(err, ErrNoImage) {
		t.Errorf("Expected ErrNoImage without the cached size, got %v", err)
	}
}

func TestSizeCache_Nil(t *testing.T) {
	var cache *SizeCache
	cache.put("a", 1, 1)
	if _, _, ok := cache.get("a"); ok {
		t.Error("Nil cache should not store entries")
	}
}
