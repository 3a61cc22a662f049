// Package mask provides binary instance masks and their COCO run-length encoding.
//
// A Mask is a dense bitset sized to an image and addressed by (row, column).
// Masks are combined with Or, which is defined element-wise so the union of a
// set of masks never depends on the order in which they were combined.
//
// # Coordinate System
//
// Pixel coordinates follow the usual image convention:
//   - Origin (0, 0) at the top-left corner
//   - X (column) increases rightward
//   - Y (row) increases downward
//
// # Run-Length Encoding
//
// Encode produces the uncompressed COCO RLE used by pycocotools:
//
//  1. Pixels are visited in column-major order (down each column, then to the
//     next column to the right).
//  2. Counts alternate between runs of unset and set pixels.
//  3. The first count is always an unset run and may be zero.
//
// Area and BBox are derived from the counts rather than from a separate pixel
// scan, so they always agree with the stored encoding. String and Compressed
// produce the compact counts string found in COCO JSON files.
//
// # Thread Safety
//
// Masks are not safe for concurrent mutation. An RLE is immutable once built.
package mask
