// Package shape rasterizes labelme annotation shapes into binary masks.
//
// A Shape is one drawn primitive with a label and an optional group id. Rasterize turns a shape into a mask sized to the
// image and into the flat coordinate list stored as one COCO segmentation
// entry.
//
// # Fill Convention
//
// A pixel (x, y) belongs to a shape when its center (x+0.5, y+0.5) lies inside
// the shape. Edges are half-open: a center exactly on a left or top edge is
// inside, one exactly on a right or bottom edge is outside. With this rule a
// rectangle with integer corners (1,1)-(4,4) covers columns and rows 1..3,
// and adjacent shapes sharing an edge never both claim the same pixel.
//
// Polygons are filled with the even-odd rule, so self-intersecting outlines
// leave their doubly-covered regions empty. A shape type without a rule of
// its own is filled as a polygon.
//
// A point covers the centers within PointRadius of it. A line or linestrip
// covers the centers within LineWidth/2 of any of its segments, including
// the rounded region around each end. Both boundaries are inclusive.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Points may lie outside the image; the resulting mask is clipped to the
// image bounds while the segmentation keeps the original coordinates.
package shape
