// Package geometry provides the planar primitives used to measure objects in
// photographs: points, closed contours, simplified polygons and the few
// operations performed on them.
//
// # Coordinate System
//
// Coordinates follow the image convention used everywhere else in the module:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Points are float64 so the same types carry raster contours (integer pixel
// positions) and derived values such as midpoints and circle centers.
//
// # Closed Contours
//
// A Contour is an ordered boundary traversal. The last point implicitly
// connects back to the first; callers never repeat the first point at the end.
//
// # Operations
//
//   - Perimeter: closed arc length
//   - Area: shoelace area (unsigned)
//   - Simplify / SimplifyContour: closed Douglas-Peucker vertex reduction
//   - MinEnclosingCircle: smallest circle containing every point
//
// All functions are pure and safe for concurrent use.
package geometry
