// Package measure turns classified contours into calibrated millimeter
// measurements.
//
// One contour per image is the reference object: its physical size is known
// (ReferenceSizeMM) and its pixel area gives the scale for everything else:
//
//	scale = ReferenceSizeMM / sqrt(referenceArea)
//
// Every other contour that passes the size filters is classified and reported
// either edge by edge (triangles, squares, rectangles) or by the radius of its
// minimum enclosing circle (circles).
//
// # Size Filters
//
// Two filters reject noise before classification. Both are expressed in pixels
// and therefore depend on image resolution:
//   - MinArea: absolute floor on the contour's pixel area
//   - MinAreaRatio: floor on the contour's area relative to the reference
//
// # Sessions
//
// A Session captures everything derived from one image: the contours, their
// simplified polygons, the chosen reference, the scale and the records. It is
// immutable; switching to another image means building a new Session.
//
// Nothing in this package logs or renders.
package measure
