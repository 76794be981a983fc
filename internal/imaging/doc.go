// Package imaging provides the image-level operations around shape
// measurement: decoding and caching photos, Canny edge maps, color sampling,
// overlay rendering and encoding results.
//
// Coordinates are 0-based pixels with the origin at the top-left corner, X
// growing rightward and Y downward. Rectangles are half-open: Min is
// inclusive, Max exclusive.
//
// ImageCache is safe for concurrent use. Every other function is stateless
// and never modifies its input image.
package imaging
