// Package detection turns photos into object contours.
//
// Detection runs in two stages. Preprocess builds a binary foreground mask,
// either from Canny edges that are dilated and closed into solid outlines or
// from a global luminance threshold. FindContours then traces the external
// boundary of every 8-connected foreground region.
//
// # Backends
//
// NewExtractor returns the pure Go RasterExtractor by default. Building with
// the opencv tag swaps in an OpenCV implementation of the same pipeline
// through gocv, which requires OpenCV 4 and cgo:
//
//	go build -tags opencv ./...
//
// # Coordinate System
//
// Contour points are pixel centers in the coordinate space of the source
// image: origin at the top-left, X rightward, Y downward.
//
// # Limitations
//
// Objects touching each other merge into one region, and objects touching
// the image border are traced along the border. Photos should show separated
// objects on a plain, contrasting background.
package detection
