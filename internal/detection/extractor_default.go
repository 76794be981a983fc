//go:build !opencv

package detection

// NewExtractor returns the Extractor compiled into this binary. Without the
// opencv build tag that is the pure Go RasterExtractor.
func NewExtractor(opts Options) (Extractor, error) {
	return NewRasterExtractor(opts)
}
