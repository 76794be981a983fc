package analysis

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/ironsheep/shape-measure-mcp/internal/imaging"
	"github.com/ironsheep/shape-measure-mcp/internal/measure"
)

var (
	// ErrEmptyPlaylist is returned by Open when no paths are given.
	ErrEmptyPlaylist = errors.New("playlist has no images")

	// ErrNotOpen is returned before a playlist has been opened, or after the
	// current image failed to analyze.
	ErrNotOpen = errors.New("no image is loaded")
)

// Playlist steps through a list of photos, keeping exactly one measured
// session live at a time. Advancing discards the previous session entirely:
// contours, reference and scale are all derived again for the new image.
type Playlist struct {
	mu       sync.Mutex
	analyzer *Analyzer
	cache    *imaging.ImageCache

	paths   []string
	index   int
	session *measure.Session
	image   image.Image
}

// PlaylistState is a snapshot of the playlist position.
type PlaylistState struct {
	Index   int              `json:"index"`
	Total   int              `json:"total"`
	Path    string           `json:"path"`
	Session *measure.Session `json:"-"`
	Image   image.Image      `json:"-"`
}

// NewPlaylist creates an empty playlist that analyzes with a and loads images
// through cache.
func NewPlaylist(a *Analyzer, cache *imaging.ImageCache) *Playlist {
	return &Playlist{analyzer: a, cache: cache}
}

// Open replaces the playlist contents with paths and analyzes the first one.
func (p *Playlist) Open(ctx context.Context, paths []string) (*PlaylistState, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyPlaylist
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.release()
	p.paths = append([]string(nil), paths...)
	p.index = 0
	return p.load(ctx)
}

// Next advances to the following image, wrapping after the last one. If the
// new image cannot be analyzed the position still advances, the error is
// returned and no session is live until the next successful load.
func (p *Playlist) Next(ctx context.Context) (*PlaylistState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.paths) == 0 {
		return nil, ErrNotOpen
	}
	p.release()
	p.index = (p.index + 1) % len(p.paths)
	return p.load(ctx)
}

// Current returns the live session.
func (p *Playlist) Current() (*PlaylistState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil, ErrNotOpen
	}
	return p.state(), nil
}

// Len returns the number of images in the playlist.
func (p *Playlist) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.paths)
}

func (p *Playlist) load(ctx context.Context) (*PlaylistState, error) {
	path := p.paths[p.index]
	s, img, err := p.analyzer.AnalyzeFile(ctx, p.cache, path)
	if err != nil {
		return nil, fmt.Errorf("image %d of %d: %w", p.index+1, len(p.paths), err)
	}
	p.session = s
	p.image = img
	return p.state(), nil
}

// release drops the live session and its decoded image from the cache.
func (p *Playlist) release() {
	if p.session != nil && len(p.paths) > 0 {
		p.cache.Evict(p.paths[p.index])
	}
	p.session = nil
	p.image = nil
}

func (p *Playlist) state() *PlaylistState {
	return &PlaylistState{
		Index:   p.index,
		Total:   len(p.paths),
		Path:    p.paths[p.index],
		Session: p.session,
		Image:   p.image,
	}
}
