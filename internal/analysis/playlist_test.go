package analysis

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-measure-mcp/internal/imaging"
)

// twoScenes writes the standard scene and a variant whose reference block is
// twice as wide, halving the scale.
func twoScenes(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()

	wide := image.NewRGBA(image.Rect(0, 0, 400, 300))
	fill(wide, wide.Bounds(), color.White)
	fill(wide, image.Rect(290, 10, 391, 111), color.Black)
	fill(wide, image.Rect(40, 150, 81, 191), color.Black)

	return []string{
		writePNG(t, dir, "a.png", scene()),
		writePNG(t, dir, "b.png", wide),
	}
}

func TestPlaylist_OpenNextWraps(t *testing.T) {
	paths := twoScenes(t)
	cache := imaging.NewImageCache()
	p := NewPlaylist(newTestAnalyzer(t, testConfig()), cache)
	ctx := context.Background()

	st, err := p.Open(ctx, paths)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, paths[0], st.Path)
	assert.InDelta(t, 0.1, st.Session.Scale(), 1e-9)
	assert.Equal(t, 2, p.Len())
	firstID := st.Session.ID()

	st, err = p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Index)
	assert.Equal(t, paths[1], st.Path)
	assert.InDelta(t, 0.05, st.Session.Scale(), 1e-9)
	require.Len(t, st.Session.Records(), 1)
	assert.Equal(t, "2.0 mm", st.Session.Records()[0].Measurements[0].Label)
	assert.Equal(t, 1, cache.Len(), "previous image should be evicted")

	st, err = p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Index)
	assert.NotEqual(t, firstID, st.Session.ID(), "revisiting an image starts a new session")

	cur, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, st.Session.ID(), cur.Session.ID())
	assert.NotNil(t, cur.Image)
}

func TestPlaylist_NotOpen(t *testing.T) {
	p := NewPlaylist(newTestAnalyzer(t, testConfig()), imaging.NewImageCache())

	_, err := p.Current()
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = p.Next(context.Background())
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = p.Open(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
}

func TestPlaylist_FailedImageClearsSession(t *testing.T) {
	paths := twoScenes(t)
	broken := filepath.Join(filepath.Dir(paths[0]), "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("not an image"), 0o644))

	p := NewPlaylist(newTestAnalyzer(t, testConfig()), imaging.NewImageCache())
	ctx := context.Background()

	_, err := p.Open(ctx, []string{paths[0], broken, paths[1]})
	require.NoError(t, err)

	_, err = p.Next(ctx)
	assert.Error(t, err)
	_, err = p.Current()
	assert.ErrorIs(t, err, ErrNotOpen)

	st, err := p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Index)
}

func TestPlaylist_ConcurrentAccess(t *testing.T) {
	paths := twoScenes(t)
	p := NewPlaylist(newTestAnalyzer(t, testConfig()), imaging.NewImageCache())
	ctx := context.Background()
	_, err := p.Open(ctx, paths)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = p.Next(ctx)
				return
			}
			_, _ = p.Current()
		}(i)
	}
	wg.Wait()

	st, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, st.Index, "four advances over two images land on the first")
}
