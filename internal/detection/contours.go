package detection

import (
	"image"

	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
)

// Moore neighbourhood in clockwise order (y grows downward), starting east.
var neighbours = [8]image.Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
}

const dirWest = 4

// FindContours returns the outer boundary of every 8-connected foreground
// region of mask, where foreground is any value of 128 or more.
//
// Only external boundaries are reported: holes are filled before tracing, so
// a ring and a disc of the same outline give the same contour. Each boundary
// is traced clockwise from the region's top-left pixel and straight runs are
// compressed to their end points. Contours are returned in raster order of
// their starting pixel.
func FindContours(mask *image.Gray) []geometry.Contour {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	solid := fillHoles(mask, width, height)
	visited := make([]bool, width*height)

	var contours []geometry.Contour
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !solid[i] || visited[i] {
				continue
			}
			boundary := traceBoundary(solid, width, height, image.Pt(x, y))
			markRegion(solid, visited, width, height, image.Pt(x, y))

			for j := range boundary {
				boundary[j] = boundary[j].Add(b.Min)
			}
			contours = append(contours, geometry.FromImagePoints(compressRuns(boundary)))
		}
	}
	return contours
}

// fillHoles marks as solid every pixel that is foreground or cannot reach the
// image border through 4-connected background.
func fillHoles(mask *image.Gray, width, height int) []bool {
	b := mask.Bounds()
	fg := make([]bool, width*height)
	for y := 0; y < height; y++ {
		off := mask.PixOffset(b.Min.X, b.Min.Y+y)
		for x, v := range mask.Pix[off : off+width] {
			fg[y*width+x] = v >= 128
		}
	}

	outside := make([]bool, width*height)
	var stack []int
	push := func(x, y int) {
		i := y*width + x
		if !fg[i] && !outside[i] {
			outside[i] = true
			stack = append(stack, i)
		}
	}
	for x := 0; x < width; x++ {
		push(x, 0)
		push(x, height-1)
	}
	for y := 0; y < height; y++ {
		push(0, y)
		push(width-1, y)
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		if x > 0 {
			push(x-1, y)
		}
		if x < width-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < height-1 {
			push(x, y+1)
		}
	}

	solid := make([]bool, width*height)
	for i := range solid {
		solid[i] = !outside[i]
	}
	return solid
}

// traceBoundary follows the outer boundary of the region containing start
// with Moore-neighbour tracing. start must be the region's first pixel in
// raster order, so its west neighbour is background. Tracing stops when the
// walk leaves start towards the same pixel it first moved to.
func traceBoundary(solid []bool, width, height int, start image.Point) []image.Point {
	isSolid := func(p image.Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < width && p.Y < height && solid[p.Y*width+p.X]
	}

	// step searches clockwise around p, beginning just after the backtrack
	// direction, and returns the first solid neighbour together with the
	// backtrack direction to use from it.
	step := func(p image.Point, back int) (image.Point, int, bool) {
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			q := p.Add(neighbours[d])
			if isSolid(q) {
				prev := p.Add(neighbours[(d+7)%8])
				return q, direction(prev.Sub(q)), true
			}
		}
		return p, back, false
	}

	second, back, ok := step(start, dirWest)
	if !ok {
		return []image.Point{start}
	}

	boundary := []image.Point{start}
	limit := 4 * width * height
	p := second
	for len(boundary) <= limit {
		q, nextBack, _ := step(p, back)
		if p == start && q == second {
			break
		}
		boundary = append(boundary, p)
		p, back = q, nextBack
	}
	return boundary
}

// direction returns the index in neighbours of a unit offset.
func direction(d image.Point) int {
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return dirWest
}

// markRegion flags every pixel 8-connected to start as visited.
func markRegion(solid, visited []bool, width, height int, start image.Point) {
	stack := []image.Point{start}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		i := p.Y*width + p.X
		if visited[i] || !solid[i] {
			continue
		}
		visited[i] = true

		for _, n := range neighbours {
			stack = append(stack, p.Add(n))
		}
	}
}

// compressRuns drops every point that continues the direction of the step
// before it, keeping only the turning points of the chain.
func compressRuns(pts []image.Point) []image.Point {
	n := len(pts)
	if n < 3 {
		return pts
	}
	out := make([]image.Point, 0, n)
	for i, p := range pts {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		if p.Sub(prev) != next.Sub(p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return pts[:1]
	}
	return out
}
