package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/revelaction/signpose/coord"
	"github.com/revelaction/signpose/timeline"
)

// Canvas is the size of a rasterized frame and the pixels per scene unit.
type Canvas struct {
	Width  int
	Height int
	Scale  float64
}

// DefaultCanvas matches a camera 2 units in front of the origin.
var DefaultCanvas = Canvas{Width: 750, Height: 800, Scale: 740}

var (
	background  = color.RGBA{255, 255, 255, 255}
	jointColor  = color.RGBA{0, 0, 0, 255}
	boneColor   = color.RGBA{0, 0, 255, 255}
	poseText    = color.RGBA{255, 0, 0, 255}
	captionText = color.RGBA{0, 0, 255, 255}
)

const (
	jointRadius = 3
	captionX    = 50
	captionY    = 100
)

// Rasterize draws one frame: the joints of each hand as dots, the skeleton
// bones whose joints exist as lines, and the caption. The image only depends
// on its arguments.
//
// The scene is looked at from the front: x grows to the right and the third
// scene axis grows up.
func Rasterize(f timeline.Frame, s timeline.Skeleton, c Canvas) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	fill(img, background)

	textColor := captionText
	if f.Kind == timeline.Pose {
		textColor = poseText
		for _, hand := range []coord.Joints{f.Left, f.Right} {
			drawHand(img, hand, s, c)
		}
	}

	if f.Caption != "" {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(textColor),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(captionX, captionY),
		}
		d.DrawString(f.Caption)
	}

	return img
}

func drawHand(img *image.RGBA, hand coord.Joints, s timeline.Skeleton, c Canvas) {
	if len(hand) == 0 {
		return
	}

	pts := make([]image.Point, len(hand))
	for i, j := range hand {
		pts[i] = project(j.Pos, c)
	}

	for _, b := range s.Drawable(len(pts)) {
		line(img, pts[b[0]], pts[b[1]], boneColor)
	}

	for _, p := range pts {
		dot(img, p, jointRadius, jointColor)
	}
}

func project(v coord.Vec3, c Canvas) image.Point {
	x := float64(c.Width)/2 + v[0]*c.Scale
	y := float64(c.Height)/2 - v[2]*c.Scale
	return image.Pt(int(x+0.5), int(y+0.5))
}

func fill(img *image.RGBA, col color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

func dot(img *image.RGBA, p image.Point, r int, col color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(p.X+dx, p.Y+dy, col)
			}
		}
	}
}

// line draws a segment with Bresenham's algorithm. SetRGBA ignores points
// outside the image.
func line(img *image.RGBA, a, b image.Point, col color.RGBA) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	err := dx + dy
	x, y := a.X, a.Y
	for {
		img.SetRGBA(x, y, col)
		if x == b.X && y == b.Y {
			return
		}

		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}

// WritePNG encodes the image as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// PNGRenderer writes every frame of a timeline as a numbered PNG file in Dir.
// Runs of identical frames are written once when Distinct is set.
type PNGRenderer struct {
	Dir      string
	Canvas   Canvas
	Distinct bool

	// Written is the number of files of the last Render call
	Written int
}

func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{Dir: dir, Canvas: DefaultCanvas}
}

func (r *PNGRenderer) Render(tl timeline.Timeline) error {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create frame directory: %w", err)
	}

	r.Written = 0
	for i, f := range tl.Frames {
		if r.Distinct && i > 0 && sameRun(tl.Frames[i-1], f) {
			continue
		}

		if err := r.write(i, f, tl.Skeleton); err != nil {
			return err
		}

		r.Written++
	}

	return nil
}

func (r *PNGRenderer) write(i int, f timeline.Frame, s timeline.Skeleton) error {
	path := filepath.Join(r.Dir, fmt.Sprintf("frame_%05d.png", i))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}

	if err := WritePNG(file, Rasterize(f, s, r.Canvas)); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode frame %d: %w", i, err)
	}

	return file.Close()
}

// compile-time interface check
var _ Renderer = (*PNGRenderer)(nil)
