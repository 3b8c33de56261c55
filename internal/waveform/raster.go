package waveform

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RasterSurface is a Surface backed by an RGBA image.
type RasterSurface struct {
	img  *image.RGBA
	face font.Face
}

var _ Surface = (*RasterSurface)(nil)

// NewRasterSurface returns a width x height surface. Non-positive sizes give
// an empty image.
func NewRasterSurface(width, height int) *RasterSurface {
	return &RasterSurface{
		img:  image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
		face: basicfont.Face7x13,
	}
}

// Image returns the backing image.
func (r *RasterSurface) Image() *image.RGBA {
	return r.img
}

// Clear fills the whole surface.
func (r *RasterSurface) Clear(c color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// FillRect blends c over the rectangle spanning the given corners.
func (r *RasterSurface) FillRect(x0, y0, x1, y1 float64, c color.Color) {
	rect := image.Rect(
		int(math.Floor(math.Min(x0, x1))), int(math.Floor(math.Min(y0, y1))),
		int(math.Ceil(math.Max(x0, x1))), int(math.Ceil(math.Max(y0, y1))),
	).Intersect(r.img.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Over)
}

// Line draws a one pixel line using a DDA walk.
func (r *RasterSurface) Line(x0, y0, x1, y1 float64, c color.Color) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		r.plot(x0, y0, c)
		return
	}
	sx, sy := dx/float64(steps), dy/float64(steps)
	for i := 0; i <= steps; i++ {
		r.plot(x0+float64(i)*sx, y0+float64(i)*sy, c)
	}
}

func (r *RasterSurface) plot(x, y float64, c color.Color) {
	px, py := int(math.Floor(x)), int(math.Floor(y))
	if !(image.Point{X: px, Y: py}).In(r.img.Bounds()) {
		return
	}
	r.img.Set(px, py, c)
}

// Text draws s with its baseline at y.
func (r *RasterSurface) Text(x, y float64, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(int(math.Round(x)), int(math.Round(y))),
	}
	d.DrawString(s)
}

// EncodePNG writes the surface as PNG.
func (r *RasterSurface) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

// RenderPNG renders in onto a new raster surface and writes it as PNG.
func RenderPNG(w io.Writer, in Input) error {
	surface := NewRasterSurface(in.Width, in.Height)
	Paint(surface, Render(in))
	return surface.EncodePNG(w)
}
