// Package figure owns the composite image the panels are drawn into.
//
// A Figure is a grid of equally sized cells on one RGBA canvas. Each panel
// is rendered with go-chart into its cell; the figure is written to disk
// once, after which it refuses further drawing.
package figure

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/hyp3rd/ewrap"
	"github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/savid/benchstats/pkg/sentinel"
)

// Options sizes a figure. Width and Height are in inches.
type Options struct {
	Width  float64
	Height float64
	DPI    int
	Rows   int
	Cols   int
}

// DefaultOptions is a 14x10 inch, 3x3 figure at 300 dpi.
func DefaultOptions() Options {
	return Options{Width: 14, Height: 10, DPI: 300, Rows: 3, Cols: 3}
}

// Figure is a composite image under construction.
type Figure struct {
	opts   Options
	canvas *image.RGBA
	cellW  int
	cellH  int
	panels map[int]string
	saved  bool
	log    logrus.FieldLogger
}

// New allocates a white canvas of Width*DPI x Height*DPI pixels.
func New(opts Options) (*Figure, error) {
	if opts.DPI <= 0 || opts.Width <= 0 || opts.Height <= 0 || opts.Rows <= 0 || opts.Cols <= 0 {
		return nil, ewrap.Wrapf(sentinel.ErrInvalidInput, "invalid figure options %+v", opts)
	}

	w := int(math.Round(opts.Width * float64(opts.DPI)))
	h := int(math.Round(opts.Height * float64(opts.DPI)))

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	return &Figure{
		opts:   opts,
		canvas: canvas,
		cellW:  w / opts.Cols,
		cellH:  h / opts.Rows,
		panels: make(map[int]string),
		log:    logrus.WithField("component", "figure"),
	}, nil
}

// Bounds is the pixel size of the figure.
func (f *Figure) Bounds() image.Rectangle {
	return f.canvas.Bounds()
}

// CellSize is the pixel size of one grid cell.
func (f *Figure) CellSize() (int, int) {
	return f.cellW, f.cellH
}

// DPI is the resolution panels are rendered at.
func (f *Figure) DPI() int {
	return f.opts.DPI
}

// Panels returns the number of cells drawn into.
func (f *Figure) Panels() int {
	return len(f.panels)
}

// Image exposes the canvas.
func (f *Figure) Image() image.Image {
	return f.canvas
}

// points converts a length in typographic points to pixels at the figure DPI.
func (f *Figure) points(pt float64) float64 {
	return pt * float64(f.opts.DPI) / 72
}

// Subplot renders c into cell index, counted from 1 left to right and top
// to bottom.
func (f *Figure) Subplot(index int, c chart.Chart) error {
	if f.saved {
		return ewrap.Wrapf(sentinel.ErrFigureClosed, "subplot %d", index)
	}
	if index < 1 || index > f.opts.Rows*f.opts.Cols {
		return ewrap.Wrapf(sentinel.ErrInvalidInput, "subplot %d outside a %dx%d grid", index, f.opts.Rows, f.opts.Cols)
	}

	c.Width = f.cellW
	c.Height = f.cellH
	c.DPI = float64(f.opts.DPI)

	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return ewrap.Wrapf(sentinel.ErrComputation, "render %q: %v", c.Title, err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return ewrap.Wrapf(sentinel.ErrComputation, "decode %q: %v", c.Title, err)
	}

	row := (index - 1) / f.opts.Cols
	col := (index - 1) % f.opts.Cols
	origin := image.Pt(col*f.cellW, row*f.cellH)
	draw.Draw(f.canvas, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(f.cellW, f.cellH))}, img, img.Bounds().Min, draw.Src)

	f.panels[index] = c.Title
	f.log.WithFields(logrus.Fields{"cell": index, "title": c.Title}).Debug("Panel rendered")

	return nil
}

// Caption writes a line of text in the bottom left corner of the figure.
func (f *Figure) Caption(text string) error {
	if f.saved {
		return ewrap.Wrap(sentinel.ErrFigureClosed, "caption")
	}

	face := basicfont.Face7x13
	x := 10
	y := f.canvas.Bounds().Dy() - 10

	d := &font.Drawer{
		Dst:  f.canvas,
		Src:  image.NewUniform(color.Gray{Y: 0x55}),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)

	return nil
}

// Save encodes the figure as PNG with its DPI recorded and writes it to
// path through a temporary file, so path is either complete or untouched.
// A figure can be saved once.
func (f *Figure) Save(path string) (int, error) {
	if f.saved {
		return 0, ewrap.Wrapf(sentinel.ErrFigureClosed, "save %s", path)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, f.canvas); err != nil {
		return 0, ewrap.Wrapf(sentinel.ErrIO, "encode figure: %v", err)
	}

	data := withPhysicalSize(buf.Bytes(), f.opts.DPI)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, ewrap.Wrapf(sentinel.ErrIO, "create %s: %v", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return 0, ewrap.Wrapf(sentinel.ErrIO, "write %s: %v", path, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, ewrap.Wrapf(sentinel.ErrIO, "close %s: %v", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return 0, ewrap.Wrapf(sentinel.ErrIO, "chmod %s: %v", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, ewrap.Wrapf(sentinel.ErrIO, "rename to %s: %v", path, err)
	}

	f.saved = true
	f.log.WithFields(logrus.Fields{"path": path, "panels": len(f.panels)}).Debug("Figure saved")

	return len(data), nil
}

// pngHeaderLen covers the signature and the IHDR chunk, which must come first.
const pngHeaderLen = 8 + 4 + 4 + 13 + 4

// withPhysicalSize inserts a pHYs chunk after IHDR so viewers know the DPI.
func withPhysicalSize(encoded []byte, dpi int) []byte {
	if len(encoded) < pngHeaderLen {
		return encoded
	}

	ppm := uint32(math.Round(float64(dpi) / 0.0254))

	body := make([]byte, 4+9)
	copy(body, "pHYs")
	binary.BigEndian.PutUint32(body[4:], ppm)
	binary.BigEndian.PutUint32(body[8:], ppm)
	body[12] = 1 // unit: metre

	chunk := make([]byte, 4, 4+len(body)+4)
	binary.BigEndian.PutUint32(chunk, 9)
	chunk = append(chunk, body...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(body))

	out := make([]byte, 0, len(encoded)+len(chunk))
	out = append(out, encoded[:pngHeaderLen]...)
	out = append(out, chunk...)
	out = append(out, encoded[pngHeaderLen:]...)

	return out
}
