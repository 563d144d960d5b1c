// Native PNG rendering for kinetic model diagrams. Mirrors the SVG
// renderer output using Go's image packages, supersampled 4x and
// downsampled for smooth edges.

package modelfile

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/patchclamp/kinedit/pkg/kinetic"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Width     int
	Height    int
	FontSize  int
	LabelSize int
	Title     string
}

// DefaultPNGOptions returns defaults matching the editor canvas.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Width:    int(kinetic.DefaultCanvasWidth),
		Height:   int(kinetic.DefaultCanvasHeight),
		FontSize: 14,
	}
}

var (
	pngWhite      = color.RGBA{255, 255, 255, 255}
	pngBlack      = color.RGBA{51, 51, 51, 255}    // #333
	pngGray       = color.RGBA{102, 102, 102, 255} // #666
	pngClosed     = color.RGBA{236, 239, 241, 255} // #eceff1
	pngClosedEdge = color.RGBA{84, 110, 122, 255}  // #546e7a
	pngOpen       = color.RGBA{232, 245, 233, 255} // #e8f5e9
	pngOpenEdge   = color.RGBA{46, 125, 50, 255}   // #2e7d32
)

type pngContext struct {
	img       *image.RGBA
	scale     float64
	lineWidth float64
	face      font.Face
	labelFace font.Face
}

func newPNGContext(img *image.RGBA, scale int, fontSize, labelSize int) *pngContext {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(err) // embedded font always parses
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(fontSize * scale),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		panic(err)
	}
	labelFace, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(labelSize * scale),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		panic(err)
	}
	return &pngContext{
		img:       img,
		scale:     float64(scale),
		lineWidth: 1.5 * float64(scale),
		face:      face,
		labelFace: labelFace,
	}
}

// RenderPNG renders the model to PNG at its stored canvas positions.
func RenderPNG(m *kinetic.Model, w io.Writer, opts PNGOptions) error {
	if opts.Width == 0 {
		opts.Width = int(kinetic.DefaultCanvasWidth)
	}
	if opts.Height == 0 {
		opts.Height = int(kinetic.DefaultCanvasHeight)
	}
	if opts.FontSize == 0 {
		opts.FontSize = 14
	}
	if opts.LabelSize == 0 {
		opts.LabelSize = opts.FontSize - 2
	}

	const scale = 4
	large := renderPNGInternal(m, opts, scale)

	final := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)

	return png.Encode(w, final)
}

func renderPNGInternal(m *kinetic.Model, opts PNGOptions, scale int) *image.RGBA {
	w := opts.Width * scale
	h := opts.Height * scale
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	ctx := newPNGContext(img, scale, opts.FontSize, opts.LabelSize)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, pngWhite)
		}
	}

	s := float64(scale)
	radius := kinetic.NodeSize / 2 * s
	spread := arrowSpread * s

	for _, l := range kinetic.ComputePairing(m.States, m.Transitions) {
		x1, y1 := l.X1*s, l.Y1*s
		x2, y2 := l.X2*s, l.Y2*s
		dx, dy := x2-x1, y2-y1
		length := math.Hypot(dx, dy)
		if length < 1 {
			length = 1
		}
		ux, uy := dx/length, dy/length
		nx, ny := l.NX, l.NY

		if l.Forward != nil {
			drawArrowLine(ctx,
				x1+ux*radius+nx*spread, y1+uy*radius+ny*spread,
				x2-ux*radius+nx*spread, y2-uy*radius+ny*spread, pngBlack)
			if l.Forward.RateEquationID != "" {
				drawTextCentered(ctx, ctx.labelFace, l.TopX*s, l.TopY*s, l.Forward.RateEquationID, pngGray)
			}
		}
		if l.Backward != nil {
			drawArrowLine(ctx,
				x2-ux*radius-nx*spread, y2-uy*radius-ny*spread,
				x1+ux*radius-nx*spread, y1+uy*radius-ny*spread, pngBlack)
			if l.Backward.RateEquationID != "" {
				drawTextCentered(ctx, ctx.labelFace, l.BottomX*s, l.BottomY*s, l.Backward.RateEquationID, pngGray)
			}
		}
	}

	for _, st := range m.States {
		cx, cy := st.CenterX()*s, st.CenterY()*s
		fill, stroke := pngClosed, pngClosedEdge
		if st.GateStatus == kinetic.GateOpen {
			fill, stroke = pngOpen, pngOpenEdge
		}
		drawCircle(ctx, cx, cy, radius, fill, stroke)
		drawTextCentered(ctx, ctx.face, cx, cy, st.DisplayName(), pngBlack)
	}

	title := opts.Title
	if title == "" {
		title = m.ModelName
	}
	if title != "" {
		drawTextCentered(ctx, ctx.face, float64(w)/2, float64(opts.FontSize+8)*s, title, pngBlack)
	}

	return img
}

func drawCircle(ctx *pngContext, cx, cy, r float64, fill, stroke color.Color) {
	img := ctx.img
	for dy := -r; dy <= r; dy++ {
		yNorm := dy / r
		if yNorm*yNorm <= 1 {
			xExtent := r * math.Sqrt(1-yNorm*yNorm)
			for dx := -xExtent; dx <= xExtent; dx++ {
				img.Set(int(cx+dx), int(cy+dy), fill)
			}
		}
	}
	thickness := ctx.lineWidth * 1.3
	for angle := 0.0; angle < 2*math.Pi; angle += 0.005 {
		nx := math.Cos(angle)
		ny := math.Sin(angle)
		for t := -thickness / 2; t <= thickness/2; t += 0.5 {
			img.Set(int(cx+nx*(r+t)), int(cy+ny*(r+t)), stroke)
		}
	}
}

func drawLine(ctx *pngContext, x1, y1, x2, y2 float64, c color.Color) {
	img := ctx.img
	dx := x2 - x1
	dy := y2 - y1
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		steps = 1
	}
	dist := math.Hypot(dx, dy)
	halfThick := ctx.lineWidth / 2
	if dist < 1 {
		img.Set(int(x1), int(y1), c)
		return
	}
	perpX := -dy / dist
	perpY := dx / dist
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		px := x1 + dx*t
		py := y1 + dy*t
		for offset := -halfThick; offset <= halfThick; offset += 0.5 {
			img.Set(int(px+perpX*offset), int(py+perpY*offset), c)
		}
	}
}

func drawArrowLine(ctx *pngContext, x1, y1, x2, y2 float64, c color.Color) {
	drawLine(ctx, x1, y1, x2, y2, c)

	dx := x2 - x1
	dy := y2 - y1
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		return
	}
	nx := dx / dist
	ny := dy / dist

	arrowLen := 8.0 * ctx.scale
	arrowWidth := 4.0 * ctx.scale

	ax1 := x2 - nx*arrowLen + ny*arrowWidth
	ay1 := y2 - ny*arrowLen - nx*arrowWidth
	ax2 := x2 - nx*arrowLen - ny*arrowWidth
	ay2 := y2 - ny*arrowLen + nx*arrowWidth

	for t := 0.0; t <= 1.0; t += 0.05 {
		mx := ax1 + (ax2-ax1)*t
		my := ay1 + (ay2-ay1)*t
		drawLine(ctx, x2, y2, mx, my, c)
	}
}

func drawTextCentered(ctx *pngContext, face font.Face, x, y float64, text string, c color.Color) {
	width := font.MeasureString(face, text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	baselineY := int(y) + int(float64(ascent)*0.35)

	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(x) - width/2),
			Y: fixed.I(baselineY),
		},
	}
	d.DrawString(text)
}
