package modelfile

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/patchclamp/kinedit/pkg/kinetic"
)

// SVGOptions controls native SVG rendering.
type SVGOptions struct {
	Width     int    // canvas width in pixels
	Height    int    // canvas height in pixels
	Title     string // diagram title; defaults to the model name
	FontSize  int    // state label font size
	LabelSize int    // rate label font size (0 = FontSize - 2)
}

// DefaultSVGOptions returns sensible defaults matching the editor
// canvas.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:    int(kinetic.DefaultCanvasWidth),
		Height:   int(kinetic.DefaultCanvasHeight),
		FontSize: 14,
	}
}

// arrowSpread is the perpendicular offset separating the two directed
// arrows of a pair line.
const arrowSpread = 5.0

// GenerateSVG renders the model to SVG at its stored canvas positions.
// States draw as circles (open states highlighted), each transition
// pair as two offset arrows with their rate labels at the pairing
// anchors.
func GenerateSVG(m *kinetic.Model, opts SVGOptions) string {
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
	title := opts.Title
	if title == "" {
		title = m.ModelName
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height))
	sb.WriteString(`  <rect width="100%" height="100%" fill="white"/>` + "\n")
	sb.WriteString(`  <defs><marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="#333"/></marker></defs>` + "\n")

	if title != "" {
		sb.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" font-size="%d" font-weight="bold" fill="#333" text-anchor="middle">%s</text>`+"\n",
			opts.Width/2, opts.FontSize+8, opts.FontSize+4, html.EscapeString(title)))
	}

	radius := kinetic.NodeSize / 2

	// Transitions first so circles draw on top.
	for _, l := range kinetic.ComputePairing(m.States, m.Transitions) {
		dx := l.X2 - l.X1
		dy := l.Y2 - l.Y1
		length := math.Hypot(dx, dy)
		if length < 1 {
			length = 1
		}
		ux, uy := dx/length, dy/length

		if l.Forward != nil {
			x1 := l.X1 + ux*radius + l.NX*arrowSpread
			y1 := l.Y1 + uy*radius + l.NY*arrowSpread
			x2 := l.X2 - ux*radius + l.NX*arrowSpread
			y2 := l.Y2 - uy*radius + l.NY*arrowSpread
			sb.WriteString(fmt.Sprintf(`  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="1.5" marker-end="url(#arrow)"/>`+"\n",
				x1, y1, x2, y2))
			if l.Forward.RateEquationID != "" {
				sb.WriteString(rateLabel(l.TopX, l.TopY, l.Forward.RateEquationID, opts.LabelSize))
			}
		}
		if l.Backward != nil {
			x1 := l.X2 - ux*radius - l.NX*arrowSpread
			y1 := l.Y2 - uy*radius - l.NY*arrowSpread
			x2 := l.X1 + ux*radius - l.NX*arrowSpread
			y2 := l.Y1 + uy*radius - l.NY*arrowSpread
			sb.WriteString(fmt.Sprintf(`  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="1.5" marker-end="url(#arrow)"/>`+"\n",
				x1, y1, x2, y2))
			if l.Backward.RateEquationID != "" {
				sb.WriteString(rateLabel(l.BottomX, l.BottomY, l.Backward.RateEquationID, opts.LabelSize))
			}
		}
	}

	for _, s := range m.States {
		fill, stroke := "#eceff1", "#546e7a"
		if s.GateStatus == kinetic.GateOpen {
			fill, stroke = "#e8f5e9", "#2e7d32"
		}
		sb.WriteString(fmt.Sprintf(`  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
			s.CenterX(), s.CenterY(), radius, fill, stroke))
		sb.WriteString(fmt.Sprintf(`  <text x="%.1f" y="%.1f" font-size="%d" fill="#333" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			s.CenterX(), s.CenterY(), opts.FontSize, html.EscapeString(s.DisplayName())))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func rateLabel(x, y float64, text string, size int) string {
	return fmt.Sprintf(`  <text x="%.1f" y="%.1f" font-size="%d" fill="#666" text-anchor="middle">%s</text>`+"\n",
		x, y, size, html.EscapeString(text))
}
