package compose

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// shadowOffset is the fixed drop-shadow displacement in pixels, for
// legibility against arbitrary backgrounds.
const shadowOffset = 4

// TextRenderer draws overlay text with a drop shadow.
type TextRenderer struct {
	face       font.Face
	lineHeight int
}

func NewTextRenderer(size float64) (*TextRenderer, error) {
	ft, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	metrics := face.Metrics()
	return &TextRenderer{
		face:       face,
		lineHeight: (metrics.Height.Ceil() * 5) / 4,
	}, nil
}

// DrawCentered renders text horizontally centered, lines stacked
// top-to-bottom starting at startY. Newlines in the text split lines.
func (t *TextRenderer) DrawCentered(canvas *image.RGBA, text string, startY int) {
	y := startY
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			y += t.lineHeight
			continue
		}
		w := font.MeasureString(t.face, line).Ceil()
		x := (canvas.Bounds().Dx() - w) / 2
		t.drawLine(canvas, line, x+shadowOffset, y+shadowOffset, color.RGBA{A: 255})
		t.drawLine(canvas, line, x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		y += t.lineHeight
	}
}

func (t *TextRenderer) drawLine(canvas *image.RGBA, line string, x, y int, c color.RGBA) {
	d := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(c),
		Face: t.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(line)
}

// Wrap splits text into lines no wider than maxWidth pixels, breaking on
// word boundaries.
func (t *TextRenderer) Wrap(text string, maxWidth int) []string {
	words := strings.Fields(text)
	var lines []string
	var current []string
	for _, word := range words {
		candidate := strings.Join(append(current, word), " ")
		if len(current) > 0 && font.MeasureString(t.face, candidate).Ceil() > maxWidth {
			lines = append(lines, strings.Join(current, " "))
			current = []string{word}
			continue
		}
		current = append(current, word)
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}
