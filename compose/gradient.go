package compose

import (
	"image"
	"image/color"
)

// Gradient colors for the no-background fallback: a dark vertical wash
// that reads well under white overlay text.
var (
	gradientTop    = color.RGBA{R: 20, G: 15, B: 30, A: 255}
	gradientBottom = color.RGBA{R: 40, G: 30, B: 60, A: 255}
)

// drawGradient fills the canvas with the deterministic fallback
// gradient. Same dimensions always produce identical pixels.
func drawGradient(canvas *image.RGBA) {
	b := canvas.Bounds()
	h := b.Dy()
	for y := 0; y < h; y++ {
		t := float64(y) / float64(h)
		c := lerpColor(gradientTop, gradientBottom, t)
		for x := b.Min.X; x < b.Max.X; x++ {
			canvas.SetRGBA(x, b.Min.Y+y, c)
		}
	}
}

// NewGradientImage returns a standalone fallback gradient, used by the
// placeholder visual provider as its base card.
func NewGradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	drawGradient(img)
	return img
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: 255,
	}
}
