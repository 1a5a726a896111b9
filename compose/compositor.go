// Package compose converts a scene script plus a fixed frame rate into a
// strictly ordered, frame-indexed rendered sequence. Frame identity is
// purely positional: frames are produced in increasing index order and
// persisted into zero-padded slots for the encoder to consume by index.
package compose

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"

	"clipforge/config"
	"clipforge/types"
)

// characterHeightFraction fixes the rotating character's height relative
// to the frame.
const characterHeightFraction = 0.45

// Frame is one slot of the timeline: which scene is active and which
// background/character assets to composite.
type Frame struct {
	Index           int
	Time            float64
	SceneIndex      int
	BackgroundIndex int // -1 when no backgrounds exist (gradient fallback)
	CharacterIndex  int // -1 when no characters exist
}

// Compositor rasterizes timeline frames from theme assets.
type Compositor struct {
	width  int
	height int
	fps    int

	backgrounds []*image.RGBA
	characters  []*image.RGBA
	text        *TextRenderer
	log         *logrus.Entry
}

func New(video config.VideoConfig, log *logrus.Logger) (*Compositor, error) {
	text, err := NewTextRenderer(float64(video.Height) / 24.0)
	if err != nil {
		return nil, fmt.Errorf("load overlay font: %w", err)
	}
	return &Compositor{
		width:  video.Width,
		height: video.Height,
		fps:    video.FPS,
		text:   text,
		log:    log.WithField("stage", "compose"),
	}, nil
}

// LoadManifestAssets reads the theme's backgrounds and characters.
// Missing files are skipped with a warning; an empty background set is
// legal and falls back to a generated gradient at render time.
func (c *Compositor) LoadManifestAssets(m *types.AssetManifest, assetsDir string) error {
	for _, rel := range m.Paths(types.CategoryBackgrounds) {
		img, err := loadImage(filepath.Join(assetsDir, rel))
		if err != nil {
			c.log.WithField("asset", rel).WithError(err).Warn("skipping unreadable background")
			continue
		}
		c.backgrounds = append(c.backgrounds, scaleTo(img, c.width, c.height))
	}
	for _, rel := range m.Paths(types.CategoryCharacters) {
		img, err := loadImage(filepath.Join(assetsDir, rel))
		if err != nil {
			c.log.WithField("asset", rel).WithError(err).Warn("skipping unreadable character")
			continue
		}
		h := int(float64(c.height) * characterHeightFraction)
		w := img.Bounds().Dx() * h / img.Bounds().Dy()
		c.characters = append(c.characters, scaleTo(img, w, h))
	}
	c.log.WithField("backgrounds", len(c.backgrounds)).
		WithField("characters", len(c.characters)).
		Info("theme assets loaded")
	return nil
}

// TotalFrames returns the frame count for the script's duration at the
// compositor's frame rate.
func (c *Compositor) TotalFrames(script *types.Script) int {
	return int(math.Round(float64(c.fps) * script.TotalDuration))
}

// Timeline precomputes every frame of the sequence. The active scene is
// the unique scene whose [start, end) interval contains the frame's
// wall-clock time; past the final boundary the previous frame's scene is
// retained so a rounding edge never fails the render.
func (c *Compositor) Timeline(script *types.Script) []Frame {
	total := c.TotalFrames(script)
	frames := make([]Frame, 0, total)

	charSpan := 0
	if len(c.characters) > 0 {
		charSpan = (total + len(c.characters) - 1) / len(c.characters)
	}

	sceneIdx := 0
	for f := 0; f < total; f++ {
		t := float64(f) / float64(c.fps)
		if idx, ok := findScene(script.Scenes, t); ok {
			sceneIdx = idx
		}

		bg := -1
		if len(c.backgrounds) > 0 {
			bg = script.Scenes[sceneIdx].BackgroundIndex % len(c.backgrounds)
			if bg < 0 {
				bg += len(c.backgrounds)
			}
		}

		ch := -1
		if charSpan > 0 {
			ch = f / charSpan
			if ch >= len(c.characters) {
				ch = len(c.characters) - 1
			}
		}

		frames = append(frames, Frame{
			Index:           f,
			Time:            t,
			SceneIndex:      sceneIdx,
			BackgroundIndex: bg,
			CharacterIndex:  ch,
		})
	}
	return frames
}

func findScene(scenes []types.Scene, t float64) (int, bool) {
	for i, s := range scenes {
		if s.Contains(t) {
			return i, true
		}
	}
	return 0, false
}

// RenderAll rasterizes every frame into framesDir as frame_%05d.png and
// returns the frame count. Rendering checks ctx between frames so a
// cancellation aborts at the next suspension point.
func (c *Compositor) RenderAll(ctx context.Context, script *types.Script, framesDir string) (int, error) {
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return 0, err
	}
	frames := c.Timeline(script)
	c.log.WithField("frames", len(frames)).Info("rendering timeline")

	for _, fr := range frames {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		img := c.Render(script, fr)
		path := filepath.Join(framesDir, fmt.Sprintf("frame_%05d.png", fr.Index))
		if err := SavePNG(path, img); err != nil {
			return 0, fmt.Errorf("save frame %d: %w", fr.Index, err)
		}
		if fr.Index%300 == 0 {
			c.log.WithField("frame", fr.Index).Debug("progress")
		}
	}
	return len(frames), nil
}

// FramePattern is the printf pattern the encoder consumes frames with.
func FramePattern(framesDir string) string {
	return filepath.Join(framesDir, "frame_%05d.png")
}

// Render rasterizes a single frame: background (or gradient), rotating
// character bottom-center, then the scene's overlay text.
func (c *Compositor) Render(script *types.Script, fr Frame) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, c.width, c.height))

	if fr.BackgroundIndex >= 0 {
		draw.Draw(canvas, canvas.Bounds(), c.backgrounds[fr.BackgroundIndex], image.Point{}, draw.Src)
	} else {
		drawGradient(canvas)
	}

	if fr.CharacterIndex >= 0 {
		ch := c.characters[fr.CharacterIndex]
		x := (c.width - ch.Bounds().Dx()) / 2
		y := c.height - ch.Bounds().Dy()
		draw.Draw(canvas, image.Rect(x, y, x+ch.Bounds().Dx(), y+ch.Bounds().Dy()), ch, image.Point{}, draw.Over)
	}

	if overlay := script.Scenes[fr.SceneIndex].TextOverlay; overlay != "" {
		c.text.DrawCentered(canvas, overlay, c.height/3)
	}

	return canvas
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func scaleTo(img image.Image, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// SavePNG writes img to path, creating or truncating the file.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
