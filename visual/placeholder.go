package visual

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"clipforge/compose"
	"clipforge/config"
	"clipforge/types"
)

// Placeholder renders an offline gradient card carrying the prompt text
// so a run can finish with no network and no API keys.
type Placeholder struct {
	video   config.VideoConfig
	cfg     config.VisualConfig
	clipper Clipper
	prober  Prober
	log     *logrus.Entry
}

func NewPlaceholder(video config.VideoConfig, cfg config.VisualConfig, clipper Clipper, prober Prober, log *logrus.Logger) *Placeholder {
	return &Placeholder{
		video:   video,
		cfg:     cfg,
		clipper: clipper,
		prober:  prober,
		log:     log.WithField("stage", "visual").WithField("provider", "placeholder"),
	}
}

func (p *Placeholder) Name() string     { return "placeholder" }
func (p *Placeholder) Configured() bool { return true }

func (p *Placeholder) GenerateVisual(ctx context.Context, prompt string, targetDuration float64, destination string) (*types.GeneratedAsset, error) {
	imagePath := strings.TrimSuffix(destination, ".mp4") + ".png"
	if err := p.renderCard(prompt, imagePath); err != nil {
		return nil, fmt.Errorf("render placeholder card: %w", err)
	}
	if err := p.clipper.StillToClip(ctx, imagePath, targetDuration, p.cfg.KenBurnsZoom, destination); err != nil {
		return nil, err
	}
	os.Remove(imagePath)

	dur, err := p.prober.Probe(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("probe placeholder clip: %w", err)
	}
	p.log.WithField("duration", dur).Debug("placeholder clip ready")
	return &types.GeneratedAsset{
		Path:     destination,
		Kind:     types.AssetVideo,
		Duration: dur,
		Metadata: map[string]string{"provider": p.Name(), "prompt": prompt},
	}, nil
}

func (p *Placeholder) renderCard(prompt string, destination string) error {
	canvas := compose.NewGradientImage(p.video.Width, p.video.Height)

	text, err := compose.NewTextRenderer(float64(p.video.Height) / 28)
	if err != nil {
		return err
	}
	lines := text.Wrap(prompt, p.video.Width*8/10)
	text.DrawCentered(canvas, strings.Join(lines, "\n"), p.video.Height/2)

	return compose.SavePNG(destination, canvas)
}
