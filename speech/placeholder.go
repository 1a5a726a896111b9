package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"clipforge/types"
)

// Shorts narration runs close to 130 words per minute.
const placeholderWPM = 130.0

// Silencer writes a silent audio track of the given duration.
type Silencer interface {
	Silence(ctx context.Context, duration float64, destination string) error
}

// Placeholder emits a silent track sized to the narration's estimated
// read time, so the rest of the pipeline can run without any TTS engine.
type Placeholder struct {
	silencer Silencer
	prober   Prober
	log      *logrus.Entry
}

func NewPlaceholder(silencer Silencer, prober Prober, log *logrus.Logger) *Placeholder {
	return &Placeholder{
		silencer: silencer,
		prober:   prober,
		log:      log.WithField("stage", "speech").WithField("provider", "placeholder"),
	}
}

func (p *Placeholder) Name() string     { return "placeholder" }
func (p *Placeholder) Configured() bool { return true }

func (p *Placeholder) SynthesizeSpeech(ctx context.Context, text, destination, voice string) (*types.GeneratedAsset, error) {
	words := len(strings.Fields(text))
	estimate := float64(words) / placeholderWPM * 60
	if estimate < 1 {
		estimate = 1
	}

	if err := p.silencer.Silence(ctx, estimate, destination); err != nil {
		return nil, fmt.Errorf("write silent track: %w", err)
	}

	dur, err := p.prober.Probe(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("probe silent track: %w", err)
	}
	p.log.WithFields(logrus.Fields{"words": words, "duration": dur}).Info("placeholder narration written")
	return &types.GeneratedAsset{
		Path:     destination,
		Kind:     types.AssetAudio,
		Duration: dur,
		Metadata: map[string]string{"provider": p.Name()},
	}, nil
}
