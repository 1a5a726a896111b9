package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"clipforge/config"
	"clipforge/provider"
	"clipforge/types"
)

// Prober measures the duration of a finished media file.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// EdgeTTS drives the edge-tts CLI (free Microsoft neural voices).
// Install with: pip install edge-tts
type EdgeTTS struct {
	cfg    config.SpeechConfig
	prober Prober
	log    *logrus.Entry
}

func NewEdgeTTS(cfg config.SpeechConfig, prober Prober, log *logrus.Logger) *EdgeTTS {
	return &EdgeTTS{
		cfg:    cfg,
		prober: prober,
		log:    log.WithField("stage", "speech").WithField("provider", "edge-tts"),
	}
}

func (e *EdgeTTS) Name() string { return "edge-tts" }

// Configured reports whether the edge-tts binary is on PATH.
func (e *EdgeTTS) Configured() bool {
	_, err := exec.LookPath("edge-tts")
	return err == nil
}

func (e *EdgeTTS) SynthesizeSpeech(ctx context.Context, text, destination, voice string) (*types.GeneratedAsset, error) {
	if voice == "" {
		voice = e.cfg.Voice
	}
	if voice == "" {
		voice = "en-US-GuyNeural"
	}

	args := []string{"--voice", voice, "--text", text, "--write-media", destination}
	if e.cfg.Rate != "" {
		args = append(args, "--rate", e.cfg.Rate)
	}

	// edge-tts talks to a remote service and flakes occasionally.
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		cmd := exec.CommandContext(ctx, "edge-tts", args...)
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out
		if err := cmd.Run(); err == nil {
			lastErr = nil
			break
		} else {
			lastErr = fmt.Errorf("%w: %s", err, out.String())
		}
		e.log.WithField("attempt", attempt).WithError(lastErr).Warn("edge-tts failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	if lastErr != nil {
		return nil, &provider.GenerationError{Provider: e.Name(), Reason: fmt.Sprintf("edge-tts failed after 3 attempts: %v", lastErr)}
	}

	dur, err := e.prober.Probe(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("probe narration: %w", err)
	}
	e.log.WithField("duration", dur).Info("narration synthesized")
	return &types.GeneratedAsset{
		Path:     destination,
		Kind:     types.AssetAudio,
		Duration: dur,
		Metadata: map[string]string{"provider": e.Name(), "voice": voice},
	}, nil
}
