package visual

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"clipforge/config"
	"clipforge/provider"
	"clipforge/types"
)

// Pollinations generates still images via the free Pollinations.ai
// endpoint (no key needed) and turns them into motion clips with a slow
// Ken Burns zoom.
type Pollinations struct {
	cfg     config.VisualConfig
	client  *http.Client
	clipper Clipper
	prober  Prober
	log     *logrus.Entry
}

func NewPollinations(cfg config.VisualConfig, clipper Clipper, prober Prober, log *logrus.Logger) *Pollinations {
	return &Pollinations{
		cfg:     cfg,
		client:  &http.Client{Timeout: 60 * time.Second},
		clipper: clipper,
		prober:  prober,
		log:     log.WithField("stage", "visual").WithField("provider", "pollinations"),
	}
}

func (p *Pollinations) Name() string     { return "pollinations" }
func (p *Pollinations) Configured() bool { return true }

// GenerateVisual fetches an AI image for the prompt, with a
// deterministic per-prompt seed so reruns reproduce the same image,
// then animates it to the target duration.
func (p *Pollinations) GenerateVisual(ctx context.Context, prompt string, targetDuration float64, destination string) (*types.GeneratedAsset, error) {
	imageURL := fmt.Sprintf(
		"https://image.pollinations.ai/prompt/%s?width=1080&height=1920&nologo=true&model=flux&seed=%d",
		url.PathEscape(prompt),
		promptSeed(prompt),
	)
	imagePath := strings.TrimSuffix(destination, ".mp4") + ".png"

	// Pollinations occasionally times out; retry with backoff.
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = p.downloadImage(ctx, imageURL, imagePath)
		if err == nil {
			break
		}
		p.log.WithField("attempt", attempt).WithError(err).Warn("image fetch failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 3 * time.Second):
		}
	}
	if err != nil {
		return nil, &provider.GenerationError{Provider: p.Name(), Reason: fmt.Sprintf("image fetch failed after 3 attempts: %v", err)}
	}

	if err := p.clipper.StillToClip(ctx, imagePath, targetDuration, p.cfg.KenBurnsZoom, destination); err != nil {
		return nil, err
	}
	os.Remove(imagePath)

	dur, err := p.prober.Probe(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("probe generated clip: %w", err)
	}
	return &types.GeneratedAsset{
		Path:     destination,
		Kind:     types.AssetVideo,
		Duration: dur,
		Metadata: map[string]string{"provider": p.Name(), "model": "flux", "prompt": prompt},
	}, nil
}

// FetchImage downloads a prompt's still image without animating it.
// Used by the theme asset generator.
func (p *Pollinations) FetchImage(ctx context.Context, prompt string, width, height int, destination string) error {
	imageURL := fmt.Sprintf(
		"https://image.pollinations.ai/prompt/%s?width=%d&height=%d&nologo=true&model=flux&seed=%d",
		url.PathEscape(prompt), width, height, promptSeed(prompt),
	)
	return p.downloadImage(ctx, imageURL, destination)
}

func (p *Pollinations) downloadImage(ctx context.Context, imageURL, destination string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; clipforge/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from Pollinations", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// A tiny body is an error page, not an image.
	if len(data) < 100 {
		return fmt.Errorf("response too small (%d bytes)", len(data))
	}
	return os.WriteFile(destination, data, 0644)
}

// promptSeed derives a stable seed from the prompt text.
func promptSeed(prompt string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	return h.Sum32() % 100000
}
