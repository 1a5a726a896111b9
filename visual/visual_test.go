package visual

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge/config"
	"clipforge/types"
)

type fakeClipper struct {
	sawImage bool
	zoom     float64
}

func (f *fakeClipper) StillToClip(ctx context.Context, imagePath string, duration, zoom float64, destination string) error {
	_, err := os.Stat(imagePath)
	f.sawImage = err == nil
	f.zoom = zoom
	return os.WriteFile(destination, []byte("clip"), 0644)
}

type fakeProber struct{ duration float64 }

func (f *fakeProber) Probe(ctx context.Context, path string) (float64, error) {
	return f.duration, nil
}

func testVisualConfig() config.VisualConfig {
	return config.VisualConfig{
		Providers:         []string{"placeholder"},
		Mode:              "clips",
		PollIntervalSec:   4,
		PollBudgetSec:     240,
		DurationTolerance: 1.5,
		KenBurnsZoom:      1.08,
	}
}

func TestPromptSeedIsDeterministic(t *testing.T) {
	a := promptSeed("a volcano erupting at night")
	b := promptSeed("a volcano erupting at night")
	c := promptSeed("a different prompt")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Less(t, a, uint32(100000))
}

func TestPlaceholderRendersCardThenAnimates(t *testing.T) {
	clipper := &fakeClipper{}
	prober := &fakeProber{duration: 5.02}
	video := config.Default().Video
	p := NewPlaceholder(video, testVisualConfig(), clipper, prober, logrus.New())
	require.True(t, p.Configured())

	dest := filepath.Join(t.TempDir(), "scene_000.mp4")
	asset, err := p.GenerateVisual(context.Background(), "a volcano erupting", 5, dest)
	require.NoError(t, err)

	assert.True(t, clipper.sawImage, "the card must exist when the clipper runs")
	assert.Equal(t, 1.08, clipper.zoom)
	assert.Equal(t, types.AssetVideo, asset.Kind)
	assert.Equal(t, 5.02, asset.Duration, "duration must come from the probe")
	assert.FileExists(t, dest)

	// The intermediate card is cleaned up once the clip exists.
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "scene_000.png"))
}

func TestReplicateUnconfiguredReturnsAuthError(t *testing.T) {
	r := NewReplicate(testVisualConfig(), &config.Credentials{}, &fakeProber{}, logrus.New())
	assert.False(t, r.Configured())

	_, err := r.GenerateVisual(context.Background(), "prompt", 5, filepath.Join(t.TempDir(), "out.mp4"))
	require.Error(t, err)
}

func TestProviderNames(t *testing.T) {
	assert.Equal(t, "pollinations", (&Pollinations{}).Name())
	assert.True(t, (&Pollinations{}).Configured())
	assert.Equal(t, "replicate", NewReplicate(testVisualConfig(), &config.Credentials{}, &fakeProber{}, logrus.New()).Name())
}
