package compose

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge/config"
	"clipforge/types"
)

func testVideo() config.VideoConfig {
	return config.VideoConfig{Width: 108, Height: 192, FPS: 30, Codec: "libx264", AudioCodec: "aac", AudioBitrate: "192k"}
}

func twoSceneScript() *types.Script {
	return &types.Script{
		TotalDuration: 10,
		Scenes: []types.Scene{
			{Index: 0, StartTime: 0, EndTime: 5, Narration: "a", BackgroundIndex: 0},
			{Index: 1, StartTime: 5, EndTime: 10, Narration: "b", BackgroundIndex: 1},
		},
	}
}

func solidImage(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestTimelineSceneBoundaryIsHalfOpen(t *testing.T) {
	c, err := New(testVideo(), logrus.New())
	require.NoError(t, err)
	c.backgrounds = []*image.RGBA{solidImage(108, 192), solidImage(108, 192)}

	frames := c.Timeline(twoSceneScript())
	require.Len(t, frames, 300)

	// At 30fps, frame 149 sits at 4.9667s (scene 0) and frame 150 at
	// exactly 5.0s, the boundary, which belongs to scene 1.
	assert.Equal(t, 0, frames[149].SceneIndex)
	assert.Equal(t, 0, frames[149].BackgroundIndex)
	assert.Equal(t, 1, frames[150].SceneIndex)
	assert.Equal(t, 1, frames[150].BackgroundIndex)
}

func TestTimelineRetainsSceneAtRoundingEdge(t *testing.T) {
	c, err := New(testVideo(), logrus.New())
	require.NoError(t, err)

	// Final scene ends at 9.9 but the 10s total still produces 300
	// frames; frames past the final boundary stay on the last scene.
	script := twoSceneScript()
	script.Scenes[1].EndTime = 9.9
	frames := c.Timeline(script)
	require.Len(t, frames, 300)
	assert.Equal(t, 1, frames[297].SceneIndex)
	assert.Equal(t, 1, frames[299].SceneIndex)
}

func TestTimelineGradientFallbackWithoutBackgrounds(t *testing.T) {
	c, err := New(testVideo(), logrus.New())
	require.NoError(t, err)

	frames := c.Timeline(twoSceneScript())
	for _, fr := range frames {
		assert.Equal(t, -1, fr.BackgroundIndex)
		assert.Equal(t, -1, fr.CharacterIndex)
	}
}

func TestTimelineBackgroundIndexWrapsModulo(t *testing.T) {
	c, err := New(testVideo(), logrus.New())
	require.NoError(t, err)
	c.backgrounds = []*image.RGBA{solidImage(108, 192), solidImage(108, 192)}

	script := twoSceneScript()
	script.Scenes[1].BackgroundIndex = 5
	frames := c.Timeline(script)
	assert.Equal(t, 1, frames[299].BackgroundIndex)
}

func TestTimelinePartitionsCharactersEvenly(t *testing.T) {
	c, err := New(testVideo(), logrus.New())
	require.NoError(t, err)
	c.characters = []*image.RGBA{solidImage(10, 20), solidImage(10, 20), solidImage(10, 20)}

	frames := c.Timeline(twoSceneScript())
	require.Len(t, frames, 300)
	assert.Equal(t, 0, frames[0].CharacterIndex)
	assert.Equal(t, 0, frames[99].CharacterIndex)
	assert.Equal(t, 1, frames[100].CharacterIndex)
	assert.Equal(t, 2, frames[299].CharacterIndex)
}

func TestRenderAllWritesZeroPaddedFrames(t *testing.T) {
	video := testVideo()
	video.FPS = 2
	c, err := New(video, logrus.New())
	require.NoError(t, err)

	script := &types.Script{
		TotalDuration: 2,
		Scenes: []types.Scene{
			{Index: 0, StartTime: 0, EndTime: 2, Narration: "a", TextOverlay: "HELLO"},
		},
	}
	dir := t.TempDir()
	n, err := c.RenderAll(context.Background(), script, dir)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for i := 0; i < 4; i++ {
		_, err := os.Stat(filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i)))
		assert.NoError(t, err)
	}
}

func TestRenderAllStopsOnCancelledContext(t *testing.T) {
	c, err := New(testVideo(), logrus.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.RenderAll(ctx, twoSceneScript(), t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
}

func TestGradientFillsCanvas(t *testing.T) {
	img := NewGradientImage(10, 20)
	top := img.RGBAAt(5, 0)
	bottom := img.RGBAAt(5, 19)
	assert.NotEqual(t, top, bottom, "gradient must vary vertically")
	assert.EqualValues(t, 255, top.A)
}

func TestTextWrapBreaksOnWordBoundaries(t *testing.T) {
	tr, err := NewTextRenderer(16)
	require.NoError(t, err)

	lines := tr.Wrap("the quick brown fox jumps over the lazy dog", 120)
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.NotEmpty(t, line)
	}
}
