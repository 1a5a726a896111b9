package script

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge/config"
	"clipforge/provider"
)

func testScriptConfig() config.ScriptConfig {
	return config.ScriptConfig{
		Providers:   []string{"groq"},
		Model:       "llama-3.3-70b-versatile",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

const modelOutput = `{
  "title": "Why Volcanoes Erupt",
  "scenes": [
    {"start_time": 0, "end_time": 6, "narration": "Under your feet, rock is melting.", "visual_prompt": "glowing magma underground", "text_overlay": "MELTING ROCK"},
    {"start_time": 6, "end_time": 13, "narration": "Pressure builds for centuries.", "visual_prompt": "pressure gauge rising"},
    {"start_time": 13, "end_time": 20, "narration": "Then one crack is all it takes.", "visual_prompt": "volcano erupting at night"}
  ]
}`

func TestParseScriptRescalesToTarget(t *testing.T) {
	script, err := parseScript("groq", modelOutput, "volcanoes", "cartoon", 60)
	require.NoError(t, err)

	require.Len(t, script.Scenes, 3)
	assert.Equal(t, 60.0, script.TotalDuration)
	assert.Equal(t, 60.0, script.Scenes[2].EndTime)
	assert.InDelta(t, 0, script.Scenes[0].StartTime, 0.001)
	// 6/20 of the target.
	assert.InDelta(t, 18, script.Scenes[0].EndTime, 0.001)
	require.NoError(t, script.Validate())
}

func TestParseScriptStripsMarkdownFence(t *testing.T) {
	fenced := "```json\n" + modelOutput + "\n```"
	script, err := parseScript("groq", fenced, "volcanoes", "cartoon", 20)
	require.NoError(t, err)
	assert.Equal(t, "Why Volcanoes Erupt", script.Title)
}

func TestParseScriptDerivesTimingsFromWordCount(t *testing.T) {
	noTimings := `{
  "title": "T",
  "scenes": [
    {"narration": "one two three four five six seven eight nine ten", "visual_prompt": "a"},
    {"narration": "a bunch of words in the middle scene here now", "visual_prompt": "b"},
    {"narration": "short final beat", "visual_prompt": "c"}
  ]
}`
	script, err := parseScript("groq", noTimings, "t", "cartoon", 30)
	require.NoError(t, err)
	require.NoError(t, script.Validate())
	assert.Equal(t, 30.0, script.Scenes[2].EndTime)
}

func TestParseScriptClosesModelGaps(t *testing.T) {
	gappy := `{
  "title": "T",
  "scenes": [
    {"start_time": 0, "end_time": 5, "narration": "a b c", "visual_prompt": "a"},
    {"start_time": 6, "end_time": 11, "narration": "d e f", "visual_prompt": "b"},
    {"start_time": 12, "end_time": 18, "narration": "g h i", "visual_prompt": "c"}
  ]
}`
	script, err := parseScript("groq", gappy, "t", "cartoon", 48)
	require.NoError(t, err)
	require.NoError(t, script.Validate())
}

func TestParseScriptRejectsTooFewScenes(t *testing.T) {
	short := `{"title":"T","scenes":[{"start_time":0,"end_time":10,"narration":"only one","visual_prompt":"a"}]}`
	_, err := parseScript("groq", short, "t", "cartoon", 10)
	var gerr *provider.GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, gerr.Reason, "scene count")
}

func TestParseScriptRejectsGarbage(t *testing.T) {
	_, err := parseScript("groq", "Sure! Here's your script:", "t", "cartoon", 10)
	var gerr *provider.GenerationError
	require.ErrorAs(t, err, &gerr)
}

func TestChatUnconfiguredReturnsAuthError(t *testing.T) {
	c := newChat("groq", "https://example.invalid", "", testScriptConfig(), logrus.New())
	assert.False(t, c.Configured())

	_, err := c.GenerateScript(context.Background(), "topic", "cartoon", 60)
	require.True(t, provider.IsAuth(err))
}

func TestPlaceholderIsDeterministic(t *testing.T) {
	p := NewPlaceholder(logrus.New())
	require.True(t, p.Configured())

	a, err := p.GenerateScript(context.Background(), "black holes", "cartoon", 60)
	require.NoError(t, err)
	b, err := p.GenerateScript(context.Background(), "black holes", "cartoon", 60)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPlaceholderCoversTargetDuration(t *testing.T) {
	p := NewPlaceholder(logrus.New())
	for _, target := range []float64{20, 45, 60, 90} {
		script, err := p.GenerateScript(context.Background(), "topic", "cartoon", target)
		require.NoError(t, err)
		require.NoError(t, script.Validate())
		assert.Equal(t, target, script.TotalDuration)
		assert.GreaterOrEqual(t, len(script.Scenes), 3)
		assert.LessOrEqual(t, len(script.Scenes), 6)
	}
}
