package types

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validScript() *Script {
	return &Script{
		Title:         "Test",
		Topic:         "testing",
		Style:         "cartoon",
		TotalDuration: 10,
		Scenes: []Scene{
			{Index: 0, StartTime: 0, EndTime: 5, Narration: "first half", VisualPrompt: "a"},
			{Index: 1, StartTime: 5, EndTime: 10, Narration: "second half", VisualPrompt: "b"},
		},
	}
}

func TestValidateAcceptsContiguousScenes(t *testing.T) {
	require.NoError(t, validScript().Validate())
}

func TestValidateRejectsGap(t *testing.T) {
	s := validScript()
	s.Scenes[1].StartTime = 6
	err := s.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "gap")
}

func TestValidateRejectsOverlap(t *testing.T) {
	s := validScript()
	s.Scenes[1].StartTime = 4
	require.Error(t, s.Validate())
}

func TestValidateRejectsEmptyInterval(t *testing.T) {
	s := validScript()
	s.Scenes[1].EndTime = s.Scenes[1].StartTime
	require.Error(t, s.Validate())
}

func TestValidateRejectsEmptyNarration(t *testing.T) {
	s := validScript()
	s.Scenes[0].Narration = "   "
	require.Error(t, s.Validate())
}

func TestValidateRejectsMisnumberedScenes(t *testing.T) {
	s := validScript()
	s.Scenes[1].Index = 5
	require.Error(t, s.Validate())
}

func TestValidateRejectsFinalEndMismatch(t *testing.T) {
	s := validScript()
	s.TotalDuration = 12
	require.Error(t, s.Validate())
}

func TestValidateToleratesFloatJitter(t *testing.T) {
	s := validScript()
	s.Scenes[1].StartTime = 5.01
	s.TotalDuration = 10.02
	s.Scenes[1].EndTime = 10
	require.NoError(t, s.Validate())
}

func TestSceneContainsIsHalfOpen(t *testing.T) {
	sc := Scene{StartTime: 5, EndTime: 10}
	assert.True(t, sc.Contains(5))
	assert.True(t, sc.Contains(9.999))
	assert.False(t, sc.Contains(10))
	assert.False(t, sc.Contains(4.999))
}

func TestNarrationJoinsInSceneOrder(t *testing.T) {
	s := validScript()
	assert.Equal(t, "first half second half", s.Narration())
}

func TestScriptSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.json")
	s := validScript()
	require.NoError(t, s.Save(path))

	loaded, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, s.Scenes, loaded.Scenes)
	assert.Equal(t, s.TotalDuration, loaded.TotalDuration)
}

func TestManifestSaveRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	m := &AssetManifest{
		Theme: "explainer",
		Style: "cartoon",
		Assets: map[string][]string{
			CategoryBackgrounds: {"backgrounds/bg_intro.png"},
		},
	}
	require.NoError(t, m.Save(dir))
	require.Error(t, m.Save(dir))

	loaded, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"backgrounds/bg_intro.png"}, loaded.Paths(CategoryBackgrounds))
	assert.Nil(t, loaded.Paths(CategoryCharacters))
}
