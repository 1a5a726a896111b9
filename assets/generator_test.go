package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge/types"
)

type fakeSource struct {
	fail    bool
	prompts []string
}

func (f *fakeSource) FetchImage(ctx context.Context, prompt string, width, height int, destination string) error {
	f.prompts = append(f.prompts, prompt)
	if f.fail {
		return errors.New("network down")
	}
	return os.WriteFile(destination, []byte("png"), 0644)
}

func TestGenerateWritesEveryAssetAndManifest(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{}
	gen := NewGenerator(source, logrus.New())

	manifest, err := gen.Generate(context.Background(), "explainer", "cartoon", dir)
	require.NoError(t, err)

	assert.Equal(t, "explainer", manifest.Theme)
	assert.Len(t, manifest.Paths(types.CategoryBackgrounds), 4)
	assert.Len(t, manifest.Paths(types.CategoryCharacters), 4)
	assert.Len(t, manifest.Paths(types.CategoryProps), 2)

	for _, paths := range manifest.Assets {
		for _, rel := range paths {
			assert.FileExists(t, filepath.Join(dir, rel))
		}
	}

	loaded, err := types.LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, manifest.Assets, loaded.Assets)
}

func TestGenerateAppendsStyleSuffix(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{}
	gen := NewGenerator(source, logrus.New())

	_, err := gen.Generate(context.Background(), "finance", "retro", dir)
	require.NoError(t, err)

	require.NotEmpty(t, source.prompts)
	for _, prompt := range source.prompts {
		assert.Contains(t, prompt, "synthwave aesthetic")
	}
}

func TestGenerateFallsBackToOfflineCards(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(&fakeSource{fail: true}, logrus.New())

	manifest, err := gen.Generate(context.Background(), "explainer", "cartoon", dir)
	require.NoError(t, err)

	// Every asset exists even though the source never produced one.
	for _, paths := range manifest.Assets {
		for _, rel := range paths {
			info, err := os.Stat(filepath.Join(dir, rel))
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		}
	}
}

func TestGenerateRefusesSecondManifest(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(&fakeSource{}, logrus.New())

	_, err := gen.Generate(context.Background(), "explainer", "cartoon", dir)
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), "explainer", "cartoon", dir)
	require.Error(t, err)
}

func TestGenerateRejectsUnknownTheme(t *testing.T) {
	gen := NewGenerator(&fakeSource{}, logrus.New())
	_, err := gen.Generate(context.Background(), "cooking", "cartoon", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown theme")
}

func TestPreviewReportsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(&fakeSource{}, logrus.New())
	manifest, err := gen.Generate(context.Background(), "explainer", "cartoon", dir)
	require.NoError(t, err)

	victim := filepath.Join(dir, manifest.Paths(types.CategoryProps)[0])
	require.NoError(t, os.Remove(victim))

	_, present, err := Preview(dir)
	require.NoError(t, err)
	assert.False(t, present[manifest.Paths(types.CategoryProps)[0]])
	assert.True(t, present[manifest.Paths(types.CategoryBackgrounds)[0]])
}

func TestThemeAndStyleNamesAreSorted(t *testing.T) {
	assert.Equal(t, []string{"explainer", "finance"}, ThemeNames())
	assert.Contains(t, StyleNames(), "cartoon")
	assert.Empty(t, StyleSuffix("nope"))
}
