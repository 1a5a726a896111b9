package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"clipforge/compose"
	"clipforge/types"
)

// ImageSource fetches a generated still for a prompt. The Pollinations
// visual provider satisfies this directly.
type ImageSource interface {
	FetchImage(ctx context.Context, prompt string, width, height int, destination string) error
}

// Generator produces a theme's full asset set (backgrounds, characters,
// props) plus its manifest. Assets the source cannot produce fall back
// to offline gradient cards so a set is always complete.
type Generator struct {
	source ImageSource
	log    *logrus.Entry
}

func NewGenerator(source ImageSource, log *logrus.Logger) *Generator {
	return &Generator{source: source, log: log.WithField("stage", "assets")}
}

// Generate renders every asset of the named theme into dir and writes
// the manifest. The manifest is written last, and only once: an existing
// manifest in dir is an error.
func (g *Generator) Generate(ctx context.Context, themeName, styleName, dir string) (*types.AssetManifest, error) {
	theme, ok := themes[themeName]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (available: %s)", themeName, strings.Join(ThemeNames(), ", "))
	}
	suffix := StyleSuffix(styleName)

	manifest := &types.AssetManifest{
		Theme:       themeName,
		Style:       styleName,
		Description: theme.Description,
		Assets:      map[string][]string{},
	}

	categories := []struct {
		name   string
		assets []ThemeAsset
	}{
		{types.CategoryBackgrounds, theme.Backgrounds},
		{types.CategoryCharacters, theme.Characters},
		{types.CategoryProps, theme.Props},
	}

	for _, cat := range categories {
		catDir := filepath.Join(dir, cat.name)
		if err := os.MkdirAll(catDir, 0755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", cat.name, err)
		}
		for _, asset := range cat.assets {
			rel := filepath.Join(cat.name, asset.Name+".png")
			dest := filepath.Join(dir, rel)
			g.log.WithFields(logrus.Fields{"category": cat.name, "asset": asset.Name}).Info("generating asset")

			if err := g.source.FetchImage(ctx, asset.Prompt+suffix, asset.Width, asset.Height, dest); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				g.log.WithError(err).Warn("image source failed, writing offline card")
				if err := writeOfflineCard(asset, dest); err != nil {
					return nil, fmt.Errorf("asset %s: %w", asset.Name, err)
				}
			}
			manifest.Assets[cat.name] = append(manifest.Assets[cat.name], rel)
		}
	}

	if err := manifest.Save(dir); err != nil {
		return nil, err
	}
	g.log.WithField("dir", dir).Info("asset set complete")
	return manifest, nil
}

// Preview reports which manifest entries exist on disk. Missing files
// are listed but do not error.
func Preview(dir string) (*types.AssetManifest, map[string]bool, error) {
	manifest, err := types.LoadManifest(dir)
	if err != nil {
		return nil, nil, err
	}
	present := make(map[string]bool)
	for _, paths := range manifest.Assets {
		for _, rel := range paths {
			_, err := os.Stat(filepath.Join(dir, rel))
			present[rel] = err == nil
		}
	}
	return manifest, present, nil
}

func writeOfflineCard(asset ThemeAsset, destination string) error {
	canvas := compose.NewGradientImage(asset.Width, asset.Height)
	text, err := compose.NewTextRenderer(float64(asset.Height) / 30)
	if err != nil {
		return err
	}
	lines := text.Wrap(asset.Prompt, asset.Width*8/10)
	text.DrawCentered(canvas, strings.Join(lines, "\n"), asset.Height/2)
	return compose.SavePNG(destination, canvas)
}
