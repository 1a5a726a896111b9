package assets

import "sort"

// ThemeAsset describes one image to generate for a theme.
type ThemeAsset struct {
	Name   string
	Prompt string
	Width  int
	Height int
}

// Theme groups the prompts that make up a reusable asset set.
type Theme struct {
	Description string
	Backgrounds []ThemeAsset
	Characters  []ThemeAsset
	Props       []ThemeAsset
}

var themes = map[string]Theme{
	"explainer": {
		Description: "General-purpose topic explainer",
		Backgrounds: []ThemeAsset{
			{Name: "bg_intro", Prompt: "Dark dramatic background with colorful accent lighting, abstract geometric shapes, cinematic mood", Width: 1080, Height: 1920},
			{Name: "bg_focus", Prompt: "Intense dark background with spotlight effect, deep blue and black color scheme, dramatic shadows", Width: 1080, Height: 1920},
			{Name: "bg_energy", Prompt: "Energetic abstract background with motion streaks, neon colors on dark background, motion blur", Width: 1080, Height: 1920},
			{Name: "bg_outro", Prompt: "Calm dark background with subtle warm glow, vignette effect, minimal atmosphere", Width: 1080, Height: 1920},
		},
		Characters: []ThemeAsset{
			{Name: "character_neutral", Prompt: "Cartoon-style young adult character, casual confident pose, neutral expression, colorful modern clothing, facing forward, clean lines", Width: 512, Height: 768},
			{Name: "character_shocked", Prompt: "Cartoon-style young adult character, shocked surprised expression, wide eyes, hands up in disbelief, expressive pose", Width: 512, Height: 768},
			{Name: "character_explaining", Prompt: "Cartoon-style young adult character pointing and explaining, hand gesture toward side, teaching pose, confident expression", Width: 512, Height: 768},
			{Name: "character_serious", Prompt: "Cartoon-style young adult character, dead serious intense expression, arms crossed, stern look", Width: 512, Height: 768},
		},
		Props: []ThemeAsset{
			{Name: "lightbulb", Prompt: "Glowing lightbulb icon, idea moment, dramatic lighting, isolated on plain background", Width: 400, Height: 400},
			{Name: "arrow_up", Prompt: "Bold upward arrow with glow effect, momentum and progress feeling", Width: 300, Height: 400},
		},
	},
	"finance": {
		Description: "Personal finance fundamentals explainer",
		Backgrounds: []ThemeAsset{
			{Name: "bg_intro", Prompt: "Clean modern gradient background, soft blue and green tones, professional financial aesthetic, subtle geometric patterns", Width: 1080, Height: 1920},
			{Name: "bg_growth", Prompt: "Abstract upward trending graph background, green glow, wealth and prosperity feeling, clean minimal design", Width: 1080, Height: 1920},
			{Name: "bg_warning", Prompt: "Subtle red gradient background, warning atmosphere, cautionary mood", Width: 1080, Height: 1920},
			{Name: "bg_success", Prompt: "Triumphant golden hour gradient background, warm orange and yellow tones, achievement feeling", Width: 1080, Height: 1920},
		},
		Characters: []ThemeAsset{
			{Name: "character_friendly", Prompt: "Friendly professional cartoon character, business casual attire, welcoming smile, approachable pose, clean modern style", Width: 512, Height: 768},
			{Name: "character_explaining", Prompt: "Professional cartoon character pointing and explaining, hand gesture toward side, teaching pose, confident expression", Width: 512, Height: 768},
		},
		Props: []ThemeAsset{
			{Name: "pie_chart", Prompt: "Clean 3D pie chart with three sections in blue, green, and orange, modern infographic style", Width: 400, Height: 400},
			{Name: "money_stack", Prompt: "Stack of dollar bills with coins, clean illustration style, growth arrow", Width: 300, Height: 300},
		},
	},
}

// Style suffixes appended to every asset prompt.
var styles = map[string]string{
	"cartoon":   ", cartoon style, 2D animated, clean lines, vibrant colors",
	"anime":     ", anime style, Japanese animation, expressive, detailed shading",
	"realistic": ", photorealistic, high detail, cinematic lighting, 8K quality",
	"minimal":   ", minimalist design, flat colors, clean geometric shapes, modern aesthetic",
	"retro":     ", retro 80s style, neon colors, synthwave aesthetic, VHS texture",
}

// ThemeNames lists the known themes sorted by name.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StyleNames lists the known style modifiers sorted by name.
func StyleNames() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StyleSuffix returns the prompt modifier for a style, or "" if unknown.
func StyleSuffix(style string) string {
	return styles[style]
}
