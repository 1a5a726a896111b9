package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Video    VideoConfig    `yaml:"video"`
	Script   ScriptConfig   `yaml:"script"`
	Visual   VisualConfig   `yaml:"visual"`
	Speech   SpeechConfig   `yaml:"speech"`
	Assets   AssetsConfig   `yaml:"assets"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Paths    PathsConfig    `yaml:"paths"`
}

type VideoConfig struct {
	Width        int    `yaml:"width" validate:"gt=0"`
	Height       int    `yaml:"height" validate:"gt=0"`
	FPS          int    `yaml:"fps" validate:"gt=0"`
	Codec        string `yaml:"codec" validate:"required"`
	AudioCodec   string `yaml:"audio_codec" validate:"required"`
	AudioBitrate string `yaml:"audio_bitrate" validate:"required"`
}

type ScriptConfig struct {
	Providers   []string `yaml:"providers" validate:"min=1"`
	Model       string   `yaml:"model"`
	Temperature float64  `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
}

type VisualConfig struct {
	Providers []string `yaml:"providers" validate:"min=1"`
	// Mode selects the assembly path: "clips" concatenates per-scene
	// clips, "frames" renders the timeline frame by frame from theme
	// assets.
	Mode            string  `yaml:"mode" validate:"oneof=clips frames"`
	PollIntervalSec float64 `yaml:"poll_interval_sec" validate:"gt=0"`
	PollBudgetSec   float64 `yaml:"poll_budget_sec" validate:"gt=0"`
	// DurationTolerance is the acceptable gap, in seconds, between the
	// requested scene duration and the probed clip duration.
	DurationTolerance float64 `yaml:"duration_tolerance" validate:"gt=0"`
	KenBurnsZoom      float64 `yaml:"ken_burns_zoom"`
}

type SpeechConfig struct {
	Providers []string `yaml:"providers" validate:"min=1"`
	Voice     string   `yaml:"voice"`
	Rate      string   `yaml:"rate"`
}

type AssetsConfig struct {
	Theme string `yaml:"theme"`
	Style string `yaml:"style"`
	Dir   string `yaml:"dir"`
}

type PipelineConfig struct {
	// Workers bounds concurrent per-scene visual generation. 1 means
	// strictly sequential.
	Workers       int  `yaml:"workers" validate:"gte=1"`
	KeepArtifacts bool `yaml:"keep_artifacts"`
}

type PathsConfig struct {
	Output string `yaml:"output" validate:"required"`
}

// Default returns the built-in configuration used when no config file is
// supplied.
func Default() *Config {
	return &Config{
		Video: VideoConfig{
			Width:        1080,
			Height:       1920,
			FPS:          30,
			Codec:        "libx264",
			AudioCodec:   "aac",
			AudioBitrate: "192k",
		},
		Script: ScriptConfig{
			Providers:   []string{"groq", "placeholder"},
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Visual: VisualConfig{
			Providers:         []string{"replicate", "pollinations", "placeholder"},
			Mode:              "clips",
			PollIntervalSec:   4,
			PollBudgetSec:     240,
			DurationTolerance: 1.5,
			KenBurnsZoom:      1.08,
		},
		Speech: SpeechConfig{
			Providers: []string{"openai", "edge-tts", "placeholder"},
			Voice:     "en-US-GuyNeural",
			Rate:      "+10%",
		},
		Assets: AssetsConfig{
			Theme: "explainer",
			Style: "cartoon",
			Dir:   "assets",
		},
		Pipeline: PipelineConfig{Workers: 1},
		Paths:    PathsConfig{Output: "output"},
	}
}

// Load reads a YAML config file over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
