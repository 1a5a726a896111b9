package types

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// Scene is one narration+visual segment of the video, bounded by a
// start/end time in seconds.
type Scene struct {
	Index           int     `json:"index"`
	StartTime       float64 `json:"start_time"`
	EndTime         float64 `json:"end_time"`
	Narration       string  `json:"narration"`
	VisualPrompt    string  `json:"visual_prompt"`
	TextOverlay     string  `json:"text_overlay,omitempty"`
	BackgroundIndex int     `json:"background_index"`
}

// Duration returns the scene's length in seconds.
func (s Scene) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Contains reports whether t falls in the scene's [start, end) interval.
func (s Scene) Contains(t float64) bool {
	return t >= s.StartTime && t < s.EndTime
}

// Script is the full generative plan for one video.
type Script struct {
	Title         string  `json:"title"`
	Topic         string  `json:"topic"`
	Style         string  `json:"style"`
	TotalDuration float64 `json:"total_duration"`
	Scenes        []Scene `json:"scenes"`
}

// Narration joins scene narrations in index order. This is the single
// source of truth for the voiceover text; it is derived on every call so
// it can never drift from the scenes.
func (s *Script) Narration() string {
	parts := make([]string, 0, len(s.Scenes))
	for _, scene := range s.Scenes {
		parts = append(parts, scene.Narration)
	}
	return strings.Join(parts, " ")
}

// Save writes the script JSON to path. The file is the sole durable record
// of the plan and must be re-loadable with LoadScript.
func (s *Script) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadScript reads a script JSON previously written by Save.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return &s, nil
}

// boundaryTolerance absorbs float rounding at scene boundaries and the
// final scene's end against the declared total.
const boundaryTolerance = 0.05

// ValidationError reports malformed scene data. It fails the run before
// any remote call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid script: " + e.Reason
}

// Validate checks the scene interval invariants: indexes contiguous from
// zero, every interval non-empty, no gaps or overlaps between consecutive
// scenes, and the final end matching the declared total duration.
func (s *Script) Validate() error {
	if len(s.Scenes) == 0 {
		return &ValidationError{Reason: "script has no scenes"}
	}
	for i, sc := range s.Scenes {
		if sc.Index != i {
			return &ValidationError{Reason: fmt.Sprintf("scene %d carries index %d", i, sc.Index)}
		}
		if sc.EndTime <= sc.StartTime {
			return &ValidationError{Reason: fmt.Sprintf("scene %d has end %.3f <= start %.3f", i, sc.EndTime, sc.StartTime)}
		}
		if strings.TrimSpace(sc.Narration) == "" {
			return &ValidationError{Reason: fmt.Sprintf("scene %d has empty narration", i)}
		}
		if i == 0 && math.Abs(sc.StartTime) > boundaryTolerance {
			return &ValidationError{Reason: fmt.Sprintf("first scene starts at %.3f, not 0", sc.StartTime)}
		}
		if i > 0 {
			prev := s.Scenes[i-1]
			if sc.StartTime < prev.EndTime-boundaryTolerance {
				return &ValidationError{Reason: fmt.Sprintf("scene %d starts at %.3f before scene %d ends at %.3f", i, sc.StartTime, i-1, prev.EndTime)}
			}
			if sc.StartTime > prev.EndTime+boundaryTolerance {
				return &ValidationError{Reason: fmt.Sprintf("gap between scene %d (ends %.3f) and scene %d (starts %.3f)", i-1, prev.EndTime, i, sc.StartTime)}
			}
		}
	}
	last := s.Scenes[len(s.Scenes)-1]
	if s.TotalDuration > 0 && math.Abs(last.EndTime-s.TotalDuration) > boundaryTolerance {
		return &ValidationError{Reason: fmt.Sprintf("final scene ends at %.3f but total duration is %.3f", last.EndTime, s.TotalDuration)}
	}
	return nil
}

// AssetKind classifies a generated artifact.
type AssetKind string

const (
	AssetVideo AssetKind = "video"
	AssetAudio AssetKind = "audio"
	AssetImage AssetKind = "image"
)

// GeneratedAsset is a durable artifact produced by exactly one provider
// call. The path is owned by the pipeline run that created it; nothing
// else may move or mutate the file, and it is deleted only after the
// downstream consumer has finished with it.
type GeneratedAsset struct {
	Path     string            `json:"path"`
	Kind     AssetKind         `json:"kind"`
	Duration float64           `json:"duration"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PipelineState tracks one pipeline run end to end. It is saved to the
// run directory whether the run succeeds or fails so a failed run stays
// diagnosable.
type PipelineState struct {
	RunID       string  `json:"run_id"`
	Topic       string  `json:"topic"`
	Style       string  `json:"style"`
	StartedAt   string  `json:"started_at"`
	CompletedAt string  `json:"completed_at,omitempty"`
	Script      *Script `json:"script,omitempty"`
	AudioFile   string  `json:"audio_file,omitempty"`
	VideoFile   string  `json:"video_file,omitempty"`
	Stage       string  `json:"stage,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Save writes the state JSON into dir.
func (p *PipelineState) Save(dir string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(dir+"/pipeline_state.json", data, 0644)
}
