// Package pipeline sequences the four generation stages: script, speech,
// visuals, assembly. Stages run strictly in order; a stage starts only
// after its predecessor's output is durably on disk, and a terminal
// failure aborts the run with the originating stage named in the error.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"clipforge/compose"
	"clipforge/config"
	"clipforge/provider"
	"clipforge/resolve"
	"clipforge/types"
)

// Encoder is the assembly collaborator. The ffmpeg implementation lives
// in the encoder package; tests substitute a fake.
type Encoder interface {
	ConcatClips(ctx context.Context, clips []string, destination string) error
	Mux(ctx context.Context, videoPath, audioPath, destination string) error
	EncodeFrames(ctx context.Context, framePattern, audioPath, destination string) error
	Probe(ctx context.Context, path string) (float64, error)
}

// Compositor renders the frame timeline in frames mode.
type Compositor interface {
	LoadManifestAssets(m *types.AssetManifest, assetsDir string) error
	RenderAll(ctx context.Context, script *types.Script, framesDir string) (int, error)
}

// Orchestrator owns one run at a time. It never inspects which concrete
// provider satisfied a capability; that is the resolver's business.
type Orchestrator struct {
	cfg        *config.Config
	scripts    *resolve.Chain[provider.ScriptProvider]
	visuals    *resolve.Chain[provider.VisualProvider]
	speech     *resolve.Chain[provider.SpeechProvider]
	encoder    Encoder
	compositor Compositor
	log        *logrus.Logger
}

func New(
	cfg *config.Config,
	scripts *resolve.Chain[provider.ScriptProvider],
	visuals *resolve.Chain[provider.VisualProvider],
	speech *resolve.Chain[provider.SpeechProvider],
	enc Encoder,
	comp Compositor,
	log *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		scripts:    scripts,
		visuals:    visuals,
		speech:     speech,
		encoder:    enc,
		compositor: comp,
		log:        log,
	}
}

// Run generates one video for the topic and returns the final artifact
// path. Each run owns a private directory under the configured output
// root; the run state JSON is written there whether the run succeeds or
// fails.
func (o *Orchestrator) Run(ctx context.Context, topic string, targetDuration float64) (string, error) {
	runID := uuid.NewString()[:8]
	runDir := filepath.Join(o.cfg.Paths.Output, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	log := o.log.WithField("run", runID)
	log.WithField("topic", topic).Info("pipeline started")

	state := &types.PipelineState{
		RunID:     runID,
		Topic:     topic,
		Style:     o.cfg.Assets.Style,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	defer func() {
		if err := state.Save(runDir); err != nil {
			log.WithError(err).Warn("could not save run state")
		}
	}()

	fail := func(stage string, err error) (string, error) {
		state.Stage = stage
		state.Error = err.Error()
		log.WithField("stage", stage).WithError(err).Error("pipeline aborted")
		return "", fmt.Errorf("%s stage: %w", stage, err)
	}

	// Stage 1: script.
	script, err := o.runScript(ctx, topic, targetDuration, runDir)
	if err != nil {
		return fail("script", err)
	}
	state.Script = script

	// Stage 2: speech over the full narration.
	voice, err := o.runSpeech(ctx, script, runDir)
	if err != nil {
		return fail("speech", err)
	}
	state.AudioFile = voice.Path

	// The voice track is the real clock. Rescale scene boundaries to the
	// measured narration length before any visual is generated so clip
	// durations and the frame timeline line up with the audio.
	rescaleToAudio(script, voice.Duration)
	scriptPath := filepath.Join(runDir, "script.json")
	if err := script.Save(scriptPath); err != nil {
		return fail("speech", err)
	}

	// Stage 3: visuals.
	var clips []string
	framesDir := filepath.Join(runDir, "frames")
	switch o.cfg.Visual.Mode {
	case "frames":
		if err := o.runFrames(ctx, script, framesDir); err != nil {
			return fail("visual", err)
		}
	default:
		clips, err = o.runClips(ctx, script, runDir, log)
		if err != nil {
			return fail("visual", err)
		}
	}

	// Stage 4: assembly.
	finalPath := filepath.Join(runDir, "final.mp4")
	if o.cfg.Visual.Mode == "frames" {
		err = o.encoder.EncodeFrames(ctx, compose.FramePattern(framesDir), voice.Path, finalPath)
	} else {
		visualTrack := filepath.Join(runDir, "visual_track.mp4")
		if err = o.encoder.ConcatClips(ctx, clips, visualTrack); err == nil {
			err = o.encoder.Mux(ctx, visualTrack, voice.Path, finalPath)
		}
		clips = append(clips, visualTrack)
	}
	if err != nil {
		return fail("assemble", err)
	}

	state.VideoFile = finalPath
	state.CompletedAt = time.Now().UTC().Format(time.RFC3339)

	// Cleanup runs only after successful assembly; a failed run keeps its
	// intermediates for diagnosis.
	if !o.cfg.Pipeline.KeepArtifacts {
		o.cleanup(log, append(clips, voice.Path, scriptPath), framesDir)
	}

	log.WithField("output", finalPath).Info("pipeline complete")
	return finalPath, nil
}

func (o *Orchestrator) runScript(ctx context.Context, topic string, targetDuration float64, runDir string) (*types.Script, error) {
	var script *types.Script
	err := o.scripts.Do(ctx, func(ctx context.Context, p provider.ScriptProvider) error {
		s, err := p.GenerateScript(ctx, topic, o.cfg.Assets.Style, targetDuration)
		if err != nil {
			return err
		}
		script = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := script.Save(filepath.Join(runDir, "script.json")); err != nil {
		return nil, err
	}
	return script, nil
}

func (o *Orchestrator) runSpeech(ctx context.Context, script *types.Script, runDir string) (*types.GeneratedAsset, error) {
	dest := filepath.Join(runDir, "narration.mp3")
	var voice *types.GeneratedAsset
	err := o.speech.Do(ctx, func(ctx context.Context, p provider.SpeechProvider) error {
		a, err := p.SynthesizeSpeech(ctx, script.Narration(), dest, o.cfg.Speech.Voice)
		if err != nil {
			return err
		}
		voice = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return voice, nil
}

// runClips generates one clip per scene. With Workers > 1 independent
// scenes run in parallel under a bounded group; the returned slice is
// index-addressed so output order never depends on completion order.
func (o *Orchestrator) runClips(ctx context.Context, script *types.Script, runDir string, log *logrus.Entry) ([]string, error) {
	clips := make([]string, len(script.Scenes))

	generate := func(ctx context.Context, scene types.Scene) error {
		dest := filepath.Join(runDir, fmt.Sprintf("scene_%03d.mp4", scene.Index))
		err := o.visuals.Do(ctx, func(ctx context.Context, p provider.VisualProvider) error {
			asset, err := p.GenerateVisual(ctx, scene.VisualPrompt, scene.Duration(), dest)
			if err != nil {
				return err
			}
			if drift := math.Abs(asset.Duration - scene.Duration()); drift > o.cfg.Visual.DurationTolerance {
				log.WithFields(logrus.Fields{
					"scene": scene.Index,
					"want":  scene.Duration(),
					"got":   asset.Duration,
				}).Warn("clip duration drifts past tolerance")
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("scene %d: %w", scene.Index, err)
		}
		clips[scene.Index] = dest
		return nil
	}

	if o.cfg.Pipeline.Workers <= 1 {
		for _, scene := range script.Scenes {
			if err := generate(ctx, scene); err != nil {
				return nil, err
			}
		}
		return clips, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Pipeline.Workers)
	for _, scene := range script.Scenes {
		scene := scene
		g.Go(func() error {
			return generate(gctx, scene)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clips, nil
}

func (o *Orchestrator) runFrames(ctx context.Context, script *types.Script, framesDir string) error {
	if o.compositor == nil {
		return fmt.Errorf("frames mode requires a compositor")
	}
	manifest, err := types.LoadManifest(o.cfg.Assets.Dir)
	if err == nil {
		if err := o.compositor.LoadManifestAssets(manifest, o.cfg.Assets.Dir); err != nil {
			return fmt.Errorf("load theme assets: %w", err)
		}
	} else {
		// No manifest: every frame falls back to the gradient background.
		o.log.WithError(err).Warn("no asset manifest, rendering gradient-only frames")
	}
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return err
	}
	n, err := o.compositor.RenderAll(ctx, script, framesDir)
	if err != nil {
		return err
	}
	o.log.WithField("frames", n).Info("timeline rendered")
	return nil
}

func (o *Orchestrator) cleanup(log *logrus.Entry, files []string, framesDir string) {
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			log.WithField("file", f).WithError(err).Warn("cleanup failed")
		}
	}
	if err := os.RemoveAll(framesDir); err != nil {
		log.WithError(err).Warn("cleanup failed")
	}
}

// rescaleToAudio stretches or compresses all scene boundaries so the
// final scene ends exactly at the measured narration duration.
func rescaleToAudio(script *types.Script, audioDuration float64) {
	if audioDuration <= 0 || script.TotalDuration <= 0 || len(script.Scenes) == 0 {
		return
	}
	factor := audioDuration / script.TotalDuration
	for i := range script.Scenes {
		script.Scenes[i].StartTime *= factor
		script.Scenes[i].EndTime *= factor
	}
	script.Scenes[len(script.Scenes)-1].EndTime = audioDuration
	script.TotalDuration = audioDuration
}
