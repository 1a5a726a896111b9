// Package encoder wraps the external ffmpeg/ffprobe binaries behind the
// pipeline's declared contract: lossless clip concatenation, audio
// muxing truncated to the shorter stream, and frame-sequence encoding.
// The binaries are opaque collaborators; a nonzero exit is a fatal
// AssemblyError carrying the captured diagnostic output.
package encoder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"clipforge/config"
)

// AssemblyError reports a nonzero exit from the encoder collaborator.
// Output preserves the captured stderr/stdout so the remote diagnostic
// is never collapsed into a generic message.
type AssemblyError struct {
	Op     string
	Cause  string
	Output string
}

func (e *AssemblyError) Error() string {
	out := strings.TrimSpace(e.Output)
	if len(out) > 800 {
		out = "..." + out[len(out)-800:]
	}
	return fmt.Sprintf("encoder %s: %s\n%s", e.Op, e.Cause, out)
}

// FFmpeg invokes the ffmpeg and ffprobe binaries with the run's fixed
// video parameters.
type FFmpeg struct {
	Bin      string
	ProbeBin string
	video    config.VideoConfig
	log      *logrus.Entry
}

func New(video config.VideoConfig, log *logrus.Logger) *FFmpeg {
	return &FFmpeg{
		Bin:      "ffmpeg",
		ProbeBin: "ffprobe",
		video:    video,
		log:      log.WithField("stage", "encode"),
	}
}

// run executes the binary and captures combined output; on failure the
// output travels with the error.
func (f *FFmpeg) run(ctx context.Context, op string, args ...string) error {
	cmd := exec.CommandContext(ctx, f.Bin, args...)
	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output
	f.log.WithField("op", op).Debug(f.Bin + " " + strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return &AssemblyError{Op: op, Cause: err.Error(), Output: output.String()}
	}
	return nil
}

// ConcatClips joins the clips losslessly, in the given order, via the
// concat demuxer.
func (f *FFmpeg) ConcatClips(ctx context.Context, clips []string, destination string) error {
	if len(clips) == 0 {
		return &AssemblyError{Op: "concat", Cause: "no clips to concatenate"}
	}
	listFile := filepath.Join(filepath.Dir(destination), "concat_list.txt")
	var lines []string
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			abs = clip
		}
		lines = append(lines, fmt.Sprintf("file '%s'", abs))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return err
	}
	defer os.Remove(listFile)

	return f.run(ctx, "concat",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		destination,
	)
}

// Mux combines a silent video with an audio track, truncating to the
// shorter of the two.
func (f *FFmpeg) Mux(ctx context.Context, videoPath, audioPath, destination string) error {
	return f.run(ctx, "mux",
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", f.video.AudioCodec,
		"-b:a", f.video.AudioBitrate,
		"-shortest",
		"-movflags", "+faststart",
		destination,
	)
}

// EncodeFrames compiles a zero-padded frame sequence plus an audio track
// into the final container at the fixed frame rate.
func (f *FFmpeg) EncodeFrames(ctx context.Context, framePattern, audioPath, destination string) error {
	return f.run(ctx, "frames",
		"-y",
		"-framerate", strconv.Itoa(f.video.FPS),
		"-i", framePattern,
		"-i", audioPath,
		"-c:v", f.video.Codec,
		"-preset", "medium",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-c:a", f.video.AudioCodec,
		"-b:a", f.video.AudioBitrate,
		"-shortest",
		"-movflags", "+faststart",
		destination,
	)
}

// StillToClip turns a still image into a silent clip of the requested
// duration with a slow Ken Burns zoom.
func (f *FFmpeg) StillToClip(ctx context.Context, imagePath string, duration, zoom float64, destination string) error {
	if zoom <= 1.0 {
		zoom = 1.08
	}
	totalFrames := int(duration * float64(f.video.FPS))
	if totalFrames < 1 {
		totalFrames = 1
	}
	zoomStep := (zoom - 1.0) / float64(totalFrames)
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,zoompan=z='min(zoom+%.6f,%.3f)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=%d",
		f.video.Width*2, f.video.Height*2,
		f.video.Width*2, f.video.Height*2,
		zoomStep, zoom, totalFrames,
		f.video.Width, f.video.Height, f.video.FPS,
	)
	return f.run(ctx, "still",
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-vf", filter,
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", f.video.Codec,
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-an",
		destination,
	)
}

// Silence writes an audio file of exactly the requested duration.
func (f *FFmpeg) Silence(ctx context.Context, duration float64, destination string) error {
	return f.run(ctx, "silence",
		"-y",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=mono",
		"-t", fmt.Sprintf("%.3f", duration),
		"-q:a", "9",
		destination,
	)
}

// Probe returns the playable duration of a media file in seconds,
// measured from the physical artifact.
func (f *FFmpeg) Probe(ctx context.Context, path string) (float64, error) {
	out, err := exec.CommandContext(ctx, f.ProbeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return dur, nil
}
