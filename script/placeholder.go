package script

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"clipforge/types"
)

// Placeholder writes a deterministic script locally so the pipeline can
// complete end-to-end with zero configured credentials.
type Placeholder struct {
	log *logrus.Entry
}

func NewPlaceholder(log *logrus.Logger) *Placeholder {
	return &Placeholder{log: log.WithField("stage", "script").WithField("provider", "placeholder")}
}

func (p *Placeholder) Name() string     { return "placeholder" }
func (p *Placeholder) Configured() bool { return true }

// Templated beats for a generic explainer arc. The topic is spliced into
// each one.
var beats = []struct {
	narration string
	visual    string
	overlay   string
}{
	{"Here's something most people get wrong about %s.", "dramatic close-up establishing shot of %s, cinematic lighting", "WAIT."},
	{"Let's break down what %s actually is, in plain terms.", "clean explanatory illustration of %s, bright and simple", ""},
	{"The first thing to understand is why %s matters at all.", "wide contextual scene showing %s in everyday use", ""},
	{"But there's a twist that changes how you see %s completely.", "unexpected reveal composition about %s, high contrast", "PLOT TWIST"},
	{"Here's how that plays out in practice.", "practical demonstration scene related to %s", ""},
	{"So next time %s comes up, you'll know exactly what's going on.", "satisfying closing shot about %s, warm tones", "NOW YOU KNOW"},
}

// GenerateScript partitions the target duration evenly across a
// topic-templated scene list. Same inputs always produce the same
// script.
func (p *Placeholder) GenerateScript(ctx context.Context, topic, style string, targetDuration float64) (*types.Script, error) {
	n := int(math.Round(targetDuration / 10.0))
	if n < minScenes {
		n = minScenes
	}
	if n > len(beats) {
		n = len(beats)
	}

	per := targetDuration / float64(n)
	script := &types.Script{
		Title:         fmt.Sprintf("%s, Explained", titleCase(topic)),
		Topic:         topic,
		Style:         style,
		TotalDuration: targetDuration,
	}
	for i := 0; i < n; i++ {
		b := beats[i]
		scene := types.Scene{
			Index:           i,
			StartTime:       float64(i) * per,
			EndTime:         float64(i+1) * per,
			Narration:       sprintfIf(b.narration, topic),
			VisualPrompt:    sprintfIf(b.visual, topic),
			TextOverlay:     b.overlay,
			BackgroundIndex: i,
		}
		script.Scenes = append(script.Scenes, scene)
	}
	script.Scenes[n-1].EndTime = targetDuration

	if err := script.Validate(); err != nil {
		return nil, err
	}
	p.log.WithField("scenes", n).Info("placeholder script generated")
	return script, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sprintfIf(format, topic string) string {
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, topic)
	}
	return format
}
