// Package script holds the script-generation providers: an LLM
// chat-completions writer and a deterministic local placeholder.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"clipforge/config"
	"clipforge/provider"
	"clipforge/types"
)

const systemPrompt = `You are a scriptwriter for short vertical explainer videos.

You MUST respond with ONLY valid JSON — no preamble, no markdown, no explanation.

Return a JSON object:
{
  "title": "Video title",
  "scenes": [
    {
      "start_time": 0,
      "end_time": 5,
      "narration": "What the narrator says",
      "visual_prompt": "Specific description of visuals to generate",
      "text_overlay": "Bold on-screen text (optional)"
    }
  ]
}

Requirements:
- Hook in the first 3 seconds
- Between 3 and 12 scenes, each 5-15 seconds
- Scenes must be back-to-back: each scene starts where the previous one ends
- Narration conversational and engaging
- Text overlays only for key statistics or emphasis`

// Bounds on scene count for downstream pacing.
const (
	minScenes = 3
	maxScenes = 12
)

// wordsPerMinute is the fallback pacing used when the model omits scene
// timings.
const wordsPerMinute = 130.0

// Chat generates scripts through an OpenAI-compatible chat completions
// endpoint.
type Chat struct {
	name   string
	url    string
	apiKey string
	cfg    config.ScriptConfig
	client *http.Client
	log    *logrus.Entry
}

// NewGroq builds the Groq-backed writer.
func NewGroq(cfg config.ScriptConfig, creds *config.Credentials, log *logrus.Logger) *Chat {
	return newChat("groq", "https://api.groq.com/openai/v1/chat/completions", creds.GroqKey, cfg, log)
}

// NewOpenAI builds the OpenAI-backed writer.
func NewOpenAI(cfg config.ScriptConfig, creds *config.Credentials, log *logrus.Logger) *Chat {
	c := newChat("openai", "https://api.openai.com/v1/chat/completions", creds.OpenAIKey, cfg, log)
	if cfg.Model == "" || strings.HasPrefix(cfg.Model, "llama") {
		c.cfg.Model = "gpt-4o-mini"
	}
	return c
}

func newChat(name, url, apiKey string, cfg config.ScriptConfig, log *logrus.Logger) *Chat {
	return &Chat{
		name:   name,
		url:    url,
		apiKey: apiKey,
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		log:    log.WithField("stage", "script").WithField("provider", name),
	}
}

func (c *Chat) Name() string     { return c.name }
func (c *Chat) Configured() bool { return c.apiKey != "" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// scriptJSON is the raw shape the model returns.
type scriptJSON struct {
	Title  string `json:"title"`
	Scenes []struct {
		StartTime    float64 `json:"start_time"`
		EndTime      float64 `json:"end_time"`
		Narration    string  `json:"narration"`
		VisualPrompt string  `json:"visual_prompt"`
		TextOverlay  string  `json:"text_overlay"`
	} `json:"scenes"`
}

// GenerateScript asks the model for a scene script and normalizes it so
// the interval coverage invariant holds against the target duration.
func (c *Chat) GenerateScript(ctx context.Context, topic, style string, targetDuration float64) (*types.Script, error) {
	if c.apiKey == "" {
		return nil, &provider.AuthError{Provider: c.name, Reason: "API key not set"}
	}

	c.log.WithField("topic", topic).Info("generating script")

	userPrompt := fmt.Sprintf(
		"Write a %.0f-second vertical video script about: %s\n\nStyle: %s\n\nRespond ONLY with valid JSON. No markdown. No explanation.",
		targetDuration, topic, style,
	)
	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &provider.GenerationError{Provider: c.name, Reason: err.Error()}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &provider.AuthError{Provider: c.name, Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(respBytes), 200))}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return nil, &provider.GenerationError{Provider: c.name, Reason: fmt.Sprintf("parse response: %v", err)}
	}
	if chatResp.Error != nil {
		return nil, &provider.GenerationError{Provider: c.name, Reason: chatResp.Error.Message}
	}
	if len(chatResp.Choices) == 0 {
		return nil, &provider.GenerationError{Provider: c.name, Reason: "model returned no choices"}
	}

	script, err := parseScript(c.name, chatResp.Choices[0].Message.Content, topic, style, targetDuration)
	if err != nil {
		return nil, err
	}
	c.log.WithField("scenes", len(script.Scenes)).WithField("total", script.TotalDuration).Info("script ready")
	return script, nil
}

// parseScript converts the model's raw JSON into a validated Script.
func parseScript(providerName, content, topic, style string, targetDuration float64) (*types.Script, error) {
	content = cleanJSON(content)

	var raw scriptJSON
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, &provider.GenerationError{
			Provider: providerName,
			Reason:   fmt.Sprintf("script JSON unparseable: %v; raw: %s", err, truncate(content, 200)),
		}
	}
	if len(raw.Scenes) < minScenes || len(raw.Scenes) > maxScenes {
		return nil, &provider.GenerationError{
			Provider: providerName,
			Reason:   fmt.Sprintf("scene count %d outside [%d, %d]", len(raw.Scenes), minScenes, maxScenes),
		}
	}

	script := &types.Script{
		Title:         raw.Title,
		Topic:         topic,
		Style:         style,
		TotalDuration: targetDuration,
	}
	for i, s := range raw.Scenes {
		script.Scenes = append(script.Scenes, types.Scene{
			Index:           i,
			StartTime:       s.StartTime,
			EndTime:         s.EndTime,
			Narration:       s.Narration,
			VisualPrompt:    s.VisualPrompt,
			TextOverlay:     s.TextOverlay,
			BackgroundIndex: i,
		})
	}

	if !hasTimings(script.Scenes) {
		deriveTimings(script.Scenes)
	}
	rescale(script.Scenes, targetDuration)

	if err := script.Validate(); err != nil {
		return nil, &provider.GenerationError{Provider: providerName, Reason: err.Error()}
	}
	return script, nil
}

func hasTimings(scenes []types.Scene) bool {
	for _, s := range scenes {
		if s.EndTime > s.StartTime {
			return true
		}
	}
	return false
}

// deriveTimings estimates back-to-back scene intervals from narration
// word counts when the model omitted timings.
func deriveTimings(scenes []types.Scene) {
	var elapsed float64
	for i := range scenes {
		words := len(strings.Fields(scenes[i].Narration))
		dur := math.Max(1.0, float64(words)/wordsPerMinute*60.0)
		scenes[i].StartTime = elapsed
		elapsed += dur
		scenes[i].EndTime = elapsed
	}
}

// rescale stretches the back-to-back intervals so the final scene ends
// exactly at the target duration, establishing the coverage invariant.
func rescale(scenes []types.Scene, target float64) {
	if len(scenes) == 0 || target <= 0 {
		return
	}
	// Re-anchor to back-to-back first: models occasionally leave small
	// gaps between scenes.
	var elapsed float64
	for i := range scenes {
		dur := scenes[i].EndTime - scenes[i].StartTime
		if dur <= 0 {
			dur = 1.0
		}
		scenes[i].StartTime = elapsed
		elapsed += dur
		scenes[i].EndTime = elapsed
	}
	factor := target / elapsed
	for i := range scenes {
		scenes[i].StartTime *= factor
		scenes[i].EndTime *= factor
	}
	scenes[len(scenes)-1].EndTime = target
}

// cleanJSON strips markdown fences if the model wraps the response in
// ```json ... ```
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
