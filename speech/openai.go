package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"clipforge/config"
	"clipforge/provider"
	"clipforge/types"
)

const openAISpeechURL = "https://api.openai.com/v1/audio/speech"

// OpenAI synthesizes narration through the OpenAI TTS endpoint.
type OpenAI struct {
	apiKey string
	model  string
	cfg    config.SpeechConfig
	client *http.Client
	prober Prober
	log    *logrus.Entry
}

func NewOpenAI(cfg config.SpeechConfig, creds *config.Credentials, prober Prober, log *logrus.Logger) *OpenAI {
	return &OpenAI{
		apiKey: creds.OpenAIKey,
		model:  "tts-1",
		cfg:    cfg,
		client: &http.Client{Timeout: 120 * time.Second},
		prober: prober,
		log:    log.WithField("stage", "speech").WithField("provider", "openai"),
	}
}

func (o *OpenAI) Name() string     { return "openai" }
func (o *OpenAI) Configured() bool { return o.apiKey != "" }

func (o *OpenAI) SynthesizeSpeech(ctx context.Context, text, destination, voice string) (*types.GeneratedAsset, error) {
	if o.apiKey == "" {
		return nil, &provider.AuthError{Provider: o.Name(), Reason: "OPENAI_API_KEY not set"}
	}
	if voice == "" {
		voice = "onyx"
	}

	body, err := json.Marshal(map[string]any{
		"model": o.model,
		"input": text,
		"voice": voice,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAISpeechURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &provider.GenerationError{Provider: o.Name(), Reason: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &provider.AuthError{Provider: o.Name(), Reason: fmt.Sprintf("HTTP %d from speech endpoint", resp.StatusCode)}
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &provider.GenerationError{Provider: o.Name(), Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, msg)}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.GenerationError{Provider: o.Name(), Reason: fmt.Sprintf("read audio body: %v", err)}
	}
	if err := os.WriteFile(destination, audio, 0644); err != nil {
		return nil, err
	}

	dur, err := o.prober.Probe(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("probe narration: %w", err)
	}
	o.log.WithField("duration", dur).Info("narration synthesized")
	return &types.GeneratedAsset{
		Path:     destination,
		Kind:     types.AssetAudio,
		Duration: dur,
		Metadata: map[string]string{"provider": o.Name(), "model": o.model, "voice": voice},
	}, nil
}
