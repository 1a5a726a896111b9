package visual

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
	"clipforge/remote"
	"clipforge/types"
)

const replicateBaseURL = "https://api.replicate.com/v1/predictions"

// videoModelFPS is what the remote model renders at; duration requests
// are translated into frame counts.
const videoModelFPS = 24

// Replicate generates video clips through Replicate's asynchronous
// prediction API: submit, poll until terminal, fetch the output.
type Replicate struct {
	token  string
	model  string
	cfg    config.VisualConfig
	client *http.Client
	prober Prober
	log    *logrus.Logger
}

func NewReplicate(cfg config.VisualConfig, creds *config.Credentials, prober Prober, log *logrus.Logger) *Replicate {
	return &Replicate{
		token:  creds.ReplicateToken,
		model:  "stability-ai/stable-video-diffusion",
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		prober: prober,
		log:    log,
	}
}

func (r *Replicate) Name() string     { return "replicate" }
func (r *Replicate) Configured() bool { return r.token != "" }

// GenerateVisual submits a prediction and drives it through the job
// poller. The asset's duration is probed from the stored file, not
// assumed from the request: some models emit fixed-length clips.
func (r *Replicate) GenerateVisual(ctx context.Context, prompt string, targetDuration float64, destination string) (*types.GeneratedAsset, error) {
	if r.token == "" {
		return nil, &provider.AuthError{Provider: r.Name(), Reason: "REPLICATE_API_TOKEN not set"}
	}

	backend := &predictionBackend{
		parent: r,
		prompt: prompt,
		frames: int(targetDuration * videoModelFPS),
	}
	poller := remote.New(r.Name(),
		time.Duration(r.cfg.PollIntervalSec*float64(time.Second)),
		time.Duration(r.cfg.PollBudgetSec*float64(time.Second)),
		r.log,
	)
	if err := poller.Run(ctx, backend, destination); err != nil {
		return nil, err
	}

	dur, err := r.prober.Probe(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("probe generated clip: %w", err)
	}
	return &types.GeneratedAsset{
		Path:     destination,
		Kind:     types.AssetVideo,
		Duration: dur,
		Metadata: map[string]string{"provider": r.Name(), "model": r.model, "prompt": prompt},
	}, nil
}

// predictionBackend adapts one Replicate prediction to the poller's
// Backend contract.
type predictionBackend struct {
	parent *Replicate
	prompt string
	frames int
	getURL string
}

type predictionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output any    `json:"output"`
	Error  string `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func (b *predictionBackend) Submit(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]any{
		"version": b.parent.model,
		"input": map[string]any{
			"prompt":     b.prompt,
			"num_frames": b.frames,
		},
	})
	if err != nil {
		return "", err
	}
	pred, err := b.parent.do(ctx, http.MethodPost, replicateBaseURL, body)
	if err != nil {
		return "", err
	}
	b.getURL = pred.URLs.Get
	return pred.ID, nil
}

func (b *predictionBackend) Poll(ctx context.Context, id string) (remote.Status, error) {
	url := b.getURL
	if url == "" {
		url = fmt.Sprintf("%s/%s", replicateBaseURL, id)
	}
	pred, err := b.parent.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return remote.Status{}, err
	}
	switch pred.Status {
	case "succeeded":
		return remote.Status{State: remote.StateSucceeded, Result: outputURL(pred.Output)}, nil
	case "failed", "canceled":
		return remote.Status{State: remote.StateFailed, Reason: pred.Error}, nil
	case "starting":
		return remote.Status{State: remote.StateSubmitted}, nil
	default:
		return remote.Status{State: remote.StateRunning}, nil
	}
}

func (b *predictionBackend) Fetch(ctx context.Context, result, destination string) error {
	if result == "" {
		return &provider.GenerationError{Provider: b.parent.Name(), Reason: "prediction succeeded with no output"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, result, nil)
	if err != nil {
		return err
	}
	resp, err := b.parent.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download output: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(destination, data, 0644)
}

func (r *Replicate) do(ctx context.Context, method, url string, body []byte) (*predictionResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &provider.AuthError{Provider: r.Name(), Reason: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return nil, &provider.GenerationError{Provider: r.Name(), Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(respBytes), 200))}
	}

	var pred predictionResponse
	if err := json.Unmarshal(respBytes, &pred); err != nil {
		return nil, &provider.GenerationError{Provider: r.Name(), Reason: fmt.Sprintf("parse prediction: %v", err)}
	}
	return &pred, nil
}

// outputURL extracts the content location from a prediction output,
// which is either a bare URL string or a list of them.
func outputURL(output any) string {
	switch v := output.(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
