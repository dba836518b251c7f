package mlmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adilmn/social-support-ai/internal/core/domain"
	"github.com/adilmn/social-support-ai/internal/infrastructure/resilience"
)

type Classifier struct {
	baseURL    string
	manifest   Manifest
	httpClient *http.Client
	executor   *resilience.Executor
}

func NewClassifier(baseURL string, manifest Manifest, executor *resilience.Executor) *Classifier {
	return &Classifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		manifest:   manifest,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		executor:   executor,
	}
}

// Predict sends the engineered feature vector to the scoring service and
// returns the predicted class index. The vector must match the manifest's
// feature schema exactly; a mismatch is a hard failure of this call only.
func (c *Classifier) Predict(ctx context.Context, features []float64) (int, error) {
	if len(features) != len(c.manifest.Features) {
		return 0, domain.WrapError(domain.ErrInvalidInput, "predict eligibility",
			fmt.Errorf("feature vector length %d does not match trained schema %d", len(features), len(c.manifest.Features)))
	}

	request := map[string]any{
		"model":    c.manifest.Model,
		"version":  c.manifest.Version,
		"features": features,
	}
	var response struct {
		ClassIndex int `json:"class_index"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/predict", request, &response)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "scorer.predict", call, classifyScorerError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("predict eligibility: %w", err)
	}
	return response.ClassIndex, nil
}

// Decode maps a class index back to its human-readable label through the
// manifest's label encoding.
func (c *Classifier) Decode(classIndex int) (string, error) {
	if classIndex < 0 || classIndex >= len(c.manifest.Labels) {
		return "", fmt.Errorf("decode class index %d: outside label encoding of size %d", classIndex, len(c.manifest.Labels))
	}
	return c.manifest.Labels[classIndex], nil
}

// Ready checks the scoring service at startup and cross-checks its served
// model against the manifest. A feature-order drift between the artifact and
// this process fails readiness instead of corrupting predictions later.
func (c *Classifier) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/model", nil)
	if err != nil {
		return fmt.Errorf("create model info request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrUnavailable, "scorer readiness", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.WrapError(domain.ErrUnavailable, "scorer readiness",
			fmt.Errorf("model info status: %s", resp.Status))
	}

	var served struct {
		Model    string   `json:"model"`
		Version  string   `json:"version"`
		Features []string `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&served); err != nil {
		return fmt.Errorf("decode model info: %w", err)
	}

	if served.Model != c.manifest.Model {
		return fmt.Errorf("scorer serves model %q, manifest expects %q", served.Model, c.manifest.Model)
	}
	if len(served.Features) != len(c.manifest.Features) {
		return fmt.Errorf("scorer feature schema size %d, manifest expects %d", len(served.Features), len(c.manifest.Features))
	}
	for i, name := range c.manifest.Features {
		if served.Features[i] != name {
			return fmt.Errorf("scorer feature %d is %q, manifest expects %q", i, served.Features[i], name)
		}
	}
	return nil
}

func (c *Classifier) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("scorer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			return fmt.Errorf("scorer status: %s", resp.Status)
		}
		return fmt.Errorf("scorer status: %s: %s", resp.Status, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode predict response: %w", err)
	}
	return nil
}

func classifyScorerError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if domain.IsKind(err, domain.ErrInvalidInput) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}
