package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/adilmn/social-support-ai/internal/core/domain"
	"github.com/adilmn/social-support-ai/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// Extractor runs the schema-constrained evidence extraction call.
type Extractor struct {
	client *Client
}

func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

// ExtractEvidence prompts the model with all three document texts and parses
// the JSON-constrained reply. A reply that violates the schema normalizes to
// evidence with absent fields: extraction degrades per-field, it does not
// abort the pipeline. Only a transport failure is returned as an error.
func (e *Extractor) ExtractEvidence(ctx context.Context, idText, bankText, resumeText string) (domain.ExtractedEvidence, error) {
	respText, err := e.client.generateJSON(ctx, buildExtractionPrompt(idText, bankText, resumeText))
	if err != nil {
		return domain.ExtractedEvidence{}, err
	}

	var evidence domain.ExtractedEvidence
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &evidence); err != nil {
		return domain.ExtractedEvidence{}, nil
	}
	return evidence, nil
}

// Reasoner runs the free-text decision generation call. The reply is parsed
// by the synthesis stage, not here.
type Reasoner struct {
	client *Client
}

func NewReasoner(client *Client) *Reasoner {
	return &Reasoner{client: client}
}

func (g *Reasoner) GenerateDecision(ctx context.Context, prompt string) (string, error) {
	return g.client.generateText(ctx, prompt)
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	})
}

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	})
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.generate", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
