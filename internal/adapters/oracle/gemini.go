package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/example/questline/internal/ports/secondary"
	"github.com/example/questline/internal/version"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-pro"

	maxResponseBytes = 1 << 20
)

// GeminiOracle generates roadmap steps with the Gemini generateContent API.
type GeminiOracle struct {
	client    *http.Client
	baseURL   string
	model     string
	apiKey    string
	stepCount int
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

// NewGeminiOracle creates a Gemini-backed oracle.
func NewGeminiOracle(cfg Config, client *http.Client) *GeminiOracle {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiOracle{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		apiKey:    cfg.APIKey,
		stepCount: cfg.StepCount,
	}
}

// GenerateSteps asks the model for a roadmap and decodes its answer.
func (g *GeminiOracle) GenerateSteps(ctx context.Context, profile secondary.ProfileSnapshot, domain string) ([]secondary.StepDraft, error) {
	prompt, err := RenderPrompt(profile, domain, g.stepCount)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(data, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, msg)
	}

	text := gjson.GetBytes(data, "candidates.0.content.parts.0.text")
	if !text.Exists() || strings.TrimSpace(text.String()) == "" {
		reason := gjson.GetBytes(data, "promptFeedback.blockReason").String()
		if reason != "" {
			return nil, fmt.Errorf("gemini blocked the prompt: %s", reason)
		}
		return nil, fmt.Errorf("gemini response has no text")
	}

	return DecodeSteps(text.String())
}
