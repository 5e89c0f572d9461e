package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"teamsync.backend/internal/config"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("generative client not configured")

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client calls the Gemini generateContent REST endpoint.
type Client struct {
	apiKey string
	model  string
	client *resty.Client
}

func NewClient(cfg config.AIConfig) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: c,
	}
}

// Generate sends one single-turn prompt and returns the concatenated text of
// the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	var result generateResponse
	var failure apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetQueryParam("key", c.apiKey).
		SetBody(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}).
		SetResult(&result).
		SetError(&failure).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("failed to call generative API: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		msg := failure.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("generative API returned status %d: %s", resp.StatusCode(), msg)
	}

	if len(result.Candidates) == 0 {
		return "", errors.New("generative API returned no candidates")
	}

	var b strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("generative API returned empty text")
	}
	return text, nil
}
