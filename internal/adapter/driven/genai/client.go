// Package genai implements the GenAIClient port against the Gemini REST API.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mwhitfield/labserver/internal/domain/model"
	"github.com/mwhitfield/labserver/internal/domain/port/driven"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Compile-time interface satisfaction check.
var _ driven.GenAIClient = (*Client)(nil)

// Client talks to the Gemini API with the long-lived server credential.
// Token issuance goes through the v1alpha surface and inference through
// v1beta; that split is how the provider exposes the two features, not a
// versioning mistake on our side. The key travels in the x-goog-api-key
// header, never the URL: transport errors embed the request URL in their
// message, and those messages are surfaced to clients as 500 bodies.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewClient creates a Client authenticated with apiKey, targeting model for
// inference calls.
func NewClient(apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL creates a Client targeting a custom base URL.
// This constructor is intended for testing against an httptest server.
func NewClientWithBaseURL(httpClient *http.Client, baseURL, apiKey, model string) *Client {
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
	}
}

// createTokenRequest is the v1alpha auth token mint request body.
type createTokenRequest struct {
	Uses int `json:"uses"`
}

// createTokenResponse carries the opaque token name handed back to the browser.
type createTokenResponse struct {
	Name string `json:"name"`
	Uses int    `json:"uses,omitempty"`
}

// generateContentRequest and friends are the minimal v1beta shapes we need.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// CreateToken mints an ephemeral token bounded to the given use count. The
// budget is sized by the caller so chained calls (a live session that also
// triggers a vision request) can share one token.
func (c *Client) CreateToken(ctx context.Context, uses int) (model.EphemeralToken, error) {
	var zero model.EphemeralToken

	url := fmt.Sprintf("%s/v1alpha/auth_tokens", c.baseURL)
	body, err := json.Marshal(createTokenRequest{Uses: uses})
	if err != nil {
		return zero, fmt.Errorf("marshal token request: %w", err)
	}

	var resp createTokenResponse
	if err := c.post(ctx, url, body, &resp); err != nil {
		return zero, err
	}
	if resp.Name == "" {
		return zero, errors.New("provider returned an empty token name")
	}

	remaining := resp.Uses
	if remaining == 0 {
		remaining = uses
	}
	return model.EphemeralToken{Name: resp.Name, RemainingUses: remaining}, nil
}

// DescribeImage runs one inference call with a text prompt and an inline
// image part. The image bytes are re-encoded to base64 for transport and
// never appear in any response we produce.
func (c *Client) DescribeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)

	reqBody := generateContentRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal vision request: %w", err)
	}

	var resp generateContentResponse
	if err := c.post(ctx, url, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response from model")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// post sends one JSON request and decodes the JSON response into out.
// Non-2xx responses are returned as errors carrying the provider's message.
func (c *Client) post(ctx context.Context, url string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gemini http %d: %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
