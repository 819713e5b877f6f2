package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL(srv.Client(), srv.URL, "AIzaTestKey", "gemini-3-flash-preview")
}

func TestCreateToken_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotBody createTokenRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"name": "auth_tokens/abc123", "uses": 100})
	})

	token, err := client.CreateToken(context.Background(), 100)
	require.NoError(t, err)

	// Token issuance targets the v1alpha surface.
	assert.Equal(t, "/v1alpha/auth_tokens", gotPath)
	assert.Equal(t, "AIzaTestKey", gotKey)
	assert.Equal(t, 100, gotBody.Uses)
	assert.Equal(t, "auth_tokens/abc123", token.Name)
	assert.Equal(t, 100, token.RemainingUses)
}

func TestCreateToken_ProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusBadRequest)
	})

	_, err := client.CreateToken(context.Background(), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
	// The provider error carries its message, never our credential.
	assert.NotContains(t, err.Error(), "AIzaTestKey")
}

// A transport-level failure (dial refused, DNS, TLS) produces a *url.Error
// whose message embeds the request URL. The key must never be part of that
// URL, because these errors are surfaced verbatim in 500 bodies.
func TestTransportError_OmitsAPIKey(t *testing.T) {
	// Port 1 is never listening; Do fails before any response arrives.
	client := NewClientWithBaseURL(&http.Client{}, "http://127.0.0.1:1", "AIzaSuperSecretKey123", "gemini-3-flash-preview")

	_, err := client.CreateToken(context.Background(), 100)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "AIzaSuperSecretKey123")

	_, err = client.DescribeImage(context.Background(), "prompt", []byte{1, 2, 3}, "image/jpeg")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "AIzaSuperSecretKey123")
}

func TestCreateToken_EmptyName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	})

	_, err := client.CreateToken(context.Background(), 100)
	assert.Error(t, err)
}

func TestDescribeImage_Success(t *testing.T) {
	image := []byte{0xFF, 0xD8, 0xFF, 0xE0} // JPEG magic
	var gotPath string
	var gotBody generateContentRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "A sunny street."}},
				},
			}},
		})
	})

	text, err := client.DescribeImage(context.Background(), "Describe this scene.", image, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "A sunny street.", text)

	// Inference targets the v1beta surface with the configured model.
	assert.Equal(t, "/v1beta/models/gemini-3-flash-preview:generateContent", gotPath)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 2)
	assert.Equal(t, "Describe this scene.", gotBody.Contents[0].Parts[0].Text)
	require.NotNil(t, gotBody.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/jpeg", gotBody.Contents[0].Parts[1].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(image), gotBody.Contents[0].Parts[1].InlineData.Data)
}

func TestDescribeImage_ProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	})

	_, err := client.DescribeImage(context.Background(), "prompt", []byte{1, 2, 3}, "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestDescribeImage_EmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.DescribeImage(context.Background(), "prompt", []byte{1}, "image/jpeg")
	assert.Error(t, err)
}
