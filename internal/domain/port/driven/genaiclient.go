package driven

import (
	"context"
	"errors"

	"github.com/mwhitfield/labserver/internal/domain/model"
)

// ErrNotConfigured is the answer on any route that needs the upstream
// client when no API key could be resolved at startup.
var ErrNotConfigured = errors.New("upstream AI client not configured: set GEMINI_API_KEY")

// GenAIClient defines the driven port for the upstream generative-AI
// provider. Both operations authenticate with the long-lived API key; the
// key never leaves the server. Failures are reported immediately with the
// provider's message, no local retry.
type GenAIClient interface {
	// CreateToken mints an ephemeral token with a bounded use count.
	CreateToken(ctx context.Context, uses int) (model.EphemeralToken, error)

	// DescribeImage runs multimodal inference over one image and a text
	// prompt, returning the model's text output.
	DescribeImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
