// Package httphandler is the HTTP driving adapter: the single entry point
// for the browser app. It dispatches on method and path, validates input,
// and translates adapter and store failures into HTTP status codes. Static
// assets are served from the working directory as the GET fallback.
package httphandler

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/mwhitfield/labserver/internal/domain/model"
	"github.com/mwhitfield/labserver/internal/domain/port/driven"
)

// defaultVisionPrompt is substituted when a vision request omits its prompt.
const defaultVisionPrompt = "Describe this scene."

// visionMimeType is the fixed content type forwarded with every vision call.
const visionMimeType = "image/jpeg"

// Handler serves all routes. It is stateless across requests; the only
// shared state is the injected store and upstream client, plus the token
// use budget resolved at startup.
type Handler struct {
	loginStore driven.LoginStore
	client     driven.GenAIClient // nil when no API key was resolved
	tokenUses  int
	staticDir  string
	logger     *slog.Logger
}

// NewHandler creates a Handler. client may be nil; the token and vision
// routes then answer with a configuration error while the remaining routes
// keep working.
func NewHandler(loginStore driven.LoginStore, client driven.GenAIClient, tokenUses int, staticDir string, logger *slog.Logger) *Handler {
	return &Handler{
		loginStore: loginStore,
		client:     client,
		tokenUses:  tokenUses,
		staticDir:  staticDir,
		logger:     logger,
	}
}

// NewServeMux builds the routing table and wraps it with the cross-cutting
// middleware. CORS is outermost so the allow header lands on every response,
// including static files and 404s.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /log", h.RemoteLog)
	mux.HandleFunc("POST /vision", h.Vision)
	mux.HandleFunc("POST /auth/login", h.RecordLogin)
	mux.HandleFunc("GET /token", h.IssueToken)

	// Fallbacks: GET serves the browser app from disk, any other POST is 404.
	mux.Handle("GET /", http.FileServer(http.Dir(h.staticDir)))
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = corsMiddleware(wrapped)

	return wrapped
}

// RemoteLog relays a browser console line to the operator console verbatim.
// It cannot fail short of a transport error reading the body.
func (h *Handler) RemoteLog(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	h.logger.Info("remote log", "message", string(body))
	w.WriteHeader(http.StatusOK)
}

// visionRequest is the JSON body of POST /vision. Image is standard base64.
type visionRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

// visionResponse carries the model's text output.
type visionResponse struct {
	Text string `json:"text"`
}

// Vision proxies one image-understanding call to the upstream provider.
// Neither the raw image bytes nor the credential appear in the response.
func (h *Handler) Vision(w http.ResponseWriter, r *http.Request) {
	var req visionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "missing image data")
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image is not valid base64")
		return
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = defaultVisionPrompt
	}

	if h.client == nil {
		h.logger.Error("vision request rejected", "error", driven.ErrNotConfigured)
		writeError(w, http.StatusInternalServerError, driven.ErrNotConfigured.Error())
		return
	}

	text, err := h.client.DescribeImage(r.Context(), prompt, image, visionMimeType)
	if err != nil {
		h.logger.Error("vision proxy failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("vision request processed", "prompt_len", len(prompt), "image_bytes", len(image))
	writeJSON(w, http.StatusOK, visionResponse{Text: text})
}

// loginRequest is the JSON body of POST /auth/login.
type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// loginResponse acknowledges a recorded login.
type loginResponse struct {
	Status string `json:"status"`
}

// RecordLogin appends one event to the login history. The user credential
// table is deliberately not consulted here; password enforcement is not
// wired in this version.
func (h *Handler) RecordLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing email")
		return
	}

	event := model.LoginEvent{Email: req.Email, Name: req.Name}
	if err := h.loginStore.Append(r.Context(), event); err != nil {
		h.logger.Error("login recording failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("login recorded", "email", req.Email)
	writeJSON(w, http.StatusOK, loginResponse{Status: "logged"})
}

// tokenResponse carries the opaque ephemeral token name.
type tokenResponse struct {
	Token string `json:"token"`
}

// IssueToken mints an ephemeral token so the browser never holds the
// long-lived API key. The use budget is sized to cover auxiliary calls
// chained behind the token, such as a follow-up vision request.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		h.logger.Error("token request rejected", "error", driven.ErrNotConfigured)
		writeError(w, http.StatusInternalServerError, driven.ErrNotConfigured.Error())
		return
	}

	token, err := h.client.CreateToken(r.Context(), h.tokenUses)
	if err != nil {
		h.logger.Error("token generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("ephemeral token generated", "token", token.Name, "uses", token.RemainingUses)
	writeJSON(w, http.StatusOK, tokenResponse{Token: token.Name})
}
