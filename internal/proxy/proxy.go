// Package proxy serves the local AI proxy: it accepts base64 screenshots
// from GemShot clients and forwards them to Gemini with the key it holds.
package proxy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hpungsan/gemshot/internal/ai"
	"github.com/hpungsan/gemshot/internal/errors"
)

// DefaultPort is where clients expect the proxy (http://127.0.0.1:8000).
const DefaultPort = 8000

// maxBodyBytes bounds a request body; screenshots are a few MB at most.
const maxBodyBytes = 32 << 20

// Handler wires the proxy endpoints to an AI backend.
type Handler struct {
	backend ai.Backend
	logger  *log.Logger
}

// New constructs a proxy handler.
func New(backend ai.Backend, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{backend: backend, logger: logger}
}

// Register mounts the proxy endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/analyze", h.HandleAnalyze)
	r.Post("/smart_fill", h.HandleSmartFill)
}

// Router returns a chi router with the proxy endpoints and the standard
// middleware stack.
func Router(backend ai.Backend, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	New(backend, logger).Register(r)
	return r
}

// NewServer creates the proxy HTTP server bound to bind:port.
func NewServer(backend ai.Backend, logger *log.Logger, bind string, port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           Router(backend, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// HandleAnalyze handles POST /analyze requests.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "analyze", h.backend.Analyze)
}

// HandleSmartFill handles POST /smart_fill requests.
func (h *Handler) HandleSmartFill(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "smart_fill", h.backend.SmartFill)
}

type backendCall func(ctx context.Context, png []byte, instructions string) (string, error)

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, op string, call backendCall) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	var req ai.ProxyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	png, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil || len(png) == 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid base64 image")
		return
	}

	start := time.Now()
	text, err := call(ctx, png, req.Instructions)
	if err != nil {
		h.logger.Error(op+" error", "request_id", requestID, "err", err)
		status := http.StatusInternalServerError
		if errors.Is(err, errors.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		writeDetail(w, status, detail(err))
		return
	}

	h.logger.Info(op+" complete",
		"request_id", requestID,
		"custom", req.Instructions != "",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, ai.ProxyResponse{Result: text})
}

// detail returns the human-readable part of err.
func detail(err error) string {
	if gErr, ok := err.(*errors.GemError); ok {
		return gErr.Message
	}
	return err.Error()
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ai.ProxyError{Detail: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
