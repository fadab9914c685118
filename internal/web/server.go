package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hpungsan/gemshot/internal/activity"
	"github.com/hpungsan/gemshot/internal/ops"
	"github.com/hpungsan/gemshot/internal/platform"
)

// DefaultPort is used when dashboard_port is unset.
const DefaultPort = 8765

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates and configures the HTTP server for the GemShot dashboard.
// database may be nil, in which case the activity page is empty.
func NewServer(env ops.Env, database *sql.DB, version, bind string, port int) (*http.Server, error) {
	h, err := newHandlers(env, database, version)
	if err != nil {
		return nil, err
	}
	h.opener = platform.OpenPath

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           securityHeaders(h.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func newHandlers(env ops.Env, database *sql.DB, version string) (*Handlers, error) {
	// Strip the "templates/" and "static/" prefixes.
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	rec := env.Activity
	if rec == nil {
		rec = activity.Discard()
	}
	logger := rec.Logger()

	return &Handlers{
		env:      env,
		db:       database,
		renderer: NewRenderer(templateSub, version, logger),
		static:   staticSub,
		logger:   logger,
	}, nil
}

func (h *Handlers) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/entries", http.StatusFound)
	})
	mux.HandleFunc("GET /entries", h.HandleList)
	mux.HandleFunc("GET /entries/{id}", h.HandleDetail)
	mux.HandleFunc("GET /entries/{id}/image", h.HandleImage)
	mux.HandleFunc("POST /entries/{id}/open", h.HandleOpen)
	mux.HandleFunc("GET /activity", h.HandleActivity)
	mux.HandleFunc("GET /theme.css", h.HandleTheme)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(h.static)))
	return mux
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts srv and shuts it down on SIGINT/SIGTERM or when ctx is
// cancelled. The AI proxy is served the same way.
func Run(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("listening", "url", "http://"+srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("binding to all interfaces; the server may be reachable from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	case <-ctx.Done():
	}

	logger.Info("shutting down", "addr", srv.Addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
