package web

import (
	"database/sql"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hpungsan/gemshot/internal/config"
	"github.com/hpungsan/gemshot/internal/db"
	"github.com/hpungsan/gemshot/internal/entry"
	"github.com/hpungsan/gemshot/internal/errors"
	"github.com/hpungsan/gemshot/internal/ops"
)

// activityLimit caps the events shown on the activity page.
const activityLimit = 100

// Handlers contains HTTP route handlers for the dashboard.
type Handlers struct {
	env      ops.Env
	db       *sql.DB
	renderer *Renderer
	static   fs.FS
	logger   *log.Logger

	// opener launches a file with the desktop handler. Nil disables
	// POST /entries/{id}/open.
	opener func(path string) error
}

// HandleList handles GET /entries with optional q, category, limit, offset.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	if category == "" {
		category = ops.CategoryAll
	}

	result, err := ops.List(h.env, ops.ListInput{
		Query:    query,
		Category: category,
		Limit:    parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:   parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	data := ListPageData{
		PageData: PageData{
			Title:   "Captures",
			Version: h.renderer.version,
			Nav:     "entries",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Query:      query,
		Category:   category,
		Categories: categories(),
	}

	// If htmx targets #results, render only the results fragment
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "list", "entry-results", data)
		return
	}
	h.renderer.renderPage(w, r, "list", data)
}

// HandleDetail handles GET /entries/{id}: the entry with its note rendered.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	e, err := ops.Get(h.env, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, e)
		return
	}

	data := DetailPageData{
		PageData: PageData{
			Title:   displayTitle(e),
			Version: h.renderer.version,
			Nav:     "entries",
		},
		Entry:    e,
		HasImage: e.FilePath != "" && isRegular(e.FilePath),
	}
	if e.MDPath != "" {
		if md, err := os.ReadFile(e.MDPath); err == nil {
			data.HasNote = true
			data.RenderedHTML = renderMarkdown(noteBody(string(md)))
		} else if !os.IsNotExist(err) {
			h.logger.Warn("read note failed", "id", e.ID, "path", e.MDPath, "err", err)
		}
	}

	h.renderer.renderPage(w, r, "detail", data)
}

// HandleImage handles GET /entries/{id}/image and serves the screenshot
// from its recovered location.
func (h *Handlers) HandleImage(w http.ResponseWriter, r *http.Request) {
	e, err := ops.Get(h.env, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if e.FilePath == "" || !isRegular(e.FilePath) {
		h.renderer.renderError(w, r, errors.NewFileNotFound(e.Title))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, e.FilePath)
}

// HandleOpen handles POST /entries/{id}/open: opens the note, or the image
// when the note is gone, with the desktop handler.
func (h *Handlers) HandleOpen(w http.ResponseWriter, r *http.Request) {
	if h.opener == nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("opening files is disabled"))
		return
	}

	out, err := ops.Open(h.env, r.PathValue("id"), h.opener)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: return HTML fragment
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `<div class="open-result">Opened %s</div>`, out.Kind)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	http.Redirect(w, r, "/entries/"+r.PathValue("id"), http.StatusSeeOther)
}

// HandleActivity handles GET /activity with an optional kind filter.
func (h *Handlers) HandleActivity(w http.ResponseWriter, r *http.Request) {
	kind := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("kind")))

	events := []db.Event{}
	if h.db != nil {
		var err error
		events, err = db.ListEvents(r.Context(), h.db, kind, parseIntParam(r, "limit", activityLimit))
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"events": events})
		return
	}

	h.renderer.renderPage(w, r, "activity", ActivityPageData{
		PageData: PageData{
			Title:   "Activity",
			Version: h.renderer.version,
			Nav:     "activity",
		},
		Events: events,
		Kind:   kind,
	})
}

// HandleTheme handles GET /theme.css: CSS variables for the configured theme.
func (h *Handlers) HandleTheme(w http.ResponseWriter, r *http.Request) {
	palette := config.Themes[config.ThemeLight]
	if cfg, err := h.env.Config.Load(); err == nil {
		palette = cfg.Colors()
	} else {
		h.logger.Warn("load config for theme", "err", err)
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(themeCSS(palette)))
}

func themeCSS(p config.Palette) string {
	scheme := "light"
	if p.Dark {
		scheme = "dark"
	}
	var b strings.Builder
	b.WriteString(":root {\n")
	fmt.Fprintf(&b, "  color-scheme: %s;\n", scheme)
	for _, v := range [][2]string{
		{"bg", p.Bg}, {"panel", p.Panel}, {"text", p.Text}, {"text-dim", p.TextDim},
		{"border", p.Border}, {"primary", p.Primary}, {"success", p.Success},
		{"accent", p.Accent}, {"danger", p.Danger}, {"canvas-bg", p.CanvasBg},
	} {
		fmt.Fprintf(&b, "  --%s: %s;\n", v[0], v[1])
	}
	b.WriteString("}\n")
	return b.String()
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func categories() []string {
	out := []string{ops.CategoryAll}
	for _, t := range entry.AllTypes {
		out = append(out, string(t))
	}
	return out
}

// displayTitle returns the entry title, or a truncated ID when untitled.
func displayTitle(e *entry.Entry) string {
	if strings.TrimSpace(e.Title) != "" {
		return e.Title
	}
	if len(e.ID) > 10 {
		return e.ID[:10] + "..."
	}
	return e.ID
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
