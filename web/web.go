// Package web provides the embedded web UI for browsing scripts and trying
// out the parser.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/loxparse/pkg/analyzer"
	"github.com/lemonberrylabs/loxparse/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the web UI pages.
type Handler struct {
	store    *store.Store
	analyzer *analyzer.Analyzer
	funcMap  template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	NavActive string
	Strict    bool
	Data      interface{}
}

// New creates a new web UI handler.
func New(s *store.Store, a *analyzer.Analyzer) *Handler {
	return &Handler{
		store:    s,
		analyzer: a,
		funcMap: template.FuncMap{
			"timeAgo":    timeAgo,
			"formatTime": formatTime,
			"bytes":      sourceSize,
			"truncate":   truncate,
			"countLines": countLines,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page string, navActive string, data interface{}) error {
	// Each page is parsed together with the layout so their define blocks
	// do not collide.
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/analysis.html", "templates/"+page),
	)

	pd := pageData{
		NavActive: navActive,
		Strict:    h.analyzer.Strict(),
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pd); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.dashboard)
	app.Get("/ui/scripts/:id", h.scriptDetail)
	app.Get("/ui/playground", h.playground)
	app.Post("/ui/playground", h.playground)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type dashboardContent struct {
	Scripts    []*store.Script
	TotalBytes int
	CacheLen   int
}

type analysisContent struct {
	Script *store.Script
	Source string
	Result *analyzer.Result
}

// --- Page Handlers ---

func (h *Handler) dashboard(c *fiber.Ctx) error {
	scripts := h.store.ListScripts()
	total := 0
	for _, sc := range scripts {
		total += len(sc.Source)
	}
	return h.render(c, "dashboard.html", "dashboard", dashboardContent{
		Scripts:    scripts,
		TotalBytes: total,
		CacheLen:   h.analyzer.CacheLen(),
	})
}

func (h *Handler) scriptDetail(c *fiber.Ctx) error {
	sc, err := h.store.GetScript(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Script not found")
	}
	return h.render(c, "script.html", "dashboard", analysisContent{
		Script: sc,
		Source: sc.Source,
		Result: h.analyzer.Analyze(sc.Source),
	})
}

func (h *Handler) playground(c *fiber.Ctx) error {
	content := analysisContent{}
	if c.Method() == fiber.MethodPost {
		content.Source = c.FormValue("source")
		content.Result = h.analyzer.Analyze(content.Source)
	}
	return h.render(c, "playground.html", "playground", content)
}

// --- Template Helpers ---

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func sourceSize(n int) string {
	return humanize.Bytes(uint64(n))
}

// truncate shortens s to at most maxLen runes.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
