// Package api implements the REST API for scanning, parsing and storing Lox
// scripts.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/lemonberrylabs/loxparse/pkg/analyzer"
	"github.com/lemonberrylabs/loxparse/pkg/store"
)

// Server is the HTTP API server.
type Server struct {
	app      *fiber.App
	store    *store.Store
	analyzer *analyzer.Analyzer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and load logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a new API server.
func New(s *store.Store, a *analyzer.Analyzer, opts ...Option) *Server {
	srv := &Server{
		store:    s,
		analyzer: a,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             4 * 1024 * 1024,
	})
	app.Use(srv.requestLogger)

	app.Get("/healthz", srv.healthz)

	app.Post("/v1/scan", srv.scan)
	app.Post("/v1/parse", srv.parse)

	app.Post("/v1/scripts", srv.createScript)
	app.Get("/v1/scripts", srv.listScripts)
	app.Get("/v1/scripts/:script", srv.getScript)
	app.Patch("/v1/scripts/:script", srv.updateScript)
	app.Delete("/v1/scripts/:script", srv.deleteScript)
	app.Get("/v1/scripts/:script/ast", srv.scriptAST)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app, used to mount the web UI and in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelError, "REQUEST_ERROR",
			slog.String("method", c.Method()),
			slog.String("uri", c.OriginalURL()),
			slog.Int("status", c.Response().StatusCode()),
			slog.String("err", err.Error()),
		)
		return err
	}
	s.logger.LogAttrs(context.Background(), slog.LevelInfo, "REQUEST",
		slog.String("method", c.Method()),
		slog.String("uri", c.OriginalURL()),
		slog.Int("status", c.Response().StatusCode()),
		slog.Duration("latency", time.Since(start)),
	)
	return nil
}

func (s *Server) healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"scripts": s.store.Len(),
		"cached":  s.analyzer.CacheLen(),
	})
}

// --- Analysis Handlers ---

type sourceRequest struct {
	Source      string `json:"source"`
	Description string `json:"description"`
}

func (s *Server) scan(c *fiber.Ctx) error {
	var req sourceRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err), nil)
	}

	res := s.analyzer.Analyze(req.Source)
	if res.Error != nil && res.Error.Phase != analyzer.PhaseParse {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", res.Error.Error(), res.Error)
	}
	return c.JSON(fiber.Map{"tokens": res.Tokens})
}

func (s *Server) parse(c *fiber.Ctx) error {
	var req sourceRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err), nil)
	}

	res := s.analyzer.Analyze(req.Source)
	if res.Error != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", res.Error.Error(), res.Error)
	}
	return c.JSON(analysisJSON(res))
}

// --- Script Handlers ---

var validScriptID = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

func (s *Server) createScript(c *fiber.Ctx) error {
	id := c.Query("scriptId")
	if id == "" {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "scriptId query parameter is required", nil)
	}
	if !validScriptID.MatchString(id) || len(id) > 128 {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("invalid scriptId %q", id), nil)
	}

	var req sourceRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err), nil)
	}
	if req.Source == "" {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "source is required", nil)
	}
	if res := s.analyzer.Analyze(req.Source); res.Error != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("invalid script: %v", res.Error), res.Error)
	}

	sc, err := s.store.CreateScript(id, req.Source, req.Description)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(scriptJSON(sc))
}

func (s *Server) listScripts(c *fiber.Ctx) error {
	scripts := s.store.ListScripts()
	items := make([]fiber.Map, len(scripts))
	for i, sc := range scripts {
		items[i] = scriptJSON(sc)
	}
	return c.JSON(fiber.Map{"scripts": items})
}

func (s *Server) getScript(c *fiber.Ctx) error {
	sc, err := s.store.GetScript(c.Params("script"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(scriptJSON(sc))
}

func (s *Server) updateScript(c *fiber.Ctx) error {
	var req sourceRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err), nil)
	}
	if req.Source == "" {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", "source is required", nil)
	}
	if res := s.analyzer.Analyze(req.Source); res.Error != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("invalid script: %v", res.Error), res.Error)
	}

	sc, err := s.store.UpdateScript(c.Params("script"), req.Source, req.Description)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(scriptJSON(sc))
}

func (s *Server) deleteScript(c *fiber.Ctx) error {
	if err := s.store.DeleteScript(c.Params("script")); err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{})
}

func (s *Server) scriptAST(c *fiber.Ctx) error {
	sc, err := s.store.GetScript(c.Params("script"))
	if err != nil {
		return storeError(c, err)
	}

	res := s.analyzer.Analyze(sc.Source)
	if res.Error != nil {
		// Stored scripts were valid when written; strictness may differ on reload.
		return errorJSON(c, fiber.StatusUnprocessableEntity, "FAILED_PRECONDITION", res.Error.Error(), res.Error)
	}
	body := analysisJSON(res)
	body["name"] = sc.Name
	body["revisionId"] = sc.RevisionID
	return c.JSON(body)
}

// --- Directory Loading ---

// LoadDir loads every *.lox file in dir as a script. The file name without
// extension becomes the script ID. Files that cannot be loaded are skipped and
// reported together in the returned error.
func (s *Server) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading scripts directory: %w", err)
	}

	var (
		result *multierror.Error
		loaded int
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".lox" {
			continue
		}

		base := strings.TrimSuffix(name, ".lox")
		id := strings.ToLower(base)
		if id != base {
			s.logger.Warn("lowercased script ID", "id", id, "file", name)
		}
		if !validScriptID.MatchString(id) || len(id) > 128 {
			result = multierror.Append(result, fmt.Errorf("%s: invalid script ID %q", name, id))
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("reading %s: %w", name, err))
			continue
		}

		source := string(data)
		if res := s.analyzer.Analyze(source); res.Error != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, res.Error))
			continue
		}

		if _, err := s.store.CreateScript(id, source, ""); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
			continue
		}
		loaded++
		s.logger.Info("loaded script", "id", id, "file", name)
	}

	s.logger.Info("loaded scripts", "count", loaded, "dir", dir)
	return loaded, result.ErrorOrNil()
}

// --- Helpers ---

func errorJSON(c *fiber.Ctx, code int, status, message string, details *analyzer.ErrorView) error {
	body := fiber.Map{
		"code":    code,
		"message": message,
		"status":  status,
	}
	if details != nil {
		body["details"] = details
	}
	return c.Status(code).JSON(fiber.Map{"error": body})
}

func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, store.ErrAlreadyExists):
		return errorJSON(c, fiber.StatusConflict, "ALREADY_EXISTS", err.Error(), nil)
	default:
		return errorJSON(c, fiber.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}

func analysisJSON(res *analyzer.Result) fiber.Map {
	return fiber.Map{
		"printed": res.Printed,
		"ast":     res.AST,
		"tokens":  res.Tokens,
	}
}

func scriptJSON(sc *store.Script) fiber.Map {
	return fiber.Map{
		"name":        sc.Name,
		"uid":         sc.UID,
		"description": sc.Description,
		"revisionId":  sc.RevisionID,
		"createTime":  sc.CreateTime.Format(time.RFC3339),
		"updateTime":  sc.UpdateTime.Format(time.RFC3339),
		"source":      sc.Source,
	}
}

