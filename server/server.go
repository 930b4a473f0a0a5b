// Package server is the HTTP transport in front of the aggregation engine:
// body decoding, size enforcement and routing. Lint failures are reported in
// the response body, not via HTTP status, so clients only branch on the
// "success" flag.
package server

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Endogen/xian-linter/catalog"
	"github.com/Endogen/xian-linter/config"
	"github.com/Endogen/xian-linter/engine"
	"github.com/Endogen/xian-linter/lint"
)

// sourceFilename is the virtual filename attached to submitted code.
const sourceFilename = "<string>"

type Server struct {
	cfg    config.Config
	engine *engine.Engine
	rules  []catalog.Rule
	base   engine.Patterns
	log    *slog.Logger
}

// New builds the server. The rule catalog is loaded eagerly so a broken
// catalog fails startup instead of the first /rules request.
func New(cfg config.Config, log *slog.Logger) (*Server, error) {
	rules, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load rule catalog: %w", err)
	}

	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	eng := engine.New()
	eng.Log = log

	return &Server{
		cfg:    cfg,
		engine: eng,
		rules:  rules,
		base:   engine.DefaultPatterns().Union(engine.Patterns(cfg.Whitelist)),
		log:    log,
	}, nil
}

// Router wires the routes. Exposed separately from Run for tests.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.POST("/lint_base64", s.lintBase64)
	r.POST("/lint_gzip", s.lintGzip)
	r.GET("/rules", s.ruleCatalog)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	s.log.Info("listening", "addr", s.cfg.Addr)
	return s.Router().Run(s.cfg.Addr)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// lintBase64 expects the raw request body to be base64-encoded contract code.
func (s *Server) lintBase64(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(body)))
	if err != nil {
		s.decodeFailure(c, fmt.Sprintf("unable to decode base64: %v", err))
		return
	}
	if int64(len(raw)) > s.cfg.MaxSourceBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "source too large"})
		return
	}

	s.lint(c, raw)
}

// lintGzip expects the raw request body to be gzip-compressed contract code.
func (s *Server) lintGzip(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		s.decodeFailure(c, fmt.Sprintf("unable to decompress gzip: %v", err))
		return
	}
	raw, err := io.ReadAll(io.LimitReader(zr, s.cfg.MaxSourceBytes+1))
	if err != nil {
		s.decodeFailure(c, fmt.Sprintf("unable to decompress gzip: %v", err))
		return
	}
	if int64(len(raw)) > s.cfg.MaxSourceBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "source too large"})
		return
	}

	s.lint(c, raw)
}

func (s *Server) lint(c *gin.Context, raw []byte) {
	// the engine is defined over valid text only; repair stray bytes here
	code := strings.ToValidUTF8(string(raw), "�")

	patterns := s.base.Union(engine.ParsePatterns(c.Query("whitelist")))
	src := lint.SourceText{Content: code, Filename: sourceFilename}

	c.JSON(http.StatusOK, s.engine.Lint(c.Request.Context(), src, patterns))
}

// readBody reads the raw body under the configured size cap. A too-large
// payload answers 413 before any decoding work; other read failures are the
// client's problem and answer 400.
func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	reader := http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxSourceBytes*2)
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unable to read request body: %v", err)})
		}
		return nil, false
	}
	return body, true
}

// decodeFailure reports a transport-stage failure in the lint response shape
// the original clients expect: HTTP 200 with success false.
func (s *Server) decodeFailure(c *gin.Context, message string) {
	c.JSON(http.StatusOK, lint.Result{
		Success: false,
		Errors: []lint.Diagnostic{
			{Message: message, Severity: lint.SeverityError},
		},
	})
}

func (s *Server) ruleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": s.rules})
}
