// Package server exposes the resolver and the ledger over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/ledger"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/parser"
	"github.com/766jbcodes/reddit-bot-aufintools-debt-recycler/internal/scanrunner"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
)

const defaultRecentLimit = 20

type LedgerReader interface {
	Stats(ctx context.Context) (ledger.Stats, error)
	Recent(ctx context.Context, limit int) ([]ledger.Entry, error)
}

// ScanFunc runs a single mailbox scan.
type ScanFunc func(ctx context.Context) (scanrunner.Summary, error)

type Option func(*Server)

func WithParser(p *parser.Parser) Option {
	return func(s *Server) {
		if p != nil {
			s.parser = p
		}
	}
}

func WithLedger(l LedgerReader) Option {
	return func(s *Server) {
		s.ledger = l
	}
}

func WithScan(fn ScanFunc) Option {
	return func(s *Server) {
		s.scan = fn
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

type Server struct {
	app    *fiber.App
	parser *parser.Parser
	ledger LedgerReader
	scan   ScanFunc
	log    *slog.Logger

	scanMu sync.Mutex
}

type resolveRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type statsResponse struct {
	Stats  ledger.Stats   `json:"stats"`
	Recent []ledger.Entry `json:"recent"`
}

func New(opts ...Option) *Server {
	s := &Server{
		parser: parser.New(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(otelfiber.Middleware())

	s.app.Get("/healthz", s.health)
	api := s.app.Group("/api")
	api.Post("/resolve", s.resolve)
	api.Get("/stats", s.stats)
	api.Post("/scan", s.runScan)

	return s
}

// App exposes the underlying fiber app, mostly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.log.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) resolve(c *fiber.Ctx) error {
	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Body) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "body is required")
	}

	result, ok := s.parser.Resolve(req.Subject, req.Body)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no reference found")
	}
	return c.JSON(result)
}

func (s *Server) stats(c *fiber.Ctx) error {
	if s.ledger == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger not configured")
	}
	limit := c.QueryInt("limit", defaultRecentLimit)

	stats, err := s.ledger.Stats(c.UserContext())
	if err != nil {
		return err
	}
	recent, err := s.ledger.Recent(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(statsResponse{Stats: stats, Recent: recent})
}

func (s *Server) runScan(c *fiber.Ctx) error {
	if s.scan == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "scan not configured")
	}
	if !s.scanMu.TryLock() {
		return fiber.NewError(fiber.StatusConflict, "scan already running")
	}
	defer s.scanMu.Unlock()

	summary, err := s.scan(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		s.log.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}
