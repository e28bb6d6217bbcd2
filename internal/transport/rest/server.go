// Package rest exposes the administrative HTTP API.
package rest

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

const readyText = "Bithook Ready"

// Config tunes the HTTP layer.
type Config struct {
	AllowOrigin string
}

// Server owns the fiber application and its routes.
type Server struct {
	app     *fiber.App
	service Service
	logger  *zap.Logger
}

// NewServer builds a Server with every route registered.
func NewServer(service Service, cfg Config, logger *zap.Logger) (*Server, error) {
	if service == nil {
		return nil, errors.New("rest service is required")
	}
	if cfg.AllowOrigin == "" {
		cfg.AllowOrigin = "*"
	}

	s := &Server{
		service: service,
		logger:  logger.Named("rest"),
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigin,
		AllowHeaders: "Origin, X-Requested-With, Content-Type, Accept",
	}))
	s.app.Use(compress.New())
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(readyText)
	})

	api := s.app.Group("/api")
	api.Get("/outputs", s.listOutputs)
	api.Post("/outputs", s.addOutputs)
	api.Delete("/outputs/:id", s.removeOutput)
	api.Get("/expired", s.listExpired)
	api.Get("/filter", s.activeFilter)
	api.Post("/callback_test", s.callbackTest)
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("api listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for active requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
