package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insightdelivered/statement-parser/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// Options configures the fiber app.
type Options struct {
	BodyLimitMB int
	// Gatherer backs /metrics; the route is omitted when nil.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewApp wires middleware and routes around h.
func NewApp(h *Handler, opts Options) *fiber.App {
	cfg := fiber.Config{
		AppName:               "statement-parser",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	}
	if opts.BodyLimitMB > 0 {
		cfg.BodyLimit = opts.BodyLimitMB << 20
	}
	app := fiber.New(cfg)

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(requestLogger(opts.Logger))

	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)
	api.Get("/supported-issuers", h.HandleIssuers)
	api.Post("/parse", h.HandleParse)

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	return app
}

// requestLogger tags each request with an ID and stores a logger carrying
// it in the request context.
func requestLogger(base *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDHeader, id)
		c.Set(requestIDHeader, id)

		l := base
		if l == nil {
			l = slog.Default()
		}
		l = l.With("request_id", id)
		c.SetUserContext(logger.NewContext(c.UserContext(), l))

		err := c.Next()
		l.Debug("request handled", "method", c.Method(), "path", c.Path(), "status", c.Response().StatusCode())
		return err
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDHeader).(string)
	return id
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(ParseResponse{RequestID: requestID(c), Error: err.Error()})
}
