// Package server assembles the Fiber application: error mapping, middleware
// and the route table.
package server

import (
	"errors"

	"zinc-warehouse/internal/auth"
	"zinc-warehouse/internal/config"
	"zinc-warehouse/internal/inventory"
	"zinc-warehouse/internal/lock"
	"zinc-warehouse/internal/logging"
	"zinc-warehouse/internal/metrics"
	"zinc-warehouse/internal/stock"
	"zinc-warehouse/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Log    *logrus.Logger
	Locker lock.Locker
}

func New(d Deps) *fiber.App {
	if d.Locker == nil {
		d.Locker = lock.Noop()
	}
	cfg := d.Config

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(d.Log),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(logging.Middleware(d.Log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	if cfg.MetricsEnabled {
		app.Get("/metrics", metrics.Handler())
	}

	// Public auth
	api := app.Group("/api")
	api.Post("/register", auth.RegisterHandler(d.DB))
	api.Post("/login", auth.LoginHandler(d.DB, cfg.JWTSecret))
	api.Post("/reset-password", auth.ResetPasswordHandler(d.DB))

	var guard []fiber.Handler
	if cfg.AuthRequired {
		guard = append(guard, auth.JWTMiddleware(cfg.JWTSecret))
	}

	// Export routes go before /:id so "export" is not parsed as an id.
	inbound := api.Group("/gi-inbound", guard...)
	inbound.Get("/", inventory.ListInboundHandler(d.DB))
	inbound.Get("/export", inventory.ExportInboundHandler(d.DB))
	inbound.Get("/:id", inventory.GetInboundHandler(d.DB))
	inbound.Post("/", inventory.CreateInboundHandler(d.DB))
	inbound.Post("/batch-delete", inventory.BatchDeleteInboundHandler(d.DB))
	inbound.Put("/:id", inventory.UpdateInboundHandler(d.DB))
	inbound.Delete("/:id", inventory.DeleteInboundHandler(d.DB))

	outbound := api.Group("/gi-outbound", guard...)
	outbound.Get("/", inventory.ListOutboundHandler(d.DB))
	outbound.Get("/export", inventory.ExportOutboundHandler(d.DB))
	outbound.Get("/:id", inventory.GetOutboundHandler(d.DB))
	outbound.Post("/", inventory.CreateOutboundHandler(d.DB, d.Locker))
	outbound.Post("/batch-delete", inventory.BatchDeleteOutboundHandler(d.DB))
	outbound.Put("/:id", inventory.UpdateOutboundHandler(d.DB, d.Locker))
	outbound.Delete("/:id", inventory.DeleteOutboundHandler(d.DB))

	aluminum := api.Group("/aluminum", guard...)
	aluminum.Get("/", inventory.ListAluminumHandler(d.DB))
	aluminum.Get("/export", inventory.ExportAluminumHandler(d.DB))
	aluminum.Get("/:id", inventory.GetAluminumHandler(d.DB))
	aluminum.Post("/", inventory.CreateAluminumHandler(d.DB))
	aluminum.Post("/batch-delete", inventory.BatchDeleteAluminumHandler(d.DB))
	aluminum.Put("/:id", inventory.UpdateAluminumHandler(d.DB))
	aluminum.Delete("/:id", inventory.DeleteAluminumHandler(d.DB))

	stockRoutes := api.Group("/stock", guard...)
	stockRoutes.Get("/", inventory.GetStockHandler(d.DB, cfg.ZincTypes))
	stockRoutes.Get("/export", inventory.ExportStockHandler(d.DB, cfg.ZincTypes))

	app.Static("/", cfg.StaticDir, fiber.Static{Index: "login.html"})

	return app
}

// errorHandler renders every error as {success: false, message}.
func errorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			ise *stock.InsufficientStockError
			ve  *store.ValidationError
			due *auth.DuplicateUserError
			fe  *fiber.Error
		)
		switch {
		case errors.As(err, &ise):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": ise.Error(),
				"detail":  ise.Detail(),
			})
		case errors.As(err, &ve):
			return fail(c, fiber.StatusBadRequest, ve.Message)
		case errors.Is(err, store.ErrNotFound):
			return fail(c, fiber.StatusNotFound, "记录不存在")
		case errors.As(err, &due):
			return fail(c, fiber.StatusBadRequest, due.Error())
		case errors.Is(err, auth.ErrInvalidCredentials):
			return fail(c, fiber.StatusUnauthorized, err.Error())
		case errors.As(err, &fe):
			return fail(c, fe.Code, fe.Message)
		}

		logging.LogError(log, "server", "errorHandler", c.Method()+" "+c.Path(), nil, err)
		return fail(c, fiber.StatusInternalServerError, "服务器内部错误")
	}
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}
