package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/covid-dashboard/internal/api/http"
	"github.com/i474232898/covid-dashboard/internal/chart"
	"github.com/i474232898/covid-dashboard/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	// Scheduler that periodically refreshes the displayed data.
	sched := scheduler.New(a.cfg.RefreshInterval, 2*a.cfg.HTTPTimeout, a.service, a.logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := newApp(a)

	go func() {
		a.logger.Info("listening", zap.String("port", a.cfg.Port))
		if err := app.Listen(":" + a.cfg.Port); err != nil {
			a.logger.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		a.logger.Error("error during shutdown", zap.Error(err))
	}
	return nil
}

func newApp(a *deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "covid-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2*a.cfg.HTTPTimeout + 5*time.Second,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				a.logger.Warn("request failed",
					zap.String("path", c.Path()),
					zap.Int("status", code),
					zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "covid-dashboard",
		})
	})

	httpapi.RegisterRoutes(app, a.service, chart.Options{
		Width:  a.cfg.ChartWidth,
		Height: a.cfg.ChartHeight,
	})
	return app
}
