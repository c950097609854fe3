package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "weatherdeck/internal/api/http"
	"weatherdeck/internal/app"
	"weatherdeck/internal/citystore"
	"weatherdeck/internal/config"
	"weatherdeck/internal/kvstore"
	"weatherdeck/internal/scheduler"
	"weatherdeck/internal/weather"
	"weatherdeck/internal/weather/providers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the weatherdeck server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.OpenWeatherAPIKey == "" {
		return errors.New("OPENWEATHER_API_KEY environment variable is not set")
	}

	// Durable key-value storage for the saved-city snapshots.
	kv, err := kvstore.NewSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	cities := citystore.New(kv)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	fetcher := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)

	var searcher weather.Searcher = providers.NewGeoSearcher(httpClient, cfg.OpenWeatherAPIKey, cfg.SearchLimit)
	if cfg.GeocoderAPIKey != "" {
		searcher = providers.NewGoogleSearcher(cfg.GeocoderAPIKey)
	}

	service := app.NewService(fetcher, searcher, cities)
	search := app.NewDebouncer(service, cfg.SearchDebounce)
	defer search.Stop()

	// Warm the view for the persisted selection, if any.
	if _, ok := cities.SelectedCity(); ok {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := service.Refresh(ctx); err != nil {
				log.Printf("initial refresh failed: %v", err)
			}
		}()
	}

	// Background refresh of the selected city.
	sched := scheduler.New(service, cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	// Basic app configuration
	fapp := fiber.New(fiber.Config{
		AppName:               "weatherdeck",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	fapp.Use(logger.New())
	fapp.Use(recover.New())

	// Basic health endpoint
	fapp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherdeck",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(fapp, service, search)

	go func() {
		if err := fapp.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fapp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return nil
}
