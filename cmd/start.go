package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"texture-manager/core/loader"
	"texture-manager/core/logger"
	"texture-manager/core/metrics"
	"texture-manager/core/middleware/auth"
	"texture-manager/core/middleware/rayid"

	"texture-manager/feature/catalog"
	"texture-manager/feature/integrity"
	"texture-manager/feature/integrity/checks"
	"texture-manager/feature/residency"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "texture-manager/docs/swagger"
)

// @title Texture Manager API
// @version 1.0
// @description Asynchronous texture residency and upload management.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the texture manager server",
	Long:  `Starts the upload worker and the HTTP server, and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logg := bootstrap()
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		eng, err := newEngine(cmd.Context(), cfg, logg)
		if err != nil {
			log.Fatalf("Failed to initialize texture pipeline: %v", err)
		}
		eng.manager.Start()

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           cfg.Server.RequestTimeout(),
			WriteTimeout:          cfg.Server.RequestTimeout(),
		})

		res := residency.NewFeature(eng.manager, eng.provider, eng.host, eng.host, logg)
		mgr := loader.NewManager(logg)
		mgr.Register(res)
		mgr.Register(catalog.NewFeature(eng.repo, res.Service(), newReconciler(eng, res.Service()), logg))

		var schema checks.SchemaVerifier
		if eng.repo != nil {
			schema = eng.repo
		}
		mgr.Register(integrity.NewFeature(eng.store, cfg.Storage.Bucket, cfg.Storage.Folders, schema, res.Service(), logg))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			l.Info("Request",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("ip", c.IP()),
			)
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public routes
		app.Get("/swagger/*", swagger.HandlerDefault)
		skip := []string{}
		if cfg.Metrics.Enabled {
			app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(metrics.Handler()))
			skip = append(skip, cfg.Metrics.Path)
		}

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: skip}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		if eng.repo != nil && cfg.Catalog.PreloadOnStart {
			go func() {
				if _, err := catalog.NewService(eng.repo, res.Service(), logg).PreloadAll(context.Background(), false); err != nil {
					logg.Warn("Startup catalog preload failed", zap.Error(err))
				}
			}()
		}

		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(err))
		}
		res.Close()
		eng.Close()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
