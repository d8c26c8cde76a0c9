package cmd

import (
	"fmt"

	"calendar-sync/core/loader"
	"calendar-sync/core/logger"
	"calendar-sync/core/middleware/auth"
	"calendar-sync/core/middleware/rayid"
	"calendar-sync/feature/calendar"
	calsync "calendar-sync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "calendar-sync/docs/swagger"
)

// @title Calendar Sync API
// @version 1.0
// @description API for reading synchronized users and calendar events and triggering sync jobs.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the calendar-sync server",
	Long:  `Starts the HTTP server, initializes all enabled features and runs the recurring sync jobs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		// 1. Load configuration, logger and database
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()
		logg := rt.logger

		// 2. Wire the sync engine
		orch, archive, err := rt.newOrchestrator(ctx)
		if err != nil {
			return err
		}
		runner := calsync.NewRunner(ctx, orch, logg)
		if archive != nil {
			runner.Seed(ctx, archive)
		}

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           rt.cfg.Server.ReadTimeout,
		})

		// 4. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(calendar.NewFeature(rt.store, logg))
		mgr.Register(calsync.NewFeature(runner, rt.db, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the ray id
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth (health and docs stay public)
		if !rt.cfg.Server.AuthEnabled() {
			logg.Warn("SERVER_API_KEY is empty, the API is not protected")
		}
		app.Use(auth.New(auth.Config{
			ApiKey:         rt.cfg.Server.ApiKey,
			PublicPrefixes: []string{"/health", "/swagger"},
		}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		// 6. Recurring jobs
		var sched *calsync.Scheduler
		if rt.cfg.Sync.SchedulerEnabled {
			sched = calsync.NewScheduler(runner, rt.cfg.Sync, logg)
			if err := sched.Start(ctx); err != nil {
				return err
			}
		} else {
			logg.Info("Scheduler disabled")
		}

		// 7. Start Server
		serverErr := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			serverErr <- app.Listen(rt.cfg.Server.Addr())
		}()

		// 8. Graceful Shutdown
		select {
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
		case <-ctx.Done():
		}

		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(rt.cfg.Server.ShutdownTimeout); err != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(err))
		}

		// Background runs observe the cancelled context and stop between users
		stop()
		if sched != nil {
			sched.Wait()
		}
		runner.Wait()
		logg.Info("Server stopped")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
