package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/SlpAus/smartpanel-backend/api"
	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/platform/config"
	"github.com/SlpAus/smartpanel-backend/internal/platform/database"
	"github.com/SlpAus/smartpanel-backend/internal/platform/health"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/platform/shutdown"
	"github.com/SlpAus/smartpanel-backend/internal/platform/startup"
	"github.com/SlpAus/smartpanel-backend/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	rdb, err := database.InitRedis(ctx, cfg.Database.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	secret := []byte(cfg.Auth.JWTSecret)
	if len(secret) == 0 {
		secret = randomSecret()
		log.Warn("auth.jwtSecret is empty, using a random secret; tokens will not survive a restart")
	}

	app := api.NewApp(db, rdb, cfg, log)
	rebuild := func(ctx context.Context) error {
		return startup.RebuildCache(ctx, app.Reconciler, log)
	}
	checker := health.NewChecker(rdb, rebuild, log, health.DefaultInterval)

	// the warmup must be tied to the run id it was built against
	if err := checker.InitializeRunID(ctx); err != nil {
		return err
	}
	if err := startup.InitializeApplication(ctx, db, app.Reconciler, log); err != nil {
		return err
	}
	checker.PerformCheck(ctx)

	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()
	if err := startBackground(app, checker, gracefulMgr, forcefulMgr); err != nil {
		return err
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	api.SetupRoutes(router, app.Handlers, account.IdentityMiddleware(secret, cfg.Auth.Issuer))

	server := &http.Server{Addr: cfg.Server.Address, Handler: router}
	go func() {
		log.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	shutdown.NewCoordinator(gracefulMgr, forcefulMgr, log).ListenForSignalsAndShutdown(server)
	return nil
}

func startBackground(app *api.App, checker *health.Checker, graceful, forceful *lifecycle.Manager) error {
	dispatchG, err := graceful.NewServiceHandle("notification_dispatcher")
	if err != nil {
		return err
	}
	dispatchF, err := forceful.NewServiceHandle("notification_dispatcher")
	if err != nil {
		return err
	}
	go app.Dispatcher.Run(dispatchG, dispatchF)

	singles := []struct {
		name string
		run  func(*lifecycle.Handle)
	}{
		{"campaign_reminders", app.Reminders.Run},
		{"leaderboard_reconciler", app.Reconciler.Run},
		{"redis_health", checker.Run},
	}
	for _, s := range singles {
		h, err := graceful.NewServiceHandle(s.name)
		if err != nil {
			return err
		}
		go s.run(h)
	}
	return nil
}

func ginMode(mode string) string {
	switch mode {
	case "prod", "production", "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("cannot read random bytes: " + err.Error())
	}
	return []byte(hex.EncodeToString(buf))
}
