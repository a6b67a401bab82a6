package api

import (
	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/admin"
	"github.com/SlpAus/smartpanel-backend/internal/badge"
	"github.com/SlpAus/smartpanel-backend/internal/campaign"
	"github.com/SlpAus/smartpanel-backend/internal/form"
	"github.com/SlpAus/smartpanel-backend/internal/leaderboard"
	"github.com/SlpAus/smartpanel-backend/internal/notification"
	"github.com/SlpAus/smartpanel-backend/internal/platform/config"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/profile"
	"github.com/SlpAus/smartpanel-backend/internal/response"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App is the wired object graph: the handlers plus the background
// services main has to start.
type App struct {
	Handlers   Handlers
	Engine     *scoring.Engine
	Cache      *leaderboard.Cache
	Dispatcher *notification.Dispatcher
	Reminders  *campaign.ReminderScheduler
	Reconciler *leaderboard.Reconciler
}

func NewApp(db *gorm.DB, rdb redis.Cmdable, cfg *config.Config, log *logger.Logger) *App {
	dispatcher := notification.NewDispatcher(rdb, log.With("module", "notification"), notification.DefaultCapacity)
	cache := leaderboard.NewCache(rdb, log.With("module", "leaderboard"))

	badges := badge.NewEvaluator(db, dispatcher, log.With("module", "badge"))
	engine := scoring.NewEngine(db, badges, log.With("module", "scoring"), scoring.Options{
		MaxRetries:  cfg.Scoring.MaxRetries,
		RetryDelay:  cfg.Scoring.RetryDelay,
		LockTimeout: cfg.Scoring.LockTimeout,
	}, cache)

	profiles := profile.NewService(db, engine, log.With("module", "profile"))
	campaigns := campaign.NewService(db, engine, log.With("module", "campaign"))
	forms := form.NewService(db, log.With("module", "form"))
	responses := response.NewService(db, engine, profiles, dispatcher, log.With("module", "response"))
	board := leaderboard.NewAggregator(db, cache, log.With("module", "leaderboard"))
	admins := admin.NewService(db, cache, log.With("module", "admin"))

	return &App{
		Handlers: Handlers{
			Accounts:    account.NewHandler(account.NewService(db)),
			Profiles:    profile.NewHandler(profiles, badges, engine),
			Campaigns:   campaign.NewHandler(campaigns, profiles),
			Forms:       form.NewHandler(forms, profiles),
			Responses:   response.NewHandler(responses, profiles),
			Scores:      scoring.NewHandler(engine),
			Leaderboard: leaderboard.NewHandler(board),
			Admin:       admin.NewHandler(admins),
		},
		Engine:     engine,
		Cache:      cache,
		Dispatcher: dispatcher,
		Reminders:  campaign.NewReminderScheduler(db, dispatcher, log.With("module", "reminder"), cfg.Reminder.Interval),
		Reconciler: leaderboard.NewReconciler(db, cache, cfg.Leaderboard.ReconcileInterval),
	}
}
