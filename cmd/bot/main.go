package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schedulebot/internal/cache"
	"schedulebot/internal/config"
	"schedulebot/internal/dialog"
	"schedulebot/internal/dispatch"
	"schedulebot/internal/handler"
	"schedulebot/internal/middleware"
	"schedulebot/internal/repository/postgres"
	"schedulebot/internal/ruz"
	"schedulebot/internal/schedule"
	"schedulebot/internal/service"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// deliveryTimeout bounds one round of subscription deliveries
const deliveryTimeout = 50 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Schedule Bot")

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.Error(err))
	}

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), cfg.Database.MaxConnections, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := postgres.RunMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Database migrations completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schedule API, cached in redis when configured
	ruzClient := ruz.NewClient(cfg.RUZ.BaseURL, cfg.RUZ.Timeout, logger)
	var (
		directory schedule.Directory = ruzClient
		stash     cache.Stash        = cache.NewMemoryStash(cfg.Redis.CacheTTL)
	)
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()

		directory = cache.NewDirectory(ruzClient, rdb, cfg.Redis.CacheTTL, logger)
		stash = cache.NewRedisStash(rdb, cfg.Redis.CacheTTL)
	} else {
		logger.Info("Redis not configured, using in-memory payload stash")
	}

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: cfg.LongPollTimeout},
		OnError: func(err error, c tele.Context) {
			logger.Error("Telegram handler error", zap.Error(err))
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized", zap.String("username", bot.Me.Username))

	// Initialize repositories
	userRepo := postgres.NewUserRepo(sqlx.NewDb(db, "postgres"))

	// Initialize services
	sender := handler.NewSender(bot, stash, logger)
	userService := service.NewUserService(userRepo, logger)
	subscriptionService := service.NewSubscriptionService(userRepo, ruzClient, sender, logger)

	engine := dialog.NewEngine(userService, directory, ruzClient, sender, dialog.Options{
		CalendarURL: cfg.CalendarURL,
		Location:    loc,
	}, logger)
	dispatcher := dispatch.New(engine, logger)

	// Initialize handler
	bot.Use(middleware.Recover(logger), middleware.PrivateOnly(logger), middleware.Logger(logger))
	h := handler.NewHandler(bot, dispatcher, stash, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start subscription delivery
	scheduler := service.NewSchedulerService(loc)
	if _, err := scheduler.EveryMinute(func() {
		runCtx, done := context.WithTimeout(ctx, deliveryTimeout)
		defer done()
		if err := subscriptionService.DeliverDue(runCtx, time.Now().In(loc)); err != nil {
			logger.Error("Failed to deliver subscriptions", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("Failed to schedule subscription delivery", zap.Error(err))
	}
	scheduler.Start()

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown: stop intake first, then drain queued events
	bot.Stop()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("Pending events dropped on shutdown", zap.Error(err))
	}
	cancel()

	logger.Info("Bot stopped gracefully")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, maxConns int, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		// Connection successful
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}
