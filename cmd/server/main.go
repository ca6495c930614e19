package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"usertask-manager/internal/config"
	apphttp "usertask-manager/internal/http"
	"usertask-manager/internal/metrics"
	"usertask-manager/internal/repository"
	"usertask-manager/internal/repository/postgres"
	"usertask-manager/internal/repository/sqlite"
	"usertask-manager/internal/service"
)

type stores struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	health apphttp.HealthCheck
	close  func()
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer st.close()

	// tasks reference users, so users go first
	if err := st.users.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := st.tasks.Init(ctx); err != nil {
		logger.Fatalf("init task repository: %v", err)
	}

	userService := service.NewUserService(st.users, logger.WithField("component", "users"))
	taskService := service.NewTaskService(st.tasks, st.users, logger.WithField("component", "tasks"))

	gin.SetMode(cfg.HTTP.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, taskService, st.health, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func openStores(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*stores, error) {
	driver := cfg.Database.Driver
	policy := repository.RetryPolicy{
		MaxRetries: cfg.Database.ConnectRetries,
		MaxDelay:   cfg.Database.MaxRetryDelay,
		Notify: func(err error, wait time.Duration) {
			metrics.RecordStoreConnect(driver, err)
			logger.WithError(err).Warnf("%s not ready, retrying in %s", driver, wait)
		},
	}

	switch driver {
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.Database.DSN, int32(cfg.Database.MaxOpenConns), policy)
		metrics.RecordStoreConnect(driver, err)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to postgres")
		return &stores{
			users:  postgres.NewUserRepository(pool),
			tasks:  postgres.NewTaskRepository(pool),
			health: pool.Ping,
			close:  pool.Close,
		}, nil
	default:
		db, err := sqlite.Open(ctx, cfg.Database.Path, policy)
		metrics.RecordStoreConnect(driver, err)
		if err != nil {
			return nil, err
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
		return &stores{
			users:  sqlite.NewUserRepository(db),
			tasks:  sqlite.NewTaskRepository(db),
			health: db.PingContext,
			close:  func() { _ = db.Close() },
		}, nil
	}
}
