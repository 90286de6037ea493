package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appointmentRepo "gobarber/database/repository/appointment"
	notificationRepo "gobarber/database/repository/notification"
	userRepo "gobarber/database/repository/user"
	"gobarber/handlers"
	"gobarber/middleware"
	"gobarber/routes"
	"gobarber/services/queue"
	"gobarber/services/scheduling"
	"gobarber/services/storage"
	"gobarber/utils"
)

func newServeCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Start the HTTP API. With QUEUE_BACKEND=memory the job workers run in this process too.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), env)
		},
	}
}

func runServe(parent context.Context, env *environment) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := context.WithCancel(parent)
	defer stop()

	cfg, logger := env.cfg, env.logger
	a := newApp(env)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("serve: cleanup failed", zap.Error(err))
		}
	}()

	if err := a.openSQL(); err != nil {
		return err
	}
	if err := a.openMongo(ctx); err != nil {
		return err
	}
	notifications, err := notificationRepo.NewMongoNotificationRepo(ctx, a.mongo.Database(cfg.MongoDatabase))
	if err != nil {
		return err
	}
	users := userRepo.NewGormUserRepo(a.db)
	appointments := appointmentRepo.NewGormAppointmentRepo(a.db)

	report := a.reporter(queue.NewMetrics(a.metrics))
	var (
		jobs      queue.Queue
		drainJobs func(context.Context) error
	)
	switch cfg.QueueBackend {
	case "asynq":
		if err := a.openRedis(ctx); err != nil {
			return err
		}
		producer := queue.NewAsynqQueue(a.asynqConfig(), report)
		jobs = producer
		drainJobs = func(context.Context) error { return producer.Close() }
	default:
		memory := queue.NewMemoryQueue(a.jobRegistry(), queue.MemoryConfig{
			Workers:    cfg.QueueWorkers,
			JobTimeout: 30 * time.Second,
		}, report)
		memory.Start(context.Background())
		jobs = memory
		drainJobs = memory.Shutdown
	}
	logger.Info("Job queue ready", zap.String("backend", cfg.QueueBackend))

	files, err := storage.NewURLResolver(cfg.AppURL, cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, logger.With(zap.String("component", "storage")))
	if err != nil {
		return err
	}

	engine, err := scheduling.NewEngine(appointments, users, notifications, jobs, logger,
		scheduling.WithLocation(cfg.Location()),
	)
	if err != nil {
		return fmt.Errorf("build scheduling engine: %w", err)
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	monitor := utils.NewHealthMonitor(sqlDB, a.mongo, a.redis, time.Minute, logger)
	monitor.Start(ctx)

	appointmentHandler := handlers.NewAppointmentHandler(engine, files)
	notificationHandler := handlers.NewNotificationHandler(notifications, users)

	handlerBundle := &handlers.HandlerBundle{
		Logger:          logger,
		JWTSecret:       []byte(cfg.JWTSecret),
		RateLimitPerMin: cfg.MaxRequestsPerMin,
		HTTPMetrics:     middleware.NewHTTPMetrics(a.metrics),
		MetricsHandler:  a.metricsHandler(),

		// Appointment endpoints.
		ListAppointmentsHandler:  appointmentHandler.ListAppointments,
		BookAppointmentHandler:   appointmentHandler.BookAppointment,
		CancelAppointmentHandler: appointmentHandler.CancelAppointment,
		ListScheduleHandler:      appointmentHandler.ListSchedule,

		// Notification endpoints.
		ListNotificationsHandler:    notificationHandler.ListNotifications,
		MarkNotificationReadHandler: notificationHandler.MarkNotificationRead,

		HealthHandler: handlers.HealthHandler(monitor),
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           routes.NewRouter(handlerBundle),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
	case <-ctx.Done():
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
	}
	logger.Info("serve: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("serve: server forced to shutdown", zap.Error(err))
	}
	if err := drainJobs(shutdownCtx); err != nil {
		logger.Error("serve: job queue did not drain", zap.Error(err))
	}

	logger.Info("serve: server stopped gracefully")
	return runErr
}
