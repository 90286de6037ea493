package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gobarber/config"
	"gobarber/database"
	"gobarber/models"
	"gobarber/services/mail"
	"gobarber/services/queue"
)

// app holds the process-wide connections. Each command builds only the parts
// it needs and closes them through Close.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	db      *gorm.DB
	mongo   *mongo.Client
	redis   *redis.Client
	metrics *prometheus.Registry

	closers []func() error
}

func newApp(env *environment) *app {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &app{cfg: env.cfg, logger: env.logger, metrics: reg}
}

func (a *app) openSQL() error {
	db, err := database.OpenSQL(a.cfg.DBDriver, a.cfg.DatabaseURL, !a.cfg.IsProduction())
	if err != nil {
		return err
	}
	a.db = db
	a.closers = append(a.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	a.logger.Info("Connected to relational store", zap.String("driver", a.cfg.DBDriver))
	return nil
}

func (a *app) openMongo(ctx context.Context) error {
	client, err := database.ConnectMongo(ctx, a.cfg.MongoURL, a.logger)
	if err != nil {
		return err
	}
	a.mongo = client
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.Disconnect(ctx)
	})
	return nil
}

// openRedis connects the client used for reachability checks of the asynq
// backend.
func (a *app) openRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisQueueDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis at %s: %w", a.cfg.RedisAddr, err)
	}
	a.redis = client
	a.closers = append(a.closers, client.Close)
	a.logger.Info("Connected to Redis", zap.String("addr", a.cfg.RedisAddr))
	return nil
}

func (a *app) asynqConfig() queue.AsynqConfig {
	return queue.AsynqConfig{
		Redis: asynq.RedisClientOpt{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisQueueDB,
		},
		MaxRetry:    a.cfg.QueueMaxRetry,
		Concurrency: a.cfg.QueueWorkers,
	}
}

func (a *app) reporter(queueMetrics *queue.Metrics) queue.Reporter {
	return queue.Reporter{
		Logger:  a.logger.With(zap.String("component", "queue")),
		Metrics: queueMetrics,
	}
}

func (a *app) mailer() mail.Mailer {
	logger := a.logger.With(zap.String("component", "mail"))
	if a.cfg.MailHost == "" {
		logger.Warn("MAIL_HOST is empty, outgoing mail is only logged")
		return mail.NewLogMailer(logger)
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     a.cfg.MailHost,
		Port:     a.cfg.MailPort,
		Username: a.cfg.MailUser,
		Password: a.cfg.MailPass,
		From:     a.cfg.MailFrom,
	}, logger)
}

// jobRegistry binds every job key this process can execute.
func (a *app) jobRegistry() *queue.Registry {
	registry := queue.NewRegistry()
	cancellation := mail.NewCancellationMail(a.mailer(), a.cfg.Location(), a.logger.With(zap.String("job", models.JobCancellationMail)))
	registry.Register(cancellation.Key(), cancellation)
	return registry
}

func (a *app) metricsHandler() http.Handler {
	return promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{})
}

// Close releases connections in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
