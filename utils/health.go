package utils

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Services  map[string]bool `json:"services"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// Healthy reports whether every checked service answered.
func (s HealthStatus) Healthy() bool {
	if s.CheckedAt.IsZero() {
		return false
	}
	for _, ok := range s.Services {
		if !ok {
			return false
		}
	}
	return true
}

// HealthMonitor pings backing services periodically and keeps the latest snapshot.
// Nil clients are not checked.
type HealthMonitor struct {
	sqlDB    *sql.DB
	mongo    *mongo.Client
	redis    *redis.Client
	interval time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(sqlDB *sql.DB, mongoClient *mongo.Client, redisClient *redis.Client, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthMonitor{
		sqlDB:    sqlDB,
		mongo:    mongoClient,
		redis:    redisClient,
		interval: interval,
		logger:   logger.With(zap.String("component", "health")),
	}
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Check pings every configured service once and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	services := make(map[string]bool, 3)
	if m.sqlDB != nil {
		services["sql"] = m.ping("sql", m.sqlDB.PingContext(ctx))
	}
	if m.mongo != nil {
		services["mongo"] = m.ping("mongo", m.mongo.Ping(ctx, nil))
	}
	if m.redis != nil {
		services["redis"] = m.ping("redis", m.redis.Ping(ctx).Err())
	}

	status := HealthStatus{Services: services, CheckedAt: time.Now()}
	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

func (m *HealthMonitor) ping(name string, err error) bool {
	if err != nil {
		m.logger.Warn("Health check failed", zap.String("service", name), zap.Error(err))
		return false
	}
	return true
}

// Start checks immediately and then on every tick until ctx is done.
func (m *HealthMonitor) Start(ctx context.Context) {
	go func() {
		m.Check(ctx)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}
