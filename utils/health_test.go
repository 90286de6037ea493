package utils

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestHealthStatusHealthy(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		status HealthStatus
		want   bool
	}{
		{name: "never checked", status: HealthStatus{}, want: false},
		{name: "all up", status: HealthStatus{Services: map[string]bool{"sql": true, "mongo": true}, CheckedAt: now}, want: true},
		{name: "one down", status: HealthStatus{Services: map[string]bool{"sql": true, "redis": false}, CheckedAt: now}, want: false},
		{name: "nothing configured", status: HealthStatus{Services: map[string]bool{}, CheckedAt: now}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Healthy(); got != tt.want {
				t.Errorf("Healthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHealthMonitorChecksSQL(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "health.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}

	m := NewHealthMonitor(sqlDB, nil, nil, time.Minute, nil)
	if m.Status().Healthy() {
		t.Fatal("monitor reported healthy before the first check")
	}

	status := m.Check(context.Background())
	if !status.Services["sql"] || !status.Healthy() {
		t.Fatalf("status = %+v, want sql up", status)
	}
	if _, ok := status.Services["mongo"]; ok {
		t.Fatal("mongo checked without a client")
	}

	sqlDB.Close()
	if m.Check(context.Background()).Healthy() {
		t.Fatal("closed database reported healthy")
	}
}
