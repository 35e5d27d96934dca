package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "8", cfg.Attendance.NormalWorkingHours.String())
	assert.Equal(t, 30, cfg.Payroll.StandardDaysPerMonth)
	assert.Equal(t, time.Hour, cfg.Payroll.RecomputeInterval)
	assert.Equal(t, 4, cfg.Payroll.RecomputeConcurrency)
	assert.Equal(t, 1, cfg.Leave.MonthlyAccrual)
	assert.Equal(t, 2, cfg.Leave.MonthlyCap)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PAYROLL_RECOMPUTE_INTERVAL", "15m")
	t.Setenv("ATTENDANCE_NORMAL_WORKING_HOURS", "7.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Payroll.RecomputeInterval)
	assert.Equal(t, "7.5", cfg.Attendance.NormalWorkingHours.String())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/payroll_engine?sslmode=disable", cfg.DatabaseURL())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"STORAGE_DRIVER": "memory"}},
		{name: "postgres without password", env: map[string]string{"JWT_SECRET_KEY": "s"}},
		{name: "unknown driver", env: map[string]string{"JWT_SECRET_KEY": "s", "STORAGE_DRIVER": "sqlite"}},
		{name: "bad port", env: map[string]string{"JWT_SECRET_KEY": "s", "STORAGE_DRIVER": "memory", "APP_PORT": "http"}},
		{name: "zero concurrency", env: map[string]string{"JWT_SECRET_KEY": "s", "STORAGE_DRIVER": "memory", "PAYROLL_RECOMPUTE_CONCURRENCY": "0"}},
		{name: "pool bounds", env: map[string]string{"JWT_SECRET_KEY": "s", "DB_PASSWORD": "pw", "DB_MIN_CONNS": "30"}},
		{name: "unknown timezone", env: map[string]string{"JWT_SECRET_KEY": "s", "STORAGE_DRIVER": "memory", "DEFAULT_TIMEZONE": "Mars/Base"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for _, key := range []string{"JWT_SECRET_KEY", "STORAGE_DRIVER", "DB_PASSWORD"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
