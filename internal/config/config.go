package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type StorageDriver string

const (
	StorageDriverPostgres StorageDriver = "postgres"
	StorageDriverMemory   StorageDriver = "memory"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Leave      LeaveConfig
	Payroll    PayrollConfig
}

type DatabaseConfig struct {
	Driver   StorageDriver
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port            int
	Env             string
	LogLevel        string
	AllowedOrigins  []string
	DefaultTimezone string
}

type AttendanceConfig struct {
	NormalWorkingHours decimal.Decimal
}

type LeaveConfig struct {
	MonthlyAccrual  int
	CarryForwardCap int
	MonthlyCap      int
}

type PayrollConfig struct {
	StandardDaysPerMonth int
	RecomputeInterval    time.Duration
	RecomputeConcurrency int
}

// Load reads configuration from the environment. A .env file is optional;
// values already set in the environment take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	var err error

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Driver:   StorageDriver(getEnv("STORAGE_DRIVER", string(StorageDriverPostgres))),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "payroll_engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: maxConns,
		MinConns: minConns,
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:            appPort,
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:  getEnvSlice("CORS_ALLOWED_ORIGINS"),
		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "UTC"),
	}

	// JWT configuration
	accessExpiration, err := getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", time.Hour)
	if err != nil {
		return nil, err
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	// Engine configuration
	normalHours, err := decimal.NewFromString(getEnv("ATTENDANCE_NORMAL_WORKING_HOURS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_NORMAL_WORKING_HOURS: %w", err)
	}
	config.Attendance = AttendanceConfig{NormalWorkingHours: normalHours}

	if config.Leave.MonthlyAccrual, err = getEnvInt("LEAVE_MONTHLY_ACCRUAL", 1); err != nil {
		return nil, err
	}
	if config.Leave.CarryForwardCap, err = getEnvInt("LEAVE_CARRY_FORWARD_CAP", 1); err != nil {
		return nil, err
	}
	if config.Leave.MonthlyCap, err = getEnvInt("LEAVE_MONTHLY_CAP", 2); err != nil {
		return nil, err
	}

	if config.Payroll.StandardDaysPerMonth, err = getEnvInt("PAYROLL_STANDARD_DAYS_PER_MONTH", 30); err != nil {
		return nil, err
	}
	if config.Payroll.RecomputeInterval, err = getEnvDuration("PAYROLL_RECOMPUTE_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if config.Payroll.RecomputeConcurrency, err = getEnvInt("PAYROLL_RECOMPUTE_CONCURRENCY", 4); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.Database.MaxConns <= 0 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be postgres or memory, got %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid DEFAULT_TIMEZONE: %w", err)
	}
	if !c.Attendance.NormalWorkingHours.IsPositive() {
		return fmt.Errorf("ATTENDANCE_NORMAL_WORKING_HOURS must be positive")
	}
	if c.Leave.MonthlyAccrual < 0 || c.Leave.CarryForwardCap < 0 || c.Leave.MonthlyCap < 0 {
		return fmt.Errorf("leave policy values must not be negative")
	}
	if c.Payroll.StandardDaysPerMonth <= 0 {
		return fmt.Errorf("PAYROLL_STANDARD_DAYS_PER_MONTH must be positive")
	}
	if c.Payroll.RecomputeInterval <= 0 {
		return fmt.Errorf("PAYROLL_RECOMPUTE_INTERVAL must be positive")
	}
	if c.Payroll.RecomputeConcurrency <= 0 {
		return fmt.Errorf("PAYROLL_RECOMPUTE_CONCURRENCY must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the default timezone for institutions without their own.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
