package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg holds the configuration loaded by LoadConfig.
var Cfg *Config

// Config mirrors the layout of config.yaml.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Reminder    ReminderConfig    `mapstructure:"reminder"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig lists the browser origins allowed to call the API.
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig selects the SQL driver and the Redis cache.
type DatabaseConfig struct {
	Driver string      `mapstructure:"driver"`
	DSN    string      `mapstructure:"dsn"`
	Redis  RedisConfig `mapstructure:"redis"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// RedisConfig is the connection info for the leaderboard cache and notification queue.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds the shared secret used to verify identity tokens
// issued by the external identity provider.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwtSecret"`
	Issuer    string `mapstructure:"issuer"`
}

// ScoringConfig tunes the retry behaviour of the scoring transaction.
type ScoringConfig struct {
	MaxRetries  int           `mapstructure:"maxRetries"`
	RetryDelay  time.Duration `mapstructure:"retryDelay"`
	LockTimeout time.Duration `mapstructure:"lockTimeout"`
}

// ReminderConfig controls how often the campaign reminder scheduler wakes up.
type ReminderConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LeaderboardConfig controls how often the Redis cache is rebuilt from SQL.
type LeaderboardConfig struct {
	ReconcileInterval time.Duration `mapstructure:"reconcileInterval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "smartpanel.db")
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "smartpanel")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("scoring.maxRetries", 3)
	v.SetDefault("scoring.retryDelay", 50*time.Millisecond)
	v.SetDefault("scoring.lockTimeout", 5*time.Second)
	v.SetDefault("reminder.interval", time.Hour)
	v.SetDefault("leaderboard.reconcileInterval", 10*time.Minute)
}

// LoadConfig reads config.yaml from ./config or the working directory.
// A missing file is not an error: defaults and environment variables
// (SERVER_ADDRESS, DATABASE_DSN, AUTH_JWTSECRET, ...) still apply.
func LoadConfig() (*Config, error) {
	// .env is optional, it only seeds the process environment
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Database.Driver != DriverSQLite && cfg.Database.Driver != DriverPostgres {
		return nil, errors.New("database.driver must be sqlite or postgres")
	}

	Cfg = &cfg
	return Cfg, nil
}
