package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const DefaultPath = "config.yaml"

type AppCfg struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoCfg struct {
	URI            string `mapstructure:"uri"`
	Database       string `mapstructure:"database"`
	UserCollection string `mapstructure:"user_collection"`
	TodoCollection string `mapstructure:"todo_collection"`
}

type JWTCfg struct {
	Secret           string `mapstructure:"secret"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
}

// AccessTTL is the lifetime of a session token issued on login.
func (j JWTCfg) AccessTTL() time.Duration {
	return time.Duration(j.AccessTTLMinutes) * time.Minute
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaCfg struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type NATSCfg struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type RateLimitCfg struct {
	Enabled   bool `mapstructure:"enabled"`
	PerMinute int  `mapstructure:"per_minute"`
	Burst     int  `mapstructure:"burst"`
}

type SecurityCfg struct {
	PasswordHashCost     int  `mapstructure:"password_hash_cost"`
	ProtectAllTodoRoutes bool `mapstructure:"protect_all_todo_routes"`
	EnforceOwnership     bool `mapstructure:"enforce_ownership"`
}

type Config struct {
	App       AppCfg       `mapstructure:"app"`
	Mongo     MongoCfg     `mapstructure:"mongo"`
	JWT       JWTCfg       `mapstructure:"jwt"`
	Redis     RedisCfg     `mapstructure:"redis"`
	Kafka     KafkaCfg     `mapstructure:"kafka"`
	NATS      NATSCfg      `mapstructure:"nats"`
	RateLimit RateLimitCfg `mapstructure:"rate_limit"`
	Security  SecurityCfg  `mapstructure:"security"`
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "todo-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 5354)
	v.SetDefault("app.read_timeout", 10*time.Second)
	v.SetDefault("app.write_timeout", 10*time.Second)
	v.SetDefault("app.idle_timeout", 60*time.Second)
	v.SetDefault("app.shutdown_timeout", 10*time.Second)

	v.SetDefault("mongo.database", "userData")
	v.SetDefault("mongo.user_collection", "userProfile")
	v.SetDefault("mongo.todo_collection", "userlist")

	v.SetDefault("jwt.access_ttl_minutes", 60)

	v.SetDefault("redis.prefix", "todo-service:ratelimit")

	v.SetDefault("kafka.topic", "todo-events")
	v.SetDefault("nats.subject", "todo.events")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.per_minute", 20)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("security.password_hash_cost", bcrypt.DefaultCost)
}

// Load reads the YAML file at path (a missing file is not an error), applies
// defaults and then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if p := os.Getenv("CONFIG_PATH"); p != "" {
		path = p
	}

	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideFromEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	override := func(env string, apply func(string)) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			apply(v)
		}
	}
	overrideInt := func(env string, dest *int) {
		override(env, func(v string) {
			if n, err := strconv.Atoi(v); err == nil {
				*dest = n
			}
		})
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	overrideInt("PORT", &cfg.App.Port)
	override("MONGO_URI", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })
	override("JWT_SECRET", func(v string) { cfg.JWT.Secret = v })
	overrideInt("JWT_ACCESS_TTL_MINUTES", &cfg.JWT.AccessTTLMinutes)
	override("REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	override("REDIS_PASSWORD", func(v string) { cfg.Redis.Password = v })
	override("KAFKA_BROKERS", func(v string) { cfg.Kafka.Brokers = strings.Split(v, ",") })
	override("NATS_URL", func(v string) { cfg.NATS.URL = v })
	overrideInt("PASSWORD_HASH_COST", &cfg.Security.PasswordHashCost)
}

func validate(cfg *Config) error {
	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		return fmt.Errorf("app.port %d is out of range", cfg.App.Port)
	}
	if cfg.Mongo.URI == "" {
		return errors.New("mongo.uri is empty (set MONGO_URI)")
	}
	if cfg.Mongo.Database == "" {
		return errors.New("mongo.database is missing")
	}
	if cfg.JWT.Secret == "" && !cfg.IsDevelopment() {
		return errors.New("jwt.secret is required outside development (set JWT_SECRET)")
	}
	if cfg.JWT.AccessTTLMinutes <= 0 {
		return errors.New("jwt.access_ttl_minutes must be positive")
	}
	if cfg.Security.PasswordHashCost < bcrypt.MinCost || cfg.Security.PasswordHashCost > bcrypt.MaxCost {
		return fmt.Errorf("security.password_hash_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.PerMinute <= 0 {
		return errors.New("rate_limit.per_minute must be positive when rate limiting is enabled")
	}
	return nil
}
