package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "AEROSTORE"

type Config struct {
	PostgresURL   string       `mapstructure:"postgres_url" validate:"required"`
	GRPCPort      string       `mapstructure:"grpc_port" validate:"required"`
	HTTPPort      string       `mapstructure:"http_port" validate:"required"`
	LogLevel      string       `mapstructure:"log_level" validate:"required,uppercase,oneof=DEBUG INFO WARN ERROR"`
	PoolOptions   PoolConfig   `mapstructure:"pool" validate:"required"`
	SchemaOptions SchemaConfig `mapstructure:"schema" validate:"required"`
	SearchOptions SearchConfig `mapstructure:"search" validate:"required"`
}

type PoolConfig struct {
	MaxConns int32 `mapstructure:"max_conns" validate:"min=1"`
	MinConns int32 `mapstructure:"min_conns" validate:"min=0,ltefield=MaxConns"`
}

type SchemaConfig struct {
	RunMigrations bool  `mapstructure:"run_migrations"`
	InitTables    bool  `mapstructure:"init_tables"`
	// RebuildTables drops every resource table before creating it again.
	RebuildTables bool  `mapstructure:"rebuild_tables"`
	LockLeaseSecs int64 `mapstructure:"lock_lease_secs" validate:"min=1"`
}

type SearchConfig struct {
	DefaultResultsPerPage int32 `mapstructure:"default_results_per_page" validate:"min=1,ltefield=MaxResultsPerPage"`
	MaxResultsPerPage     int32 `mapstructure:"max_results_per_page" validate:"min=1"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("postgres_url", "")
	v.SetDefault("grpc_port", ":50051")
	v.SetDefault("http_port", ":8080")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("pool.max_conns", 10)
	v.SetDefault("pool.min_conns", 1)
	v.SetDefault("schema.run_migrations", true)
	v.SetDefault("schema.init_tables", true)
	v.SetDefault("schema.rebuild_tables", false)
	v.SetDefault("schema.lock_lease_secs", 60)
	v.SetDefault("search.default_results_per_page", 50)
	v.SetDefault("search.max_results_per_page", 500)
}

// Load reads .env, the optional config file and the environment, exiting on invalid configuration.
func Load() *Config {
	cfg, err := load()
	if err != nil {
		zap.S().Errorw("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logConfig(cfg)
	return cfg
}

func load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.S().Debugw("No .env file loaded", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	configFile := os.Getenv(envPrefix + "_CONFIG_PATH")
	if configFile != "" {
		v.SetConfigFile(configFile)
		zap.S().Infow("Loading configuration from specified file", "path", configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/aerostore/")
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		zap.S().Warn("Config file not found, using defaults and environment variables")
	} else {
		zap.S().Infow("Configuration loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration")
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return errors.Wrap(err, "config validation failed")
	}
	return nil
}

func logConfig(cfg *Config) {
	zap.S().Infow("Final Configuration",
		"grpc_port", cfg.GRPCPort,
		"http_port", cfg.HTTPPort,
		"log_level", cfg.LogLevel,
		"pool", cfg.PoolOptions,
		"schema", cfg.SchemaOptions,
		"search", cfg.SearchOptions)
}
