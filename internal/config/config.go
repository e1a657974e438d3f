package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "RAVEBOX_CONFIG_FILE"
	envPrefix         = "RAVEBOX"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Media    MediaConfig    `mapstructure:"media"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	Host    string `mapstructure:"host"`
	APIPath string `mapstructure:"api_path"` // Route prefix, with leading and trailing slash
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIConfig holds Ravebox API client configuration
type APIConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	Timeout              time.Duration `mapstructure:"timeout"` // Zero disables the per-request timeout
	MaxRetries           int           `mapstructure:"max_retries"`
	MaxWorkers           int           `mapstructure:"max_workers"`
	MaxRequestsPerSecond int           `mapstructure:"max_requests_per_second"`
	XSRFCookie           string        `mapstructure:"xsrf_cookie"`
	CircuitBreakerDelay  time.Duration `mapstructure:"circuit_breaker_delay"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	Password      string        `mapstructure:"password"`
	Database      int           `mapstructure:"database"`
	ConsumerGroup string        `mapstructure:"consumer_group"`
	MinIdleTime   time.Duration `mapstructure:"min_idle_time"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MediaConfig configures the media removal function
type MediaConfig struct {
	Region         string `mapstructure:"region"`
	ReportFailures bool   `mapstructure:"report_failures"` // Queue failed removals on Redis
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// Apply configures the global logger
func (l LogConfig) Apply() error {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	log.SetLevel(level)

	if l.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// RegisterFlags adds the flags Load understands to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default is ./config.yaml)")
	fs.String("log-level", "", "log level, overrides log.level")
}

// Load loads configuration from a YAML file with environment variable
// overrides. The file is taken from RAVEBOX_CONFIG_FILE, then the --config
// flag, then ./config.yaml; only an explicitly named file has to exist.
// Variables from a local .env file are loaded first and never override the
// real environment.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("⚠️ Failed to load .env file: %v", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("log-level"); f != nil {
			if err := v.BindPFlag("log.level", f); err != nil {
				return nil, fmt.Errorf("failed to bind log-level flag: %w", err)
			}
		}
	}

	configFile := configFilepath(flags)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config.yaml found, using defaults and environment")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if !strings.HasSuffix(config.Server.APIPath, "/") {
		config.Server.APIPath += "/"
	}

	return &config, nil
}

func configFilepath(flags *pflag.FlagSet) string {
	if env, ok := os.LookupEnv(configFileEnvName); ok && env != "" {
		return env
	}
	if flags == nil {
		return ""
	}
	path, err := flags.GetString("config")
	if err != nil {
		return ""
	}
	return path
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.api_path", "/api/")

	v.SetDefault("api.base_url", "http://localhost:3000/api/")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.max_retries", 0)
	v.SetDefault("api.max_workers", 4)
	v.SetDefault("api.max_requests_per_second", 10)
	v.SetDefault("api.xsrf_cookie", "XSRF-TOKEN")
	v.SetDefault("api.circuit_breaker_delay", 5*time.Minute)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "ravebox")
	v.SetDefault("database.user", "ravebox_user")
	v.SetDefault("database.password", "ravebox_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "ravebox_consumer")
	v.SetDefault("redis.min_idle_time", 2*time.Minute)

	v.SetDefault("media.region", "us-east-1")
	v.SetDefault("media.report_failures", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
