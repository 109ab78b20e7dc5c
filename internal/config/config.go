package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ModeMemory   = "memory"
	ModeSQLite   = "sqlite"
	ModeDatabase = "database"
)

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress string
	BaseURL       string
	GRPCAddress   string
	Mode          string
	DatabaseDSN   string
	SQLitePath    string

	RedisAddr string
	RedisTTL  time.Duration

	NATSURL     string
	NATSSubject string

	AuthSecret  string
	CORSOrigins []string
	TrustProxy  bool

	ClickTimeout          time.Duration
	PasswordAttemptsRPS   float64
	PasswordAttemptsBurst int

	ArgonTime      uint32
	ArgonMemoryKiB uint32
	ArgonThreads   uint8
}

var defaults = map[string]any{
	"SERVER_ADDRESS":          "localhost:8080",
	"BASE_URL":                "http://localhost:8080",
	"GRPC_ADDRESS":            "",
	"MODE":                    "",
	"DATABASE_DSN":            "",
	"SQLITE_PATH":             "",
	"REDIS_ADDR":              "",
	"REDIS_TTL":               "10m",
	"NATS_URL":                "",
	"NATS_SUBJECT":            "linkgate",
	"AUTH_SECRET":             "",
	"CORS_ORIGINS":            "",
	"TRUST_PROXY":             false,
	"CLICK_TIMEOUT":           "5s",
	"PASSWORD_ATTEMPTS_RPS":   0.2,
	"PASSWORD_ATTEMPTS_BURST": 5,
	"ARGON_TIME":              2,
	"ARGON_MEMORY_KIB":        19 * 1024,
	"ARGON_THREADS":           1,
}

// NewConfig читает конфигурацию из окружения и аргументов командной строки
func NewConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds the configuration. Precedence, highest first: flags,
// environment, .env file, JSON config file (-c or CONFIG), defaults.
func Load(args []string) (*Config, error) {
	// .env не переопределяет переменные окружения
	_ = godotenv.Load()

	fs := flag.NewFlagSet("shortener", flag.ContinueOnError)
	flags := map[string]*string{
		"SERVER_ADDRESS": fs.String("a", "", "server address"),
		"BASE_URL":       fs.String("b", "", "base URL for short links"),
		"DATABASE_DSN":   fs.String("d", "", "PostgreSQL DSN"),
		"SQLITE_PATH":    fs.String("s", "", "SQLite database file"),
		"MODE":           fs.String("m", "", "storage mode: memory, sqlite or database"),
		"GRPC_ADDRESS":   fs.String("g", "", "gRPC listen address"),
		"REDIS_ADDR":     fs.String("r", "", "Redis address for the lookup cache"),
	}
	configPath := fs.String("c", "", "path to JSON config file")
	fs.StringVar(configPath, "config", "", "path to JSON config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	// JSON-конфигурация имеет наименьший приоритет после значений по умолчанию
	if *configPath == "" {
		*configPath = os.Getenv("CONFIG")
	}
	if *configPath != "" {
		if err := applyJSON(v, *configPath); err != nil {
			return nil, err
		}
	}

	v.AutomaticEnv()

	for key, val := range flags {
		if *val != "" {
			v.Set(key, *val)
		}
	}

	cfg := &Config{
		ServerAddress:         v.GetString("SERVER_ADDRESS"),
		BaseURL:               strings.TrimSuffix(v.GetString("BASE_URL"), "/"),
		GRPCAddress:           v.GetString("GRPC_ADDRESS"),
		Mode:                  strings.ToLower(v.GetString("MODE")),
		DatabaseDSN:           v.GetString("DATABASE_DSN"),
		SQLitePath:            v.GetString("SQLITE_PATH"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisTTL:              v.GetDuration("REDIS_TTL"),
		NATSURL:               v.GetString("NATS_URL"),
		NATSSubject:           v.GetString("NATS_SUBJECT"),
		AuthSecret:            v.GetString("AUTH_SECRET"),
		CORSOrigins:           splitList(v.GetString("CORS_ORIGINS")),
		TrustProxy:            v.GetBool("TRUST_PROXY"),
		ClickTimeout:          v.GetDuration("CLICK_TIMEOUT"),
		PasswordAttemptsRPS:   v.GetFloat64("PASSWORD_ATTEMPTS_RPS"),
		PasswordAttemptsBurst: v.GetInt("PASSWORD_ATTEMPTS_BURST"),
		ArgonTime:             v.GetUint32("ARGON_TIME"),
		ArgonMemoryKiB:        v.GetUint32("ARGON_MEMORY_KIB"),
		ArgonThreads:          uint8(v.GetUint("ARGON_THREADS")),
	}

	// Определяем режим работы
	if cfg.Mode == "" {
		switch {
		case cfg.DatabaseDSN != "":
			cfg.Mode = ModeDatabase
		case cfg.SQLitePath != "":
			cfg.Mode = ModeSQLite
		default:
			cfg.Mode = ModeMemory
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("server address must not be empty")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base URL %q must be an absolute URL", cfg.BaseURL)
	}
	switch cfg.Mode {
	case ModeMemory:
	case ModeSQLite:
		if cfg.SQLitePath == "" {
			return fmt.Errorf("mode %q requires SQLITE_PATH", cfg.Mode)
		}
	case ModeDatabase:
		if cfg.DatabaseDSN == "" {
			return fmt.Errorf("mode %q requires DATABASE_DSN", cfg.Mode)
		}
	default:
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	if cfg.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET must not be empty")
	}
	if cfg.PasswordAttemptsRPS < 0 {
		return fmt.Errorf("PASSWORD_ATTEMPTS_RPS must not be negative")
	}
	if cfg.ClickTimeout <= 0 {
		return fmt.Errorf("CLICK_TIMEOUT must be positive")
	}
	return nil
}

func applyJSON(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	raw := make(map[string]any)
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	for k, val := range raw {
		v.SetDefault(strings.ToUpper(k), val)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
