package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/talx-hub/gopher-users/internal/model"
)

const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

const (
	defaultRunAddr    = "localhost:8080"
	defaultSQLitePath = "file::memory:?cache=shared"
	defaultCacheTTL   = 5 * time.Minute
	defaultLogLevel   = "info"
	defaultDotEnvPath = ".env"
)

type Config struct {
	RunAddr     string        `env:"RUN_ADDRESS"`
	DatabaseURI string        `env:"DATABASE_URI"`
	Storage     string        `env:"STORAGE"`
	SQLitePath  string        `env:"SQLITE_PATH"`
	RedisAddr   string        `env:"REDIS_ADDRESS"`
	LogLevel    string        `env:"LOG_LEVEL"`
	CacheTTL    time.Duration `env:"CACHE_TTL"`

	HashConcurrency uint64 `env:"HASH_CONCURRENCY"`
}

// Validate reports every inconsistency at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURI == "" {
			errs = append(errs, errors.New("postgres storage needs a database URI"))
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite storage needs a database path"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}
	if c.RedisAddr != "" && c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL))
	}
	if c.HashConcurrency == 0 {
		errs = append(errs, errors.New("hash concurrency must be positive"))
	}
	if c.RunAddr == "" {
		errs = append(errs, errors.New("run address is empty"))
	}
	return errors.Join(errs...)
}

// CacheEnabled reports whether users should be cached in Redis.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

type Builder struct {
	cfg  *Config
	log  *slog.Logger
	args []string
}

func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{
		cfg: &Config{
			RunAddr:     defaultRunAddr,
			DatabaseURI: "",
			Storage:     StoragePostgres,
			SQLitePath:  defaultSQLitePath,
			RedisAddr:   "",
			LogLevel:    defaultLogLevel,
			CacheTTL:    defaultCacheTTL,

			HashConcurrency: uint64(runtime.NumCPU()),
		},
		log:  log,
		args: os.Args[1:],
	}
}

// WithArgs replaces the command line FromFlags parses.
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// FromDotEnv loads variables from a .env file into the process environment.
// Variables already set are left alone, so the real environment wins.
func (b *Builder) FromDotEnv(paths ...string) *Builder {
	if len(paths) == 0 {
		paths = []string{defaultDotEnvPath}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			b.log.LogAttrs(context.Background(),
				slog.LevelDebug, "dotenv file is not loaded",
				slog.String("path", p),
				slog.Any(model.KeyLoggerError, err))
		}
	}
	return b
}

func (b *Builder) FromEnv() *Builder {
	if err := env.Parse(b.cfg); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse config", slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) FromFlags() *Builder {
	fs := flag.NewFlagSet("gopher-users", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&b.cfg.RunAddr, "a", b.cfg.RunAddr, "Run address")
	fs.StringVar(&b.cfg.DatabaseURI, "d", b.cfg.DatabaseURI, "Database URI")
	fs.StringVar(&b.cfg.Storage, "s", b.cfg.Storage, "Storage backend: postgres or sqlite")
	fs.StringVar(&b.cfg.SQLitePath, "f", b.cfg.SQLitePath, "SQLite database path")
	fs.StringVar(&b.cfg.RedisAddr, "r", b.cfg.RedisAddr, "Redis address, empty disables the cache")
	fs.DurationVar(&b.cfg.CacheTTL, "t", b.cfg.CacheTTL, "Cache TTL")
	fs.StringVar(&b.cfg.LogLevel, "l", b.cfg.LogLevel, "Log level")
	fs.Uint64Var(&b.cfg.HashConcurrency, "c", b.cfg.HashConcurrency,
		"Concurrent password derivations")

	if err := fs.Parse(b.args); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse flags", slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) GetConfig() *Config {
	return b.cfg
}
