// Package pgcontainer runs a throwaway PostgreSQL container for integration
// tests.
package pgcontainer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/talx-hub/gopher-users/internal/model"
)

const (
	defaultTag = "17-alpine"
	pgPort     = "5432/tcp"

	testDBName       = "test"
	testUserName     = "test"
	testUserPassword = "test"
)

type PGContainer struct {
	log       *slog.Logger
	pool      *dockertest.Pool
	container *dockertest.Resource
	dsn       string
}

func New(log *slog.Logger) *PGContainer {
	return &PGContainer{
		log: log,
	}
}

// RunContainer starts postgres and blocks until it accepts connections.
// The image tag comes from POSTGRES_TAG, optionally set in a .env file.
func (c *PGContainer) RunContainer() error {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return fmt.Errorf("failed to initialize a docker pool: %w", err)
	}
	if err = pool.Client.Ping(); err != nil {
		return fmt.Errorf("docker is unavailable: %w", err)
	}
	c.pool = pool

	container, err := pool.RunWithOptions(
		&dockertest.RunOptions{
			Repository: "postgres",
			Tag:        loadImageTag(),
			Env: []string{
				"POSTGRES_USER=" + testUserName,
				"POSTGRES_PASSWORD=" + testUserPassword,
				"POSTGRES_DB=" + testDBName,
			},
			ExposedPorts: []string{pgPort},
		},
		func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{Name: "no"}
		},
	)
	if err != nil {
		return fmt.Errorf("failed to run postgres container: %w", err)
	}
	c.container = container

	c.dsn = fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		testUserName,
		testUserPassword,
		container.GetHostPort(pgPort),
		testDBName,
	)

	const maxWait = 30 * time.Second
	pool.MaxWait = maxWait
	if err = pool.Retry(c.ping); err != nil {
		return fmt.Errorf("postgres did not become ready: %w", err)
	}

	return nil
}

func (c *PGContainer) GetDSN() string {
	return c.dsn
}

func (c *PGContainer) Close() {
	if c.pool == nil || c.container == nil {
		return
	}
	if err := c.pool.Purge(c.container); err != nil {
		c.log.LogAttrs(context.TODO(),
			slog.LevelError,
			"failed to purge the postgres container",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

func (c *PGContainer) ping() error {
	const pingTimeout = 2 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, c.dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to the DB: %w", err)
	}
	defer func() {
		_ = conn.Close(ctx)
	}()

	if err = conn.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping the DB: %w", err)
	}
	return nil
}

func loadImageTag() string {
	_ = godotenv.Load(".env")
	if tag := os.Getenv("POSTGRES_TAG"); tag != "" {
		return tag
	}
	return defaultTag
}
