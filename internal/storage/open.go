package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Options struct {
	Driver        string
	DSN           string
	RunMigrations bool
	// TTL applies to the redis driver only.
	TTL time.Duration
}

// Open builds the Store selected by opts. The returned close func releases
// the underlying connections and is never nil.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch opts.Driver {
	case DriverMemory, "":
		return NewMemory(), noop, nil

	case DriverSQLite:
		if opts.RunMigrations {
			if err := RunMigrations(DriverSQLite, opts.DSN, logger); err != nil {
				return nil, noop, err
			}
		}
		s, err := OpenSQLite(ctx, opts.DSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil

	case DriverPostgres:
		if opts.RunMigrations {
			if err := RunMigrations(DriverPostgres, opts.DSN, logger); err != nil {
				return nil, noop, err
			}
		}
		pool, err := NewPool(ctx, opts.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("db connect: %w", err)
		}
		return NewPostgres(pool), func() error { pool.Close(); return nil }, nil

	case DriverRedis:
		redisOpts, err := redis.ParseURL(opts.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(redisOpts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		r := NewRedis(client, opts.TTL)
		return r, r.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown storage driver %q", opts.Driver)
}
