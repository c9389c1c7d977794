// Package pg benchmarks PostgreSQL round-trips through the probe engine.
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"microprobe/config"
	"microprobe/probe"
)

// Connect opens a small pgx pool against the given endpoint and verifies
// it with a ping.
func Connect(c config.ConnConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// BenchRoundTrip times minimal query round-trips, isolating wire and
// protocol cost from any real query work.
func BenchRoundTrip(pool *pgxpool.Pool, r *probe.Runner) ([]probe.TimeResult, error) {
	ctx := context.Background()
	var results []probe.TimeResult

	var qerr error
	res, err := r.Time("pg: SELECT 1", func(n int) {
		var x int
		for i := 0; i < n; i++ {
			if e := pool.QueryRow(ctx, "SELECT 1").Scan(&x); e != nil {
				qerr = e
				return
			}
		}
		probe.Sink = x
	})
	if err != nil {
		return nil, err
	}
	if qerr != nil {
		return nil, fmt.Errorf("select round-trip: %w", qerr)
	}
	results = append(results, res)

	res, err = r.Time("pg: ping", func(n int) {
		for i := 0; i < n; i++ {
			if e := pool.Ping(ctx); e != nil {
				qerr = e
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if qerr != nil {
		return nil, fmt.Errorf("ping round-trip: %w", qerr)
	}
	results = append(results, res)

	return results, nil
}
