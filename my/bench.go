// Package my benchmarks MySQL round-trips through the probe engine.
package my

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"microprobe/config"
	"microprobe/probe"
)

// Connect opens a database/sql handle against the given endpoint and
// verifies it with a ping.
func Connect(c config.ConnConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&interpolateParams=true&timeout=30s",
		c.User, c.Password, c.Host, c.Port, c.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// BenchRoundTrip times minimal query round-trips, isolating wire and
// protocol cost from any real query work.
func BenchRoundTrip(db *sql.DB, r *probe.Runner) ([]probe.TimeResult, error) {
	ctx := context.Background()
	var results []probe.TimeResult

	var qerr error
	res, err := r.Time("mysql: SELECT 1", func(n int) {
		var x int
		for i := 0; i < n; i++ {
			if e := db.QueryRowContext(ctx, "SELECT 1").Scan(&x); e != nil {
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

	res, err = r.Time("mysql: ping", func(n int) {
		for i := 0; i < n; i++ {
			if e := db.PingContext(ctx); e != nil {
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
