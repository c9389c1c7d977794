package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"microprobe/config"
	"microprobe/my"
	"microprobe/pg"
	"microprobe/probe"
)

var (
	dbDriver string
	dbConn   config.ConnConfig
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Benchmark database round-trips through the calibrated engine",
	Long: `Times minimal query round-trips (SELECT 1, ping) against a live
database, with loop and dispatch overhead subtracted like any other
target.`,
	RunE: runDB,
}

func init() {
	dbCmd.Flags().StringVar(&dbDriver, "driver", "postgres", "database driver: postgres or mysql")
	dbCmd.Flags().StringVar(&dbConn.Host, "host", "127.0.0.1", "database host")
	dbCmd.Flags().IntVar(&dbConn.Port, "port", 0, "database port (default 5432/3306 per driver)")
	dbCmd.Flags().StringVar(&dbConn.User, "user", "", "database user")
	dbCmd.Flags().StringVar(&dbConn.Password, "password", "", "database password")
	dbCmd.Flags().StringVar(&dbConn.Database, "database", "", "database name")
	rootCmd.AddCommand(dbCmd)
}

func runDB(cmd *cobra.Command, _ []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}

	var results []probe.TimeResult
	switch dbDriver {
	case "postgres":
		if dbConn.Port == 0 {
			dbConn.Port = 5432
		}
		pool, connErr := pg.Connect(dbConn)
		if connErr != nil {
			return fmt.Errorf("connect postgres: %w", connErr)
		}
		defer pool.Close()
		results, err = pg.BenchRoundTrip(pool, r)
	case "mysql":
		if dbConn.Port == 0 {
			dbConn.Port = 3306
		}
		db, connErr := my.Connect(dbConn)
		if connErr != nil {
			return fmt.Errorf("connect mysql: %w", connErr)
		}
		defer db.Close()
		results, err = my.BenchRoundTrip(db, r)
	default:
		return fmt.Errorf("unknown driver %q (want postgres or mysql)", dbDriver)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), probe.FormatComparison(results))
	return nil
}
