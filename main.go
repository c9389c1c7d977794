package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"microprobe/config"
	"microprobe/probe"
)

var (
	cfgFile string
	debug   bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "microprobe",
	Short: "Calibrated micro-benchmarks and byte-size reports",
	Long: `microprobe measures per-operation cost with instrumentation overhead
subtracted out, and infers in-memory byte footprints from controlled
allocation deltas.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		initLogger(debug)
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Accept snake_case spellings of the kebab-case flags.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newRunner builds the engine from the loaded configuration.
func newRunner() (*probe.Runner, error) {
	return probe.NewRunner(
		probe.WithMinIterations(cfg.MinIterations),
		probe.WithMinDuration(cfg.MinDuration()),
		probe.WithConsoleOutput(cfg.WriteResultsToConsole),
		probe.WithLogger(slog.Default()),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
