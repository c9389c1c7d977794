package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"microprobe/probe"
	"microprobe/sink"
)

var suiteMetricsAddr string

var suiteCmd = &cobra.Command{
	Use:   "suite",
	Short: "Run the built-in demo benchmark suite",
	RunE:  runSuite,
}

func init() {
	suiteCmd.Flags().StringVar(&suiteMetricsAddr, "metrics-addr", "",
		"also expose results on this address for Prometheus scraping (e.g. :2112)")
	rootCmd.AddCommand(suiteCmd)
}

func runSuite(cmd *cobra.Command, _ []string) error {
	r, err := newRunner()
	if err != nil {
		return err
	}

	session := uuid.NewString()
	slog.Info("starting benchmark suite", "session", session,
		"min_iterations", cfg.MinIterations, "min_milliseconds", cfg.MinMilliseconds)

	var metrics *sink.Prometheus
	if addr := firstNonEmpty(suiteMetricsAddr, cfg.MetricsAddr); addr != "" {
		metrics = sink.NewPrometheus()
		go func() {
			if serveErr := http.ListenAndServe(addr, metrics.Handler()); serveErr != nil {
				slog.Error("metrics endpoint failed", "addr", addr, "error", serveErr)
			}
		}()
		slog.Info("metrics endpoint up", "addr", addr)
	}

	var results []probe.TimeResult
	for _, w := range suiteWorkloads(r) {
		res, runErr := w.run()
		if runErr != nil {
			return fmt.Errorf("workload %q: %w", w.name, runErr)
		}
		if metrics != nil {
			metrics.Record(res)
		}
		results = append(results, res)
	}

	fmt.Fprintln(cmd.OutOrStdout(), probe.FormatComparison(results))
	return nil
}

type workload struct {
	name string
	run  func() (probe.TimeResult, error)
}

// suiteWorkloads are small, self-contained targets chosen to exercise
// the engine's modes: plain targets, repetitions-per-call, and
// clock-controlled targets that pause around per-iteration setup.
func suiteWorkloads(r *probe.Runner) []workload {
	const concatChars = 64
	const collectionSize = 1000

	return []workload{
		{"string += (64 chars)", func() (probe.TimeResult, error) {
			return r.TimeReps("string += (64 chars)", concatChars, func(n int) {
				for i := 0; i < n; i++ {
					var s string
					for j := 0; j < concatChars; j++ {
						s += "x"
					}
					probe.Sink = s
				}
			})
		}},
		{"strings.Builder (64 chars)", func() (probe.TimeResult, error) {
			return r.TimeReps("strings.Builder (64 chars)", concatChars, func(n int) {
				for i := 0; i < n; i++ {
					var b strings.Builder
					for j := 0; j < concatChars; j++ {
						b.WriteByte('x')
					}
					probe.Sink = b.String()
				}
			})
		}},
		{"fmt.Sprintf", func() (probe.TimeResult, error) {
			return r.Time("fmt.Sprintf", func(n int) {
				var s string
				for i := 0; i < n; i++ {
					s = fmt.Sprintf("%d-%s", i, "x")
				}
				probe.Sink = s
			})
		}},
		{"map insert (1k)", func() (probe.TimeResult, error) {
			return r.TimeReps("map insert (1k)", collectionSize, func(n int) {
				for i := 0; i < n; i++ {
					m := make(map[int]int)
					for j := 0; j < collectionSize; j++ {
						m[j] = j
					}
					probe.Sink = m
				}
			})
		}},
		{"sort.Ints (1k, shuffled)", func() (probe.TimeResult, error) {
			rng := rand.New(rand.NewSource(1))
			return r.TimeControlReps("sort.Ints (1k, shuffled)", collectionSize, func(n int, c *probe.Clock) {
				for i := 0; i < n; i++ {
					c.Pause()
					data := rng.Perm(collectionSize)
					c.Resume()
					sort.Ints(data)
					probe.Sink = data
				}
			})
		}},
		{"pointer alloc", func() (probe.TimeResult, error) {
			return r.Time("pointer alloc", func(n int) {
				var p *[2]int64
				for i := 0; i < n; i++ {
					p = new([2]int64)
				}
				probe.Sink = p
			})
		}},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
