package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"microprobe/probe"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Report byte footprints of sample values",
	RunE:  runSize,
}

func init() {
	rootCmd.AddCommand(sizeCmd)
}

type point struct {
	X, Y int32
}

type record struct {
	ID    int64
	Label string
}

func runSize(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	// An int64 above the runtime's small-integer box cache, so the
	// boxing-delta baseline reflects a real allocation.
	if err := describeTo(out, func() int64 { return 1_000_000_007 }); err != nil {
		return err
	}
	if err := describeTo(out, func() point { return point{X: 3, Y: 4} }); err != nil {
		return err
	}
	// A value type embedding a reference field: deep size exceeds the
	// packed size by the string payload each factory call populates.
	seq := 0
	if err := describeTo(out, func() record {
		seq++
		return record{ID: int64(seq), Label: fmt.Sprintf("record-%04d", seq)}
	}); err != nil {
		return err
	}
	if err := describeTo(out, func() []int64 { return make([]int64, 1024) }); err != nil {
		return err
	}
	if err := describeTo(out, func() map[int]int {
		m := make(map[int]int, 256)
		for i := 0; i < 256; i++ {
			m[i] = i
		}
		return m
	}); err != nil {
		return err
	}
	return describeTo(out, func() *record { return &record{ID: 1} })
}

func describeTo[T any](out io.Writer, factory func() T) error {
	desc, err := probe.ByteSizeDescription(factory)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, desc)
	return err
}
