package probe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true).Width(14)
)

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

// FormatTimeResult renders one benchmark result as a bordered block.
func FormatTimeResult(r TimeResult) string {
	name := r.Name()
	if name == "" {
		name = "(unnamed)"
	}

	lines := []string{
		titleStyle.Render(name),
		row("operations", humanize.Comma(r.Operations())),
		row("elapsed", fmt.Sprintf("%.3f ms", r.ElapsedMilliseconds())),
		row("per op", fmt.Sprintf("%.2f ns  |  %.4f µs  |  %.6f ms",
			r.NanosecondsPerOp(), r.MicrosecondsPerOp(), r.MillisecondsPerOp())),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// FormatComparison renders several results as a table sorted fastest
// first, with each row's slowdown relative to the fastest.
func FormatComparison(results []TimeResult) string {
	if len(results) == 0 {
		return boxStyle.Render("no results")
	}

	sorted := make([]TimeResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Compare(sorted[j]) < 0 })

	fastest := sorted[0].NanosecondsPerOp()

	lines := []string{
		titleStyle.Render("COMPARISON (fastest first)"),
		fmt.Sprintf("%-28s %14s %16s %10s", "name", "ops", "ns/op", "vs best"),
	}
	for i, r := range sorted {
		relative := "1.00x"
		if i > 0 && fastest > 0 {
			relative = fmt.Sprintf("%.2fx", r.NanosecondsPerOp()/fastest)
		}
		name := r.Name()
		if name == "" {
			name = "(unnamed)"
		}
		lines = append(lines, fmt.Sprintf("%-28s %14s %16.2f %10s",
			name, humanize.Comma(r.Operations()), r.NanosecondsPerOp(), relative))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// FormatSizeReport renders a size report as a bordered block.
func FormatSizeReport(rep SizeReport) string {
	lines := []string{titleStyle.Render(rep.TypeName)}

	if rep.IsValueType {
		lines = append(lines,
			row("kind", "value type"),
			row("aligned", fmtBytes(rep.AlignedBytes)),
			row("packed", fmtBytes(rep.PackedBytes)),
			row("deep", fmtBytes(rep.DeepBytes)),
		)
	} else {
		lines = append(lines,
			row("kind", "reference type"),
			row("total", fmtBytes(rep.TotalBytes)),
			row("overhead", fmtBytes(rep.OverheadBytes)),
			row("content", fmtBytes(rep.ContentBytes)),
		)
		if rep.HasItemCount {
			lines = append(lines, row("items", humanize.Comma(int64(rep.ItemCount))))
			if rep.ItemCount > 0 {
				lines = append(lines, row("per item", fmt.Sprintf("%.1f B", rep.BytesPerItem)))
			}
		}
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func fmtBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	if n < 4096 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%s (%s B)", humanize.IBytes(uint64(n)), humanize.Comma(n))
}
