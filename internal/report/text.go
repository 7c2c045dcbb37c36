package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"weft/internal/model"
)

// WriteTimelineSummary renders the analyzer output as a plain-text report.
func WriteTimelineSummary(w io.Writer, a model.TimelineAnalysis) error {
	var b strings.Builder
	b.WriteString("=== Timeline Summary ===\n")
	fmt.Fprintf(&b, "total interactions:  %d\n", a.TotalInteractions)
	fmt.Fprintf(&b, "unique participants: %d\n", a.UniqueParticipants)
	fmt.Fprintf(&b, "patterns:            %s\n", strings.Join(a.Patterns, ", "))
	if len(a.ActiveHours) > 0 {
		fmt.Fprintf(&b, "active hours (utc):  %s\n", joinInts(a.ActiveHours))
	}
	if a.TotalInteractions > 0 {
		fmt.Fprintf(&b, "peak hour:           %02d:00\n", a.Density.PeakHour)
		fmt.Fprintf(&b, "peak day:            %s\n", a.Density.PeakDay)
	}

	rt := a.ResponseTimes
	b.WriteString("--- response times (seconds) ---\n")
	if rt.SampleCount == 0 {
		b.WriteString("no same-conversation samples\n")
	} else {
		fmt.Fprintf(&b, "samples: %d  mean: %.1f  median: %.1f  min: %.1f  max: %.1f\n",
			rt.SampleCount, rt.Mean, rt.Median, rt.Min, rt.Max)
		names := make([]string, 0, len(rt.Percentiles))
		for name := range rt.Percentiles {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "%s: %.1f\n", name, rt.Percentiles[name])
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTimelineSummaryFile renders the summary to path.
func WriteTimelineSummaryFile(path string, a model.TimelineAnalysis) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	werr := WriteTimelineSummary(f, a)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%02d", x)
	}
	return strings.Join(parts, " ")
}
