package main

import (
	"fmt"
	"io"

	"moveck/internal/driver"
	"moveck/internal/observ"
)

// printFileTimings writes one line per file followed by the phase totals
// summed over all files.
func printFileTimings(out io.Writer, results []driver.FileResult) {
	if out == nil || len(results) == 0 {
		return
	}
	reports := make([]observ.Report, len(results))
	for i := range results {
		r := &results[i]
		note := ""
		if r.Cached {
			note = "  // cached"
		}
		fmt.Fprintf(out, "%s %.2f ms%s\n", r.Path, r.Timing.TotalMS, note)
		reports[i] = r.Timing
	}
	for _, p := range observ.Sum(reports...).Phases {
		fmt.Fprintf(out, "  %-12s %8.2f ms\n", p.Name, p.DurationMS)
	}
}

func printRunTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	fmt.Fprint(out, timer.Summary())
}
