package ui

import (
	"fmt"
	"strings"
	"time"

	"feedscraper/pkg/feed"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// RunTracker times a run and prints its outcome
type RunTracker struct {
	StartTime time.Time
	now       func() time.Time
}

// NewRunTracker starts timing a run
func NewRunTracker() *RunTracker {
	return &RunTracker{StartTime: time.Now(), now: time.Now}
}

// Elapsed returns the time since the run started
func (rt *RunTracker) Elapsed() time.Duration {
	return rt.now().Sub(rt.StartTime)
}

// Bar renders done/total as a fixed-width progress bar
func Bar(done, total int) string {
	const width = 20
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s] %d/%d",
		strings.Repeat(ProgressBar, filled)+strings.Repeat(ProgressEmpty, width-filled),
		done, total)
}

// PrintRunSummary prints totals, the elapsed time in seconds and one line
// per profile. detail > 0 also lists each post cut to detail characters.
func (rt *RunTracker) PrintRunSummary(result *feed.Result, profiles int, outputPath string, detail int) {
	out := Output
	fmt.Fprintln(out)
	fmt.Fprintln(out, Magenta("=== Scraping Summary ==="))
	fmt.Fprintf(out, "Total profiles: %d\n", profiles)
	fmt.Fprintf(out, "Total tweets: %d\n", result.TotalPosts())
	fmt.Fprintf(out, "Time taken: %.2f seconds\n", rt.Elapsed().Seconds())
	fmt.Fprintf(out, "Profiles: %s\n", Bar(result.Len()-result.FailedCount(), result.Len()))
	if outputPath != "" {
		fmt.Fprintf(out, "Output: %s\n", outputPath)
	}
	fmt.Fprintln(out)
	for _, line := range feed.Lines(result, detail) {
		fmt.Fprintln(out, line)
	}
}
