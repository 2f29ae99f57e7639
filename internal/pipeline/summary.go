package pipeline

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// Summary is the outcome of a batch.
type Summary struct {
	Results []VideoResult
	Elapsed time.Duration
}

// Counts returns how many videos completed, failed and were interrupted.
func (s Summary) Counts() (completed, failed, interrupted int) {
	for _, r := range s.Results {
		switch r.Status {
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		case StatusInterrupted:
			interrupted++
		}
	}
	return completed, failed, interrupted
}

// OK reports whether every video completed.
func (s Summary) OK() bool {
	_, failed, interrupted := s.Counts()
	return failed == 0 && interrupted == 0
}

const (
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiReset  = "\033[0m"
)

// Write prints the per-video report. Colors are used only when w is a terminal.
func (s Summary) Write(w io.Writer) {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}

	paint := func(c, text string) string {
		if !color {
			return text
		}
		return c + text + ansiReset
	}

	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w, "========================================")
	for _, r := range s.Results {
		switch r.Status {
		case StatusCompleted:
			fmt.Fprintf(w, "%s  %s (%s)\n", paint(ansiGreen, "[DONE]"), r.Video.ID, r.Duration.Round(time.Second))
		case StatusFailed:
			fmt.Fprintf(w, "%s  %s: failed at %s (%s): %v\n", paint(ansiRed, "[FAIL]"), r.Video.ID, r.FailedStage, r.Kind(), r.Err)
		case StatusInterrupted:
			fmt.Fprintf(w, "%s  %s: not started\n", paint(ansiYellow, "[STOP]"), r.Video.ID)
		}
	}

	completed, failed, interrupted := s.Counts()
	fmt.Fprintf(w, "\n%d completed, %d failed, %d interrupted in %s\n",
		completed, failed, interrupted, s.Elapsed.Round(time.Second))
}
