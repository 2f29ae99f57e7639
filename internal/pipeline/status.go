package pipeline

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/nguyentantai21042004/edit-flow/internal/runlog"
)

// StageOrder is the fixed stage order, for reporting.
var StageOrder = []StageID{StageDenoise, StageTranscribe, StageClean, StageEditSegments, StageTimeline}

// WriteStatus prints, per video, the latest recorded outcome of each stage.
// A stage whose last record is a start with nothing after it is shown as
// interrupted.
func WriteStatus(w io.Writer, records []runlog.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded yet.")
		return err
	}

	h := runlog.Progress(records)
	open := runlog.Interrupted(records)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "VIDEO")
	for _, s := range StageOrder {
		fmt.Fprintf(tw, "\t%s", s)
	}
	fmt.Fprintln(tw)

	ids := h.Videos()
	for id := range open {
		if _, ok := h[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Fprint(tw, id)
		for _, s := range StageOrder {
			cell := "-"
			if r, ok := h.Last(id, s.String()); ok {
				cell = string(r.Outcome)
				if r.ErrorKind != "" {
					cell += " (" + r.ErrorKind + ")"
				}
			}
			if open[id] == s.String() {
				cell = "interrupted"
			}
			fmt.Fprintf(tw, "\t%s", cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
