// Package report renders hyperparameter search histories as text summaries
// and PNG charts.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/scitune/scitune/pkg/errors"
	"github.com/scitune/scitune/tune"
)

// Summary writes a tabular view of the search history to w: one row per
// trial with its hyperparameters and loss, failed trials marked, and the
// best successful trial flagged. Rows keep the history order.
func Summary(w io.Writer, trials []tune.Trial) error {
	if len(trials) == 0 {
		return errors.NewValueError("report.Summary", "history must not be empty")
	}

	names := paramNames(trials)

	best, bestErr := tune.Best(trials)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprint(tw, "trial")
	for _, name := range names {
		fmt.Fprintf(tw, "\t%s", name)
	}
	fmt.Fprint(tw, "\tloss\t\n")

	for _, t := range trials {
		fmt.Fprintf(tw, "%d", t.Index)
		for _, name := range names {
			if v, ok := t.Params[name]; ok {
				fmt.Fprintf(tw, "\t%g", v)
			} else {
				fmt.Fprint(tw, "\t-")
			}
		}
		switch {
		case t.Failed():
			fmt.Fprintf(tw, "\tfailed: %v\t\n", t.Err)
		case bestErr == nil && t.Index == best.Index:
			fmt.Fprintf(tw, "\t%g\t<- best\n", t.Loss)
		default:
			fmt.Fprintf(tw, "\t%g\t\n", t.Loss)
		}
	}

	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "report.Summary: flushing table")
	}

	if bestErr == nil {
		fmt.Fprintf(w, "\nbest trial %d: loss=%g params=%v\n", best.Index, best.Loss, formatParams(best.Params, names))
	} else {
		fmt.Fprint(w, "\nno successful trials\n")
	}
	return nil
}

// paramNames collects the union of parameter names across the history in a
// stable order.
func paramNames(trials []tune.Trial) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range trials {
		for name := range t.Params {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func formatParams(params map[string]float64, names []string) string {
	s := "{"
	for i, name := range names {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s: %g", name, params[name])
	}
	return s + "}"
}
