package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/katalvlaran/lvpar/experiment"
)

var (
	colorOK    = lipgloss.Color("#2CD7C7")
	colorFail  = lipgloss.Color("#E74C3C")
	colorMuted = lipgloss.Color("#6C7A89")
)

type palette struct {
	ok, fail, muted, bold lipgloss.Style
}

var styles = newPalette(colorEnabled(os.Stdout))

func newPalette(color bool) palette {
	if !color {
		plain := lipgloss.NewStyle()
		return palette{ok: plain, fail: plain, muted: plain, bold: plain}
	}

	return palette{
		ok:    lipgloss.NewStyle().Bold(true).Foreground(colorOK),
		fail:  lipgloss.NewStyle().Bold(true).Foreground(colorFail),
		muted: lipgloss.NewStyle().Foreground(colorMuted),
		bold:  lipgloss.NewStyle().Bold(true),
	}
}

// colorEnabled reports whether f is an interactive terminal and NO_COLOR is unset.
func colorEnabled(f *os.File) bool {
	if _, off := os.LookupEnv("NO_COLOR"); off {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printOutcome writes one status line per run.
func printOutcome(w io.Writer, p palette, o experiment.Outcome) {
	r := o.Record
	head := fmt.Sprintf("%-8s %-22s seed=%-4d", r.Instance, r.Algorithm, r.Seed)
	if o.Err != nil {
		fmt.Fprintf(w, "%s %s %s\n", head, p.fail.Render("FAIL"), p.muted.Render(o.Err.Error()))
		return
	}
	fmt.Fprintf(w, "%s %s fitness=%.4f infeasibility=%d deviation=%.4f %s\n",
		head, p.ok.Render("OK"), r.Fitness, r.Infeasibility, r.Deviation,
		p.muted.Render(r.Elapsed.Round(time.Millisecond).String()))
}

// lockedPrinter returns a run callback that is safe for concurrent use.
func lockedPrinter(w io.Writer, p palette) func(experiment.Outcome) {
	var mu sync.Mutex
	return func(o experiment.Outcome) {
		mu.Lock()
		defer mu.Unlock()
		printOutcome(w, p, o)
	}
}

// printSummary writes the per (instance, algorithm) aggregates.
func printSummary(w io.Writer, p palette, rep *experiment.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.bold.Render(fmt.Sprintf("%-8s %-22s %5s %5s %12s %12s %10s",
		"instance", "algorithm", "runs", "fail", "mean fit", "min fit", "mean infs")))
	for _, s := range rep.Summaries {
		fmt.Fprintf(w, "%-8s %-22s %5d %5d %12.4f %12.4f %10.2f\n",
			s.Instance, s.Algorithm, s.Runs, s.Failures, s.MeanFitness, s.MinFitness, s.MeanInfeasibility)
	}
	status := p.ok.Render("done")
	if rep.Failed() > 0 {
		status = p.fail.Render(fmt.Sprintf("%d failed", rep.Failed()))
	}
	fmt.Fprintf(w, "%s: %d runs in %s (batch %s)\n", status, len(rep.Outcomes), rep.Elapsed.Round(time.Millisecond), rep.BatchID)
}
