package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/yourusername/dltrack/internal/domain"
	"github.com/yourusername/dltrack/internal/format"
)

func printRecords(w io.Writer, records []domain.DownloadRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATE\tPROGRESS\tSIZE\tSPEED\tURL")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(r.Name, 32),
			r.State(),
			format.Percent(r),
			format.Sizes(r),
			format.Speed(r),
			truncate(r.URL, 60))
	}
	tw.Flush()
}

func printRecord(w io.Writer, r domain.DownloadRecord) {
	fmt.Fprintf(w, "Download Details:\n")
	fmt.Fprintf(w, "  Name:     %s\n", r.Name)
	fmt.Fprintf(w, "  URL:      %s\n", r.URL)
	fmt.Fprintf(w, "  Path:     %s\n", r.Path)
	fmt.Fprintf(w, "  State:    %s\n", r.State())
	fmt.Fprintf(w, "  Progress: %s\n", format.Percent(r))
	fmt.Fprintf(w, "  Size:     %s (%s of %s)\n", format.Sizes(r), format.Human(r.Transferred), format.Human(r.Size))
	fmt.Fprintf(w, "  Speed:    %s\n", format.Speed(r))
	if !r.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "  Updated:  %s\n", humanize.Time(r.UpdatedAt))
	}
}

func printStats(w io.Writer, stats domain.DownloadStats) {
	fmt.Fprintln(w, "Download Statistics:")
	fmt.Fprintf(w, "  Total:       %d\n", stats.Total)
	fmt.Fprintf(w, "  Pending:     %d\n", stats.Pending)
	fmt.Fprintf(w, "  Downloading: %d\n", stats.Downloading)
	fmt.Fprintf(w, "  Paused:      %d\n", stats.Paused)
	fmt.Fprintf(w, "  Done:        %d\n", stats.Done)
}

func printResult(w io.Writer, result domain.CommandResult) {
	target := result.URL
	if target == "" {
		target = result.Path
	}
	switch result.Outcome {
	case domain.OutcomeDispatched:
		fmt.Fprintf(w, "%s sent for %s\n", result.Action, target)
	case domain.OutcomeUnknownURL:
		fmt.Fprintf(w, "%s ignored: no download for %s\n", result.Action, target)
	case domain.OutcomeInvalidState:
		fmt.Fprintf(w, "%s ignored: %s is not in a state that allows it\n", result.Action, target)
	case domain.OutcomeNothingToLocate:
		fmt.Fprintf(w, "%s ignored: %s has no output path yet\n", result.Action, target)
	default:
		fmt.Fprintf(w, "%s: %s\n", result.Action, result.Outcome)
	}
}

func printChange(w io.Writer, now time.Time, change domain.RegistryChange) {
	ts := now.Format("15:04:05")
	if change.Kind == domain.ChangeRestored {
		fmt.Fprintf(w, "%s restored %s\n", ts, english.Plural(change.Count, "download", "downloads"))
		return
	}

	r := change.Record
	state := string(change.State)
	if change.PreviousState != "" && change.PreviousState != change.State {
		state = fmt.Sprintf("%s -> %s", change.PreviousState, change.State)
	}
	fmt.Fprintf(w, "%s %-8s %s  %s\n", ts, change.Kind, truncate(r.Name, 40), state)
	if change.Kind != domain.ChangeRemoved {
		fmt.Fprintf(w, "         %s\n", format.Details(r))
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
