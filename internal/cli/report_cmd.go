package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadopc/wintrackr/internal/report"
	"github.com/sadopc/wintrackr/internal/store"
	"github.com/sadopc/wintrackr/internal/summary"
)

func newReportCmd(app *App) *cobra.Command {
	var (
		day    string
		titles int
		plain  bool
		width  int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show time spent per application for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if day == "" {
				day = app.today()
			}
			if err := validDay(day); err != nil {
				return err
			}

			procs, err := summary.Load(summary.Path(app.cfg.SummaryDir(), day))
			if err != nil {
				return fmt.Errorf("loading summary for %s: %w", day, err)
			}

			history, err := app.historyTotals(cmd.Context(), day)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			opts := report.Options{
				Width:     width,
				Plain:     plain || !app.IsTerminal(out),
				TopTitles: titles,
				History:   history,
			}
			fmt.Fprint(out, report.Render(summary.New(day, procs), opts))
			if !opts.Plain {
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "day to report, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&titles, "titles", 3, "window titles listed per application")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors and the chart")
	cmd.Flags().IntVar(&width, "width", 80, "output width in columns")

	return cmd
}

// historyTotals returns per-process session counts for day, or nil when
// the history is disabled or has not been created yet.
func (app *App) historyTotals(ctx context.Context, day string) ([]store.ProcessTotal, error) {
	hs, err := app.openHistory()
	if err != nil || hs == nil {
		return nil, err
	}
	defer hs.Close()

	totals, err := hs.ProcessTotals(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return totals, nil
}

// openHistory opens an existing history database. It returns nil without
// error when history is disabled or the database does not exist.
func (app *App) openHistory() (*store.Store, error) {
	if !app.cfg.History {
		return nil, nil
	}
	path := store.DBPath(app.cfg.DataDir)
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	hs, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return hs, nil
}
