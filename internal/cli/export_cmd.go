package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/wintrackr/internal/dailylog"
	"github.com/sadopc/wintrackr/internal/export"
	"github.com/sadopc/wintrackr/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		day    string
		id     string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a day's sessions, or one session by ID, as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if day == "" {
				day = app.today()
			}
			if err := validDay(day); err != nil {
				return err
			}
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q: want csv or json", format)
			}

			hs, err := app.openHistory()
			if err != nil {
				return err
			}
			if hs != nil {
				defer hs.Close()
			}

			var records []store.SessionRecord
			if id != "" {
				records, err = export.Session(cmd.Context(), hs, id)
				if err != nil {
					return fmt.Errorf("looking up session: %w", err)
				}
				day = records[0].Day
			} else {
				records, err = export.Sessions(cmd.Context(), hs, dailylog.New(app.cfg.LogDir()), day)
				if err != nil {
					return fmt.Errorf("reading sessions for %s: %w", day, err)
				}
			}

			if out != "" {
				if format == "json" {
					err = export.ToJSON(records, out)
				} else {
					err = export.ToCSV(records, out)
				}
				if err != nil {
					return err
				}
				app.logger.Info("exported", "day", day, "sessions", len(records), "path", out)
				return nil
			}

			if format == "json" {
				return export.WriteJSON(cmd.OutOrStdout(), records, app.Now())
			}
			return export.WriteCSV(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "day to export, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&id, "id", "", "export only the session with this ID (requires history)")
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}
