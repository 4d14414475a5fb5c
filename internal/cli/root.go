// Package cli implements the wintrackr command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sadopc/wintrackr/internal/config"
	"github.com/sadopc/wintrackr/internal/sampler"
	"github.com/sadopc/wintrackr/internal/summary"
)

// App carries the dependencies shared by all commands. Zero fields fall
// back to the real system.
type App struct {
	Now        func() time.Time
	NewSampler func(config.SamplerConfig) (sampler.Sampler, error)
	IsTerminal func(w io.Writer) bool

	configPath string
	cfg        config.Config
	logger     *slog.Logger
}

// NewRootCmd creates the top-level "wintrackr" command and registers all
// subcommands against app.
func NewRootCmd(app *App) *cobra.Command {
	if app.Now == nil {
		app.Now = time.Now
	}
	if app.NewSampler == nil {
		app.NewSampler = newSampler
	}
	if app.IsTerminal == nil {
		app.IsTerminal = isTerminal
	}

	root := &cobra.Command{
		Use:           "wintrackr",
		Short:         "Foreground window activity tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/wintrackr/config.yaml)")

	root.AddCommand(
		newRunCmd(app),
		newReportCmd(app),
		newExportCmd(app),
		newNormalizeCmd(app),
	)

	return root
}

func (app *App) setup(stderr io.Writer) error {
	if app.configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("finding config directory: %w", err)
		}
		app.configPath = path
	}

	cfg, err := config.Load(app.configPath)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	app.cfg = cfg
	app.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

func (app *App) today() string {
	return app.Now().Format(summary.DayLayout)
}

func newSampler(cfg config.SamplerConfig) (sampler.Sampler, error) {
	switch cfg.Kind {
	case config.SamplerX11:
		return sampler.NewX11(), nil
	case config.SamplerCommand:
		return sampler.NewCommand(cfg.Command), nil
	default:
		return nil, fmt.Errorf("unknown sampler %q", cfg.Kind)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// validDay rejects --day values that are not YYYY-MM-DD.
func validDay(day string) error {
	if _, err := time.Parse(summary.DayLayout, day); err != nil {
		return fmt.Errorf("invalid day %q: want YYYY-MM-DD", day)
	}
	return nil
}
