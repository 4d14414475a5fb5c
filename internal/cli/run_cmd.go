package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/wintrackr/internal/agent"
	"github.com/sadopc/wintrackr/internal/config"
	"github.com/sadopc/wintrackr/internal/dailylog"
	"github.com/sadopc/wintrackr/internal/recorder"
	"github.com/sadopc/wintrackr/internal/store"
)

func newRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Track the foreground window until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.runTracker(ctx)
		},
	}
}

func (app *App) runTracker(ctx context.Context) error {
	cfg := app.cfg

	for _, dir := range []string{cfg.LogDir(), cfg.SummaryDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	opts := recorder.Options{
		Log:        dailylog.New(cfg.LogDir()),
		SummaryDir: cfg.SummaryDir(),
		Now:        app.Now,
		Logger:     app.logger,
	}
	if cfg.History {
		hs, err := store.New(store.DBPath(cfg.DataDir))
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer hs.Close()
		opts.History = hs
	}

	smp, err := app.NewSampler(cfg.Sampler)
	if err != nil {
		return err
	}

	a := agent.New(agent.Options{
		Sampler:         smp,
		Rules:           cfg.Rules,
		Recorder:        recorder.New(opts),
		SampleInterval:  cfg.SampleInterval,
		SummaryInterval: cfg.SummaryInterval,
		SampleTimeout:   cfg.SampleTimeout,
		Now:             app.Now,
		Logger:          app.logger,
	})

	if w := app.watchRules(a); w != nil {
		defer w.Stop()
	}

	app.logger.Info("data_dir", "path", cfg.DataDir, "history", cfg.History, "sampler", cfg.Sampler.Kind)
	return a.Run(ctx)
}

// watchRules reloads normalization rules into a when the config file
// changes. A missing config directory disables reloading.
func (app *App) watchRules(a *agent.Agent) *config.Watcher {
	w, err := config.NewWatcher(app.configPath, app.logger)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			app.logger.Warn("config_watch_disabled", "error", err.Error())
		}
		return nil
	}
	w.OnChange(func(cfg config.Config) { a.SetRules(cfg.Rules) })
	w.Start()
	return w
}
