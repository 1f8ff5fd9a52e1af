package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/chansync"
	"pkt.systems/chansync/internal/appconfig"
	"pkt.systems/chansync/internal/eventbus"
	"pkt.systems/chansync/internal/termui"
	"pkt.systems/chansync/schema"
	"pkt.systems/pslog"
)

const stopTimeout = 2 * time.Second

func newViewCmd() *cobra.Command {
	var cfgPath string
	var logFile string
	var window string
	cmd := &cobra.Command{
		Use:   "view [channel=path ...]",
		Short: "Open the terminal viewer",
		Long: "Open the terminal viewer on the configured windows. Extra sources are given as\n" +
			"channel=path pairs; a path of - reads the channel from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			extra, err := parseSourceArgs(args)
			if err != nil {
				return err
			}
			cfg.Sources = append(cfg.Sources, extra...)
			if window != "" {
				cfg.UI.Window = window
			}
			if logFile != "" {
				cfg.Logging.File = logFile
			}
			if err := appconfig.Validate(cfg); err != nil {
				return err
			}

			logger, closeLog, err := openLogFile(cfg.Logging.File)
			if err != nil {
				return err
			}
			defer closeLog()
			ctx := pslog.ContextWithLogger(cmd.Context(), logger)

			sessCfg, err := chansync.SessionConfigFromApp(cfg, cmd.InOrStdin())
			if err != nil {
				return err
			}
			sess, err := chansync.NewSession(sessCfg, chansync.SessionDeps{Logger: logger})
			if err != nil {
				return err
			}
			if err := sess.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
				defer cancel()
				if err := sess.Stop(stopCtx); err != nil {
					logger.Warn("session stop incomplete", "err", err)
				}
			}()
			events, unsubscribe := sess.Subscribe(eventbus.AllWindows)
			defer unsubscribe()

			return termui.Run(ctx, termui.Options{
				Surface:  sess.Core(),
				Commands: sess.Commands(),
				Batches:  sess.Batches(),
				Events:   events,
				Window:   schema.WindowName(cfg.UI.Window),
				Tick:     time.Duration(cfg.UI.TickMS) * time.Millisecond,
				Logger:   logger,
				InputTTY: readsStdin(cfg.Sources),
			})
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config path (default ~/.chansync/config.yaml)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of the configured one")
	cmd.Flags().StringVarP(&window, "window", "w", "", "window to show first")
	return cmd
}

// parseSourceArgs turns channel=path arguments into sources.
func parseSourceArgs(args []string) ([]appconfig.SourceConfig, error) {
	out := make([]appconfig.SourceConfig, 0, len(args))
	for _, arg := range args {
		channel, path, ok := strings.Cut(arg, "=")
		channel = strings.TrimSpace(channel)
		if !ok || channel == "" || path == "" {
			return nil, fmt.Errorf("source %q: expected channel=path", arg)
		}
		src := appconfig.SourceConfig{Channel: channel}
		if path == "-" {
			src.Stdin = true
		} else {
			src.Path = path
		}
		out = append(out, src)
	}
	return out, nil
}

func readsStdin(sources []appconfig.SourceConfig) bool {
	for _, src := range sources {
		if src.Stdin {
			return true
		}
	}
	return false
}

// openLogFile builds the viewer logger. The terminal belongs to the viewer, so
// logs go to a file, or nowhere when path is empty.
func openLogFile(path string) (pslog.Logger, func(), error) {
	if path == "" {
		return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true}), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(f),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, NoColor: true}),
	)
	return logger, func() { _ = f.Close() }, nil
}
