package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/rpggio/clipstudio/internal/app"
	"github.com/rpggio/clipstudio/internal/config"
	"github.com/spf13/cobra"
)

// cliEnv carries what every command needs. open is replaced in tests.
type cliEnv struct {
	out    io.Writer
	errOut io.Writer
	open   func(cfgFile string, logger *slog.Logger) (*app.App, error)

	cfgFile string
	verbose bool
	asJSON  bool
	app     *app.App
}

func openApp(cfgFile string, logger *slog.Logger) (*app.App, error) {
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return app.New(cfg, logger)
}

func newRootCmd(env *cliEnv) *cobra.Command {
	root := &cobra.Command{
		Use:           "studioctl",
		Short:         "Manage clipstudio video dataset projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if env.app != nil {
				return nil
			}
			level := slog.LevelWarn
			if env.verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(env.errOut, &slog.HandlerOptions{Level: level}))
			a, err := env.open(env.cfgFile, logger)
			if err != nil {
				return err
			}
			env.app = a
			return nil
		},
	}

	root.PersistentFlags().StringVar(&env.cfgFile, "config", "", "config file (default: $CLIPSTUDIO_CONFIG_PATH)")
	root.PersistentFlags().BoolVarP(&env.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVar(&env.asJSON, "json", false, "print machine-readable output")

	root.AddCommand(
		newProjectsCmd(env),
		newClassCmd(env),
		newTagCmd(env),
		newFlipCmd(env),
		newActivityCmd(env),
	)
	return root
}

// close releases the app opened by the last command, if any.
func (e *cliEnv) close() {
	if e.app != nil {
		_ = e.app.Close()
		e.app = nil
	}
}

// print writes v as indented JSON when --json is set, otherwise calls text.
func (e *cliEnv) print(v any, text func(w io.Writer)) error {
	if e.asJSON {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(e.out)
	return nil
}
