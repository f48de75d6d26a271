package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/learnlog/internal/config"
	"github.com/roach88/learnlog/internal/learning"
	"github.com/roach88/learnlog/internal/query"
	"github.com/roach88/learnlog/internal/store"
)

// env is what a command needs: resolved config, a logger and an open
// store. Close releases all of it.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
	out    *OutputFormatter

	closers []func() error
}

// loadConfig resolves configuration and applies the --db flag.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.Config)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.Database.Path = o.Database
	}
	return cfg, nil
}

// newLogger builds the process logger: Debug under -v, the configured level
// otherwise, written to log.file when set and stderr when not.
func (o *RootOptions) newLogger(cfg config.Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	level := cfg.LogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}

	w := stderr
	closer := func() error { return nil }
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		w, closer = f, f.Close
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}

// openEnv loads config, sets up logging and opens the store, creating its
// directory if needed.
func (o *RootOptions) openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := o.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:     cfg,
		logger:  logger,
		closers: []func() error{closeLog},
		out: &OutputFormatter{
			Format:    o.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   o.Verbose,
		},
	}

	if path, err := configPath(o); err == nil {
		e.out.VerboseLog("config: %s", path)
	}
	e.out.VerboseLog("database: %s", cfg.Database.Path)

	if err := cfg.EnsureDir(); err != nil {
		_ = e.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	logger.Debug("opening database", "path", cfg.Database.Path, "driver", cfg.Database.Driver)
	st, err := store.Open(cfg.Database.Path, append(cfg.StoreOptions(), store.WithLogger(logger))...)
	if err != nil {
		_ = e.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	e.store = st
	e.closers = append(e.closers, st.Close)
	return e, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// closeEnv closes e and logs any failure; used in defers.
func closeEnv(e *env) {
	if err := e.Close(); err != nil {
		e.logger.Error("error closing database", "error", err)
	}
}

func (e *env) learningLog() *learning.Log {
	return learning.New(e.store, learning.WithSource(store.SourceCLI), learning.WithLogger(e.logger))
}

func (e *env) engine() *query.Engine {
	return query.New(e.store, query.WithLogger(e.logger))
}
