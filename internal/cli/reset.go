package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/learnlog/internal/config"
	"github.com/roach88/learnlog/internal/store"
)

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record and start with an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "reset deletes all learnings; pass --yes to confirm")
			}
			e, err := rootOpts.openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv(e)

			if err := e.store.RemoveAll(cmd.Context()); err != nil {
				return err
			}
			// Recreate the schema so the file is usable right away.
			fresh, err := store.Open(e.cfg.Database.Path, append(e.cfg.StoreOptions(), store.WithLogger(e.logger))...)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to recreate database", err)
			}
			if err := fresh.Close(); err != nil {
				return err
			}
			return e.out.Success(fmt.Sprintf("Cleared %s", e.cfg.Database.Path))
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

// NewUninstallCommand creates the uninstall command.
func NewUninstallCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the database files and the config file",
		Long: `Remove the database (with its -wal and -shm files) and, when it exists,
the config file. Editor hook and MCP registrations are not touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "uninstall deletes all learnings; pass --yes to confirm")
			}
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			if err := store.Remove(cfg.Database.Path); err != nil {
				return WrapExitError(ExitFailure, "failed to remove database", err)
			}
			removed := []string{cfg.Database.Path}

			if path, err := configPath(rootOpts); err == nil {
				switch err := os.Remove(path); {
				case err == nil:
					removed = append(removed, path)
				case !errors.Is(err, fs.ErrNotExist):
					return WrapExitError(ExitFailure, "failed to remove config", err)
				}
			}
			return out.Success(removedView(removed))
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

// configPath is the config file uninstall removes.
func configPath(opts *RootOptions) (string, error) {
	if opts.Config != "" {
		return opts.Config, nil
	}
	if p := os.Getenv(config.EnvConfig); p != "" {
		return p, nil
	}
	home, err := config.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

type removedView []string

func (v removedView) String() string {
	s := "Removed:"
	for _, p := range v {
		s += "\n  " + p
	}
	return s
}
