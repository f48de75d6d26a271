package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/learnlog/internal/mcp"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdio",
		Long: `Serve the learning tools over the Model Context Protocol (JSON-RPC 2.0,
one message per line on stdin/stdout). Configure the editor to launch
"learnlog serve". Logs go to stderr or log.file, never stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}
}

func runServe(opts *RootOptions, cmd *cobra.Command) error {
	e, err := opts.openEnv(cmd)
	if err != nil {
		return err
	}
	defer closeEnv(e)

	srv := mcp.NewServer(e.learningLog(), e.engine(),
		mcp.WithLogger(e.logger),
		mcp.WithVersion(Version),
		mcp.WithDefaults(mcp.Defaults{
			Staleness:   time.Duration(e.cfg.Review.Staleness),
			ReviewLimit: e.cfg.Review.Limit,
			ExportDays:  e.cfg.Export.Days,
			MaxPerKind:  e.cfg.Export.MaxPerKind,
		}),
	)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.logger.Info("mcp server starting", "db", e.cfg.Database.Path)
	err = srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "server error", err)
	}
	e.logger.Info("mcp server stopped")
	return nil
}
