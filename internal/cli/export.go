package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/learnlog/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Days       int
	Output     string
	MaxPerKind int
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recent learnings as markdown",
		Long: `Write a markdown review of the concepts, patterns and gotchas logged in
the last N days. Output to a terminal is rendered; files and pipes get
plain markdown. With --format json the raw bundle is printed instead.

Example:
  learnlog export --days 14 -o review.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 7, "window in days")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write markdown to this file")
	cmd.Flags().IntVar(&opts.MaxPerKind, "max", 50, "maximum records listed per kind")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	e, err := opts.openEnv(cmd)
	if err != nil {
		return err
	}
	defer closeEnv(e)

	days := e.cfg.Export.Days
	if cmd.Flags().Changed("days") {
		days = opts.Days
	}
	fmtOpts := export.Options{MaxPerKind: e.cfg.Export.MaxPerKind}
	if cmd.Flags().Changed("max") {
		fmtOpts.MaxPerKind = opts.MaxPerKind
	}

	b, err := e.engine().ExportRange(cmd.Context(), days)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create output file", err)
		}
		if err := export.Markdown(f, b, fmtOpts); err != nil {
			f.Close()
			return fmt.Errorf("write export: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		return e.out.Success(fmt.Sprintf("Exported to %s", opts.Output))
	}

	if opts.Format == "json" {
		return e.out.Success(b)
	}
	return export.Write(cmd.OutOrStdout(), b, fmtOpts)
}
