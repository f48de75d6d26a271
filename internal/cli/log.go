package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/learnlog/internal/learning"
)

// LogOptions holds flags shared by the log subcommands.
type LogOptions struct {
	*RootOptions
	Tags        string
	CodeExample string
	Session     string
	Severity    string
	Concept     string
}

// NewLogCommand creates the log command and its concept, pattern and
// gotcha subcommands.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a concept, pattern or gotcha by hand",
	}
	cmd.AddCommand(newLogConceptCommand(&LogOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newLogPatternCommand(&LogOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newLogGotchaCommand(&LogOptions{RootOptions: rootOpts}))
	return cmd
}

func newLogConceptCommand(opts *LogOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "concept <name> <explanation>",
		Short:   "Log a concept",
		Example: `  learnlog log concept "defer" "runs when the function returns" --tags go,control-flow`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv(e)

			id, err := e.learningLog().LogConceptInSession(cmd.Context(), opts.Session, args[0], args[1], opts.CodeExample, learning.ParseTags(opts.Tags))
			if err != nil {
				return err
			}
			return e.out.Success(loggedView{Kind: "concept", ID: id})
		},
	}
	cmd.Flags().StringVar(&opts.Tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&opts.CodeExample, "code", "", "code example")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session the concept belongs to")
	return cmd
}

func newLogPatternCommand(opts *LogOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pattern <name> <description>",
		Short: "Log a pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv(e)

			id, err := e.learningLog().LogPattern(cmd.Context(), args[0], args[1], learning.ParseTags(opts.Tags))
			if err != nil {
				return err
			}
			return e.out.Success(loggedView{Kind: "pattern", ID: id})
		},
	}
	cmd.Flags().StringVar(&opts.Tags, "tags", "", "comma-separated tags")
	return cmd
}

func newLogGotchaCommand(opts *LogOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gotcha <description>",
		Short:   "Log a gotcha",
		Example: `  learnlog log gotcha "writing to a nil map panics" --severity danger --concept maps`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv(e)

			res, err := e.learningLog().LogGotcha(cmd.Context(), args[0], learning.ParseTags(opts.Tags),
				learning.WithSeverity(opts.Severity),
				learning.WithCodeExample(opts.CodeExample),
				learning.WithConcept(opts.Concept))
			if err != nil {
				return err
			}
			if res.UnresolvedConcept != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: concept %q not found; gotcha stored without a link\n", res.UnresolvedConcept)
			}
			return e.out.Success(loggedView{Kind: "gotcha", ID: res.ID})
		},
	}
	cmd.Flags().StringVar(&opts.Tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&opts.CodeExample, "code", "", "code example")
	cmd.Flags().StringVar(&opts.Severity, "severity", "warning", "danger, warning or info")
	cmd.Flags().StringVar(&opts.Concept, "concept", "", "link to the latest concept with this name")
	return cmd
}

type loggedView struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

func (v loggedView) String() string {
	return fmt.Sprintf("logged %s %d", v.Kind, v.ID)
}
