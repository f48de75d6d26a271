package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/learnlog/internal/query"
)

// NewSessionCommand creates the session command.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session [id]",
		Short: "Summarize a session (default: the most recent)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := rootOpts.openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv(e)

			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			r, err := e.engine().SessionSummary(cmd.Context(), id)
			if err != nil {
				return err
			}
			return e.out.Success(sessionView(r))
		},
	}
}

type sessionView query.SessionReport

func (v sessionView) String() string {
	var sb strings.Builder
	s := v.Session
	fmt.Fprintf(&sb, "Session %s\n", s.ID)
	fmt.Fprintf(&sb, "Started: %s\n", s.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if s.EndedAt != nil {
		fmt.Fprintf(&sb, "Ended:   %s\n", s.EndedAt.Local().Format("2006-01-02 15:04:05"))
	}
	if s.ProjectPath != "" {
		fmt.Fprintf(&sb, "Project: %s\n", s.ProjectPath)
	}
	if s.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", s.Summary)
	}
	fmt.Fprintf(&sb, "Activity: %d responses, %d code changes, %d commands, %d concepts\n",
		v.Responses, v.CodeChanges, v.Commands, len(v.Concepts))
	for _, c := range v.Concepts {
		fmt.Fprintf(&sb, "  - %s\n", c.Name)
	}
	return strings.TrimRight(sb.String(), "\n")
}
