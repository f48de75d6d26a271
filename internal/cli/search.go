package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/learnlog/internal/store"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Limit int
	Tag   string
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Full-text search over concepts",
		Long: `Search concept names, explanations, code and tags.

Every word must appear (as a substring, ignoring case). Results are ranked
by relevance, newest first on ties. With --tag, lists concepts carrying
that tag instead. With neither, lists the most recent concepts.

Example:
  learnlog search goroutine leak
  learnlog search --tag python --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv(e)

			var found []store.Concept
			text := strings.Join(args, " ")
			switch {
			case strings.TrimSpace(text) != "":
				found, err = e.engine().Search(cmd.Context(), text, opts.Limit)
			case opts.Tag != "":
				found, err = e.engine().ConceptsByTag(cmd.Context(), opts.Tag, opts.Limit)
			default:
				found, err = e.engine().RecentConcepts(cmd.Context(), opts.Limit)
			}
			if err != nil {
				return err
			}
			return e.out.Success(conceptsView(found))
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum results")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "list concepts with this tag")

	return cmd
}
