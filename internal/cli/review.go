package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/learnlog/internal/store"
)

// ReviewOptions holds flags for the review command.
type ReviewOptions struct {
	*RootOptions
	Staleness time.Duration
	Limit     int
}

// NewReviewCommand creates the review command.
func NewReviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "review",
		Short: "List concepts due for review",
		Long: `List concepts never reviewed or not reviewed within the staleness
window (review.staleness, default 72h). Never-reviewed concepts come first,
then the longest unreviewed. This is a fixed threshold, not a
spaced-repetition schedule.

Example:
  learnlog review
  learnlog review --staleness 168h --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv(e)

			staleness := time.Duration(e.cfg.Review.Staleness)
			if cmd.Flags().Changed("staleness") {
				staleness = opts.Staleness
			}
			limit := e.cfg.Review.Limit
			if cmd.Flags().Changed("limit") {
				limit = opts.Limit
			}

			due, err := e.engine().DueForReview(cmd.Context(), staleness, limit)
			if err != nil {
				return err
			}
			return e.out.Success(conceptsView(due))
		},
	}

	cmd.Flags().DurationVar(&opts.Staleness, "staleness", 72*time.Hour, "how long a review stays fresh")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum results")

	return cmd
}

// NewMarkReviewedCommand creates the mark-reviewed command.
func NewMarkReviewedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-reviewed <id|name>",
		Short: "Record a review of a concept",
		Long: `Increment a concept's review count and stamp the review time.

A numeric argument is a concept id; anything else is a name, and the most
recently logged concept with that name is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := rootOpts.openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv(e)

			var c store.Concept
			if id, convErr := strconv.ParseInt(args[0], 10, 64); convErr == nil {
				c, err = e.learningLog().MarkReviewed(cmd.Context(), id)
			} else {
				c, err = e.learningLog().MarkReviewedByName(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return e.out.Success(conceptView(c))
		},
	}
}
