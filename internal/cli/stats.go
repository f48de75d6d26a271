package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/learnlog/internal/criteria"
	"github.com/roach88/learnlog/internal/query"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show counts per record kind and review progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := rootOpts.openEnv(cmd)
			if err != nil {
				return err
			}
			defer closeEnv(e)

			st, err := e.engine().Stats(cmd.Context())
			if err != nil {
				return err
			}
			return e.out.Success(statsView(st))
		},
	}
}

type statsView query.Stats

func (v statsView) String() string {
	st := query.Stats(v)
	var sb strings.Builder
	for _, ts := range st.Tables {
		latest := "-"
		if ts.Latest != nil {
			latest = ts.Latest.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&sb, "%-13s %6d  latest %s\n", ts.Table+":", ts.Count, latest)
	}

	concepts := st.Count(criteria.Concepts)
	pct := 0.0
	if concepts > 0 {
		pct = float64(st.ReviewedConcepts) / float64(concepts) * 100
	}
	fmt.Fprintf(&sb, "\nReviewed: %d/%d (%.0f%%), %d pending\n", st.ReviewedConcepts, concepts, pct, st.PendingConcepts)

	if len(st.TopTags) > 0 {
		tags := make([]string, 0, len(st.TopTags))
		for _, tc := range st.TopTags {
			tags = append(tags, fmt.Sprintf("%s (%d)", tc.Tag, tc.Count))
		}
		fmt.Fprintf(&sb, "Top tags: %s\n", strings.Join(tags, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}
