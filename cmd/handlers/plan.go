package handlers

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPlanCmd creates the plan command, which runs research and outlining
// only. Useful for reviewing the structure before spending the generation
// budget.
func NewPlanCmd() *cobra.Command {
	var (
		keywords   []string
		noResearch bool
	)

	cmd := &cobra.Command{
		Use:   "plan <topic>",
		Short: "Create an article outline without drafting",
		Long: `Plan an article outline for a topic. Research is gathered first and
summarized into the planning prompt unless --no-research is set.

Examples:
  blogforge plan "Connection pooling in Go"
  blogforge plan "Caching strategies" --keywords "cache,ttl" --no-research`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args[0], keywords, noResearch)
		},
	}

	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "Target SEO keywords (comma separated)")
	cmd.Flags().BoolVar(&noResearch, "no-research", false, "Skip the research phase")

	return cmd
}

func runPlan(cmd *cobra.Command, topic string, keywords []string, noResearch bool) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	var summary string
	if !noResearch {
		_, summary = a.gatherContext(ctx, topic, keywords)
	}

	plan, err := a.planner.CreatePlan(ctx, topic, keywords, summary)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	fmt.Println(renderPlan(plan))
	return nil
}
