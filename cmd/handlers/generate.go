package handlers

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command, the end-to-end pipeline for a
// single topic.
func NewGenerateCmd() *cobra.Command {
	var (
		keywords   []string
		style      string
		noResearch bool
	)

	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Research, draft, score, and iteratively improve a blog post",
		Long: `Generate a blog post for a topic.

The pipeline gathers research for the topic, plans an outline, writes a
draft, scores it against a 100-point rubric, and rewrites it until the
score clears generation.min_score_threshold or generation.max_iterations
is spent. The best-scoring draft is kept even when a later rewrite
regresses.

Examples:
  # Generate with research and default settings
  blogforge generate "Connection pooling in Go"

  # Target specific SEO keywords
  blogforge generate "Connection pooling in Go" --keywords "connection pool,database"

  # Skip the research phase
  blogforge generate "Connection pooling in Go" --no-research`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], keywords, style, noResearch)
		},
	}

	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "Target SEO keywords (comma separated)")
	cmd.Flags().StringVar(&style, "style", "", "Writing style hint (default from config)")
	cmd.Flags().BoolVar(&noResearch, "no-research", false, "Skip the research phase")

	return cmd
}

func runGenerate(cmd *cobra.Command, topic string, keywords []string, style string, noResearch bool) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	outcome, err := a.generateOnce(ctx, topic, style, keywords, !noResearch)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	path, err := a.saveDraft(topic, outcome)
	if err != nil {
		return err
	}

	fmt.Println(renderOutcome(outcome))
	fmt.Printf("Draft saved to %s\n", path)
	return nil
}
