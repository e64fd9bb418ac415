package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewScoreCmd creates the score command, which evaluates an existing
// markdown file without generating anything.
func NewScoreCmd() *cobra.Command {
	var (
		topic    string
		keywords []string
	)

	cmd := &cobra.Command{
		Use:   "score <file>",
		Short: "Score an existing markdown draft against the rubric",
		Long: `Score a markdown file against the five-category rubric (readability,
seo_optimization, content_quality, engagement, structure_format).

Examples:
  blogforge score drafts/my-post.md --topic "Connection pooling in Go"
  blogforge score drafts/my-post.md --topic "Caching" --keywords "cache,ttl"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, args[0], topic, keywords)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Topic the draft is about (required)")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "Target SEO keywords (comma separated)")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func runScore(cmd *cobra.Command, file, topic string, keywords []string) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	result, err := a.scorer.Score(ctx, string(content), topic, keywords)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	fmt.Println(renderScore(result))
	return nil
}
