package handlers

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"blogforge/internal/core"
	"blogforge/internal/jobs"
	"blogforge/internal/logger"
)

// NewWorkCmd creates the work command, which runs a batch of topics through
// the pipeline on a worker pool.
func NewWorkCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "work <topics-file>",
		Short: "Generate posts for a batch of topics from a file",
		Long: `Run the full pipeline for every topic in a file, one topic per line.
A line may carry keywords after a pipe: "topic | keyword1, keyword2".
Blank lines and lines starting with # are skipped.

Workers share one LLM throttle, so more workers does not mean more
requests per second; it means research and scoring for one topic can
overlap the drafting of another.

Examples:
  blogforge work topics.txt
  blogforge work topics.txt --workers 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWork(cmd, args[0], workers)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count (default from config)")

	return cmd
}

type batchTopic struct {
	topic    string
	keywords []string
}

func runWork(cmd *cobra.Command, file string, workers int) error {
	topics, err := readTopicsFile(file)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return fmt.Errorf("no topics found in %s", file)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	if workers < 1 {
		workers = a.cfg.Jobs.Workers
	}

	queue := jobs.NewQueue(len(topics))
	pool := jobs.NewPool(queue, workers, func(ctx context.Context, topic string, keywords []string) (*core.IterationOutcome, error) {
		outcome, err := a.generateOnce(ctx, topic, "", keywords, true)
		if err != nil {
			return nil, err
		}
		if path, err := a.saveDraft(topic, outcome); err != nil {
			logger.Error("failed to save draft", err, "topic", topic)
		} else {
			logger.Info("draft saved", "topic", topic, "path", path)
		}
		return outcome, nil
	})

	ids := make([]string, 0, len(topics))
	for _, t := range topics {
		id, err := queue.Enqueue(t.topic, t.keywords)
		if err != nil {
			return fmt.Errorf("failed to enqueue %q: %w", t.topic, err)
		}
		ids = append(ids, id)
	}

	pool.Start(ctx)
	queue.Close()
	pool.Wait()

	failed := 0
	for _, id := range ids {
		job, _ := queue.Get(id)
		fmt.Println(renderJob(job))
		if job.Status == core.JobFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d topics failed", failed, len(ids))
	}
	return nil
}

// readTopicsFile parses one topic per line, with optional keywords after a
// pipe character.
func readTopicsFile(file string) ([]batchTopic, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open topics file %s: %w", file, err)
	}
	defer f.Close()

	var topics []batchTopic
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		topic := line
		var keywords []string
		if idx := strings.Index(line, "|"); idx >= 0 {
			topic = strings.TrimSpace(line[:idx])
			for _, k := range strings.Split(line[idx+1:], ",") {
				if k = strings.TrimSpace(k); k != "" {
					keywords = append(keywords, k)
				}
			}
		}
		if topic == "" {
			continue
		}
		topics = append(topics, batchTopic{topic: topic, keywords: keywords})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read topics file %s: %w", file, err)
	}
	return topics, nil
}
