package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"blogforge/internal/core"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// renderScore formats a score result: total, per-category breakdown with
// bars, and improvement suggestions.
func renderScore(result *core.ScoreResult) string {
	var b strings.Builder

	total := fmt.Sprintf("Total score: %d/100", result.TotalScore)
	if result.PassesThreshold {
		b.WriteString(passStyle.Render(total + " ✓"))
	} else {
		b.WriteString(failStyle.Render(total + " ✗"))
	}
	b.WriteString("\n\n")

	for _, category := range core.CategoryOrder {
		cs, ok := result.CategoryScores[category]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("  %-18s %s %2d/%2d\n", category, scoreBar(cs.Score, cs.Max), cs.Score, cs.Max))
		if fb := result.Feedback[category]; fb != "" {
			b.WriteString(labelStyle.Render("    "+fb) + "\n")
		}
	}

	if len(result.ImprovementSuggestions) > 0 {
		b.WriteString("\n" + titleStyle.Render("Suggested improvements") + "\n")
		for i, s := range result.ImprovementSuggestions {
			b.WriteString(suggestionStyle.Render(fmt.Sprintf("  %d. %s", i+1, s)) + "\n")
		}
	}

	b.WriteString("\n" + labelStyle.Render(fmt.Sprintf(
		"words: %d   flesch: %.1f   keyword density: %.2f%%   headings: %d",
		result.Metrics.WordCount, result.Metrics.FleschScore,
		result.Metrics.KeywordDensity, result.Metrics.HeadingCount)))

	return b.String()
}

// scoreBar renders a 10-slot bar proportional to score/max.
func scoreBar(score, max int) string {
	const slots = 10
	filled := 0
	if max > 0 {
		filled = score * slots / max
	}
	if filled < 0 {
		filled = 0
	}
	if filled > slots {
		filled = slots
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", slots-filled) + "]"
}

// renderOutcome formats the final result of a generation run.
func renderOutcome(outcome *core.IterationOutcome) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Generation complete") + "\n")
	b.WriteString(fmt.Sprintf("Iterations: %d   Best: %d/100 (iteration %d)\n\n",
		outcome.IterationCount, outcome.BestScore, outcome.BestIteration))

	for _, rec := range outcome.History {
		marker := "  "
		if rec.Iteration == outcome.BestIteration {
			marker = passStyle.Render("▶ ")
		}
		b.WriteString(fmt.Sprintf("%siteration %d: %d/100\n", marker, rec.Iteration, rec.Score.TotalScore))
	}

	b.WriteString("\n")
	b.WriteString(renderScore(&outcome.FinalScore))
	return b.String()
}

// renderPlan formats an article outline.
func renderPlan(plan *core.BlogPlan) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(plan.Title) + "\n")
	if plan.Intro != "" {
		b.WriteString(labelStyle.Render("Intro: "+plan.Intro) + "\n")
	}
	for i, section := range plan.Sections {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, section.Heading))
		if section.Description != "" {
			b.WriteString(labelStyle.Render("   "+section.Description) + "\n")
		}
	}
	return b.String()
}

// renderJob formats one batch job summary line.
func renderJob(job core.Job) string {
	switch job.Status {
	case core.JobCompleted:
		return fmt.Sprintf("%s %s (best %d/100 in %d iterations)",
			passStyle.Render("✓"), job.Topic, job.Outcome.BestScore, job.Outcome.IterationCount)
	case core.JobFailed:
		return fmt.Sprintf("%s %s: %s", failStyle.Render("✗"), job.Topic, job.Error)
	default:
		return fmt.Sprintf("- %s (%s)", job.Topic, job.Status)
	}
}
