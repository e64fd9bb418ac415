package writer

import (
	"fmt"
	"strings"

	"blogforge/internal/core"
)

// draftPrompt assembles the first-draft prompt: style guidance, the planned
// outline, and retrieved context passages.
func draftPrompt(topic, style string, plan *core.BlogPlan, chunks []core.ContextChunk) string {
	var b strings.Builder

	b.WriteString("You are an experienced blog writer. Write a complete, publication-ready blog post in markdown.\n\n")
	b.WriteString("Topic: " + topic + "\n")
	if style != "" {
		b.WriteString("Style: " + style + "\n")
	}

	if plan != nil {
		b.WriteString("\nFollow this outline:\n")
		b.WriteString("# " + plan.Title + "\n")
		if plan.Intro != "" {
			b.WriteString("Introduction: " + plan.Intro + "\n")
		}
		for i, section := range plan.Sections {
			b.WriteString(fmt.Sprintf("%d. %s", i+1, section.Heading))
			if section.Description != "" {
				b.WriteString(" — " + section.Description)
			}
			b.WriteString("\n")
		}
	}

	if ctxBlock := formatContext(chunks); ctxBlock != "" {
		b.WriteString("\nUse the following research where relevant. Do not copy it verbatim:\n")
		b.WriteString(ctxBlock)
	}

	b.WriteString("\nRequirements:\n")
	b.WriteString("- Markdown with a single H1 title and H2 section headings\n")
	b.WriteString("- An engaging introduction and a concrete conclusion\n")
	b.WriteString("- Short paragraphs, concrete examples, no filler\n")
	b.WriteString("- Output ONLY the blog post, no commentary before or after\n")

	return b.String()
}

// rewritePrompt assembles the revision prompt from the previous draft and the
// evaluator's verdict. Feedback comes first so the model reads the criticism
// before the text it applies to.
func rewritePrompt(original, topic string, score *core.ScoreResult, chunks []core.ContextChunk, keywords []string, iteration int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("You are revising a blog post about \"%s\" (revision pass %d).\n", topic, iteration))
	b.WriteString(fmt.Sprintf("The current draft scored %d/100. Improve it using the feedback below while keeping what already works.\n\n", score.TotalScore))

	if len(keywords) > 0 {
		b.WriteString("Target keywords to preserve: " + strings.Join(keywords, ", ") + "\n\n")
	}

	b.WriteString(formatFeedback(score))

	if ctxBlock := formatContext(chunks); ctxBlock != "" {
		b.WriteString("\nResearch available to you:\n")
		b.WriteString(ctxBlock)
	}

	b.WriteString("\nCurrent draft:\n---\n")
	b.WriteString(original)
	b.WriteString("\n---\n\n")
	b.WriteString("Output ONLY the full revised blog post in markdown, no commentary.\n")

	return b.String()
}

// formatFeedback renders per-category scores and feedback in rubric order,
// followed by the numbered improvement suggestions.
func formatFeedback(score *core.ScoreResult) string {
	var b strings.Builder

	b.WriteString("Evaluator feedback by category:\n")
	for _, category := range core.CategoryOrder {
		cs, ok := score.CategoryScores[category]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("- %s (%d/%d)", category, cs.Score, cs.Max))
		if fb := score.Feedback[category]; fb != "" {
			b.WriteString(": " + fb)
		}
		b.WriteString("\n")
	}

	if len(score.ImprovementSuggestions) > 0 {
		b.WriteString("\nPriority improvements:\n")
		for i, suggestion := range score.ImprovementSuggestions {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, suggestion))
		}
	}

	return b.String()
}

// formatContext renders retrieved passages with their sources. Returns the
// empty string when there is nothing to include.
func formatContext(chunks []core.ContextChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var b strings.Builder
	for i, chunk := range chunks {
		b.WriteString(fmt.Sprintf("[Source %d: %s]\n", i+1, chunk.SourceTitle))
		b.WriteString(strings.TrimSpace(chunk.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}
