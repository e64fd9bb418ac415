package scoring

import (
	"fmt"
	"strings"

	"blogforge/internal/core"
)

const scoreSchemaExample = `{
  "category_scores": {
    "readability": 20,
    "seo_optimization": 18,
    "content_quality": 16,
    "engagement": 12,
    "structure_format": 13
  },
  "feedback": {
    "readability": "Short sentences, but some paragraphs run long.",
    "seo_optimization": "Primary keyword appears in the title and first paragraph.",
    "content_quality": "Claims are specific and mostly supported.",
    "engagement": "Opening hook is strong; closing call to action is weak.",
    "structure_format": "Good heading hierarchy, lists used where appropriate."
  },
  "improvement_suggestions": [
    "Split the third paragraph into two.",
    "Add the primary keyword to at least one H2 heading.",
    "Shorten the introduction to three sentences.",
    "Add a concrete example to the second section.",
    "End with a clear call to action."
  ]
}`

// fullScorePrompt is used on attempts 1 and 2. It carries the complete
// rubric plus the rule-based metrics computed from the draft.
func fullScorePrompt(content, topic string, keywords []string, metrics core.ContentMetrics) string {
	var b strings.Builder

	b.WriteString("You are an exacting blog content evaluator. Score the blog post below against five categories:\n\n")
	b.WriteString(fmt.Sprintf("- readability (0-%d): sentence length, clarity, flow, jargon level\n", core.CategoryMax[core.CategoryReadability]))
	b.WriteString(fmt.Sprintf("- seo_optimization (0-%d): keyword usage, title quality, heading keywords, meta-friendliness\n", core.CategoryMax[core.CategorySEO]))
	b.WriteString(fmt.Sprintf("- content_quality (0-%d): accuracy, depth, originality, supported claims\n", core.CategoryMax[core.CategoryContentQuality]))
	b.WriteString(fmt.Sprintf("- engagement (0-%d): hook, narrative pull, calls to action\n", core.CategoryMax[core.CategoryEngagement]))
	b.WriteString(fmt.Sprintf("- structure_format (0-%d): heading hierarchy, paragraph sizing, lists, scannability\n", core.CategoryMax[core.CategoryStructureFormat]))

	b.WriteString("\nTopic: " + topic + "\n")
	if len(keywords) > 0 {
		b.WriteString("Target keywords: " + strings.Join(keywords, ", ") + "\n")
	}

	b.WriteString("\nMeasured statistics (use these, do not re-estimate them):\n")
	b.WriteString(fmt.Sprintf("- Word count: %d\n", metrics.WordCount))
	b.WriteString(fmt.Sprintf("- Flesch reading ease: %.1f\n", metrics.FleschScore))
	b.WriteString(fmt.Sprintf("- Keyword density: %.2f%%\n", metrics.KeywordDensity))
	b.WriteString(fmt.Sprintf("- Headings: %d\n", metrics.HeadingCount))

	b.WriteString("\nBlog post:\n---\n")
	b.WriteString(content)
	b.WriteString("\n---\n\n")

	b.WriteString("Respond with ONLY a JSON object in exactly this shape: integer scores, all five categories present in both category_scores and feedback, and exactly five improvement_suggestions ordered most impactful first:\n")
	b.WriteString(scoreSchemaExample)
	b.WriteString("\n")

	return b.String()
}

// truncatedScorePrompt is used on attempts 3 and 4, after the model has
// twice failed to return parseable JSON. The rubric is compressed and the
// draft is clipped so the model has less room to ramble.
func truncatedScorePrompt(content, topic string) string {
	const maxContent = 4000
	if len(content) > maxContent {
		content = content[:maxContent] + "\n[truncated]"
	}

	var b strings.Builder
	b.WriteString("Score this blog post about \"" + topic + "\".\n")
	b.WriteString("Categories and maximums: readability 25, seo_optimization 25, content_quality 20, engagement 15, structure_format 15.\n\n")
	b.WriteString(content)
	b.WriteString("\n\nReturn ONLY JSON: {\"category_scores\": {<category>: <integer>, ...all five}, \"feedback\": {<category>: <string>, ...all five}, \"improvement_suggestions\": [<string>, ...]}\n")
	return b.String()
}

// minimalScorePrompt is the last resort on attempt 5.
func minimalScorePrompt(content string) string {
	const maxContent = 2000
	if len(content) > maxContent {
		content = content[:maxContent]
	}
	return "Rate this text. Reply with ONLY this JSON, integers only:\n" +
		`{"category_scores": {"readability": 0, "seo_optimization": 0, "content_quality": 0, "engagement": 0, "structure_format": 0}, "feedback": {"readability": "", "seo_optimization": "", "content_quality": "", "engagement": "", "structure_format": ""}, "improvement_suggestions": []}` +
		"\n\nText:\n" + content + "\n"
}
