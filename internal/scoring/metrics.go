package scoring

import (
	"regexp"
	"strings"

	"blogforge/internal/core"
)

// Rule-based metrics computed deterministically from the draft, with no LLM
// involvement. They are embedded in the scoring prompt as supporting data.

var (
	markdownCharsRe = regexp.MustCompile("[#*`\\[\\]()]")
	headingRe       = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	sentenceEndRe   = regexp.MustCompile(`[.!?]+`)
)

// ComputeMetrics calculates all rule-based metrics for a draft.
func ComputeMetrics(content string, keywords []string) core.ContentMetrics {
	headings := ExtractHeadings(content)
	return core.ContentMetrics{
		WordCount:      CountWords(content),
		FleschScore:    FleschReadingEase(content),
		KeywordDensity: KeywordDensity(content, keywords),
		HeadingCount:   len(headings),
		Headings:       headings,
	}
}

// CountWords counts words after stripping markdown formatting characters.
func CountWords(text string) int {
	clean := markdownCharsRe.ReplaceAllString(text, "")
	return len(strings.Fields(clean))
}

// ExtractHeadings returns all markdown heading texts in document order.
func ExtractHeadings(markdown string) []string {
	matches := headingRe.FindAllStringSubmatch(markdown, -1)
	headings := make([]string, 0, len(matches))
	for _, m := range matches {
		headings = append(headings, strings.TrimSpace(m[1]))
	}
	return headings
}

// KeywordDensity returns keyword occurrences as a percentage of total words.
func KeywordDensity(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0.0
	}

	clean := strings.ToLower(markdownCharsRe.ReplaceAllString(text, ""))
	totalWords := len(strings.Fields(clean))
	if totalWords == 0 {
		return 0.0
	}

	count := 0
	for _, keyword := range keywords {
		count += strings.Count(clean, strings.ToLower(keyword))
	}

	return float64(count) / float64(totalWords) * 100
}

// FleschReadingEase computes the Flesch Reading Ease statistic
// (206.835 - 1.015*words/sentences - 84.6*syllables/words). Higher scores
// read easier; 60-70 is typical for general-audience prose. Syllables are
// estimated with a vowel-group heuristic, which tracks the published formula
// closely enough for prompt guidance.
func FleschReadingEase(text string) float64 {
	clean := markdownCharsRe.ReplaceAllString(text, "")
	words := strings.Fields(clean)
	if len(words) == 0 {
		return 0.0
	}

	sentences := len(sentenceEndRe.FindAllString(clean, -1))
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, word := range words {
		syllables += countSyllables(word)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(len(words))

	return 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
}

// countSyllables estimates syllables in a word by counting vowel groups,
// discounting a trailing silent "e". Every word has at least one syllable.
func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}))
	if word == "" {
		return 1
	}

	isVowel := func(c byte) bool {
		return strings.IndexByte("aeiouy", c) >= 0
	}

	count := 0
	prevVowel := false
	for i := 0; i < len(word); i++ {
		v := isVowel(word[i])
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
