package llm

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	codeFenceRe  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	greedyJSONRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSONObject locates the outermost JSON object in an LLM response.
// Models routinely wrap JSON in markdown code fences or preamble text
// ("Here is the JSON you asked for:"), so the raw response is cleaned first,
// then scanned with brace matching; a greedy regex is the fallback when
// matching fails (for example on unbalanced braces inside the payload).
func ExtractJSONObject(response string) (string, error) {
	cleaned := strings.TrimSpace(response)

	if m := codeFenceRe.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.TrimSpace(m[1])
	}

	if obj, ok := matchBraces(cleaned); ok {
		return obj, nil
	}

	if m := greedyJSONRe.FindString(cleaned); m != "" {
		return m, nil
	}

	return "", fmt.Errorf("no JSON object found in response")
}

// matchBraces returns the first balanced top-level {...} block, skipping
// brace characters inside JSON strings.
func matchBraces(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
