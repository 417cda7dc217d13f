package schema

import (
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSON pulls a JSON candidate out of raw model output.
//
// It tries, in order: the contents of the first fenced code block, the first
// balanced {...} or [...] span outside any fence, and finally the trimmed
// input verbatim. The result is a candidate, not a guarantee; callers
// validate it next.
func ExtractJSON(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if span := balancedSpan(text); span != "" {
		return span
	}
	return strings.TrimSpace(text)
}

// balancedSpan returns the first balanced {...} or [...] span in text,
// tracking JSON string literals so braces inside strings do not count.
func balancedSpan(text string) string {
	start := -1
	var open, closer byte
	for i := 0; i < len(text); i++ {
		if text[i] == '{' || text[i] == '[' {
			start = i
			open = text[i]
			if open == '{' {
				closer = '}'
			} else {
				closer = ']'
			}
			break
		}
	}
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
