package detect

import "strings"

// significantWords extracts lowercase words >= 4 chars.
func significantWords(s string) []string {
	words := strings.Fields(strings.ToLower(s))
	var result []string
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()[]")
		if len(w) >= 4 {
			result = append(result, w)
		}
	}
	return result
}

// wordOverlap counts shared words between two sets.
func wordOverlap(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	count := 0
	seen := make(map[string]bool)
	for _, w := range b {
		if set[w] && !seen[w] {
			seen[w] = true
			count++
		}
	}
	return count
}

// sentences splits text on sentence terminators, trimming whitespace.
func sentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}
