package util

import (
	"regexp"
	"strings"
)

var fencedBlockRE = regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]*\r?\n?(.*?)```")

// maxObjectStarts bounds how many unmatched opening braces the scanner retries from.
const maxObjectStarts = 64

// JSONObjectCandidates returns substrings of text that look like JSON objects:
// fenced code block contents first, then balanced top-level brace spans in
// order of appearance. Candidates are not validated.
func JSONObjectCandidates(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, m := range fencedBlockRE.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") {
			add(body)
		}
	}
	for _, obj := range balancedObjects(text) {
		add(obj)
	}
	return out
}

func balancedObjects(s string) []string {
	var out []string
	attempts := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end := matchBrace(s, i)
		if end < 0 {
			attempts++
			if attempts >= maxObjectStarts {
				break
			}
			continue
		}
		out = append(out, s[i:end+1])
		i = end
	}
	return out
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(s string, start int) int {
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
				return i
			}
		}
	}
	return -1
}
