package artwork

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Primary feed titles often carry season/cour/part qualifiers (e.g.
// "My Hero Academia FINAL SEASON") while TMDB stores the base series title,
// so exact search frequently misses. Candidate queries strip those
// qualifiers in decreasing order of confidence.

var (
	seasonSuffixRe = regexp.MustCompile(`(?i)\s*[([]?\s*(final\s*season|the\s*final\s*season|season\s*\d+|s\d+|part\s*\d+|cour\s*\d+)\s*[)\]]?\s*$`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// Queries shorter than this are too ambiguous to search with.
const minQueryLen = 3

// BuildCandidateQueries derives normalized search queries from a display
// title, ordered from highest to lowest confidence: the full title, the
// title with any trailing season qualifier stripped, the part before the
// first colon, and the part before the first dash. Duplicates are removed
// and order is preserved; a blank title yields no candidates.
func BuildCandidateQueries(raw string) []string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return nil
	}

	noSuffix := normalizeQuery(seasonSuffixRe.ReplaceAllString(t, ""))

	beforeColon, _, _ := strings.Cut(t, ":")
	beforeColon = normalizeQuery(beforeColon)

	beforeDash := t
	for _, sep := range []string{" - ", " – ", "-", "–"} {
		if idx := strings.Index(beforeDash, sep); idx >= 0 {
			beforeDash = beforeDash[:idx]
		}
	}
	beforeDash = normalizeQuery(beforeDash)

	candidates := []string{normalizeQuery(t), noSuffix, beforeColon, beforeDash}

	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if utf8.RuneCountInString(c) < minQueryLen {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// normalizeQuery collapses whitespace runs, trims, and maps the
// multiplication sign to ascii "x" ("Hunter × Hunter" style titles).
func normalizeQuery(s string) string {
	s = strings.ReplaceAll(s, "×", "x")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
