// Package retrieval ranks FAQ entries against free text by token overlap.
package retrieval

import (
	"sort"
	"strings"
	"unicode"

	"github.com/wolfman30/foundry-guide/internal/content"
)

// DefaultLimit is the number of entries FindRelevant keeps when limit <= 0.
const DefaultLimit = 3

// ScoredEntry pairs an entry with its relevance in [0,1].
type ScoredEntry struct {
	Entry content.Entry
	Score float64
}

// Tokenize lower-cases text, drops everything outside [a-z0-9] and
// whitespace, and splits on whitespace. Any Unicode space separates tokens,
// so "deep\u00a0tech" yields two.
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}

// Haystack is the lower-cased text a query is matched against.
func Haystack(entry content.Entry) string {
	parts := []string{entry.Title, entry.Question, entry.Answer, strings.Join(entry.Tags, " ")}
	return strings.ToLower(strings.Join(parts, " "))
}

// Score returns the fraction of query tokens found anywhere in the entry's
// haystack. Tokens match as substrings, so "ai" also hits "said".
func Score(query string, entry content.Entry) float64 {
	return scoreTokens(Tokenize(query), Haystack(entry))
}

func scoreTokens(tokens []string, haystack string) float64 {
	hits := 0
	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			hits++
		}
	}
	return float64(hits) / float64(max(1, len(tokens)))
}

// FindRelevant scores every entry, keeps the top limit by descending score
// (ties keep source order), then drops entries scoring zero.
func FindRelevant(query string, entries []content.Entry, limit int) []ScoredEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	tokens := Tokenize(query)

	scored := make([]ScoredEntry, 0, len(entries))
	for _, entry := range entries {
		scored = append(scored, ScoredEntry{Entry: entry, Score: scoreTokens(tokens, Haystack(entry))})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	out := scored[:0]
	for _, s := range scored {
		if s.Score > 0 {
			out = append(out, s)
		}
	}
	return out
}
