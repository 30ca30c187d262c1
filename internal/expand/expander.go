// Package expand widens a search query into variants: an optional
// history-aware rewrite plus synonym substitutions from the dictionary.
package expand

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
)

// Turn is one prior question/answer exchange, used to resolve follow-up
// queries like "how much is it".
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Dictionary returns the current synonym mapping. Implemented by the
// synonym service; the snapshot is read without locking.
type Dictionary interface {
	Synonyms() map[string][]string
}

// Rewriter rewrites a query in the light of conversation history.
// Failures are tolerated; expansion falls back to the original query.
type Rewriter interface {
	Rewrite(ctx context.Context, query string, history []Turn) (string, error)
}

type Expander struct {
	dict     Dictionary
	rewriter Rewriter
	cap      int
}

func NewExpander(dict Dictionary, rewriter Rewriter, variantCap int) *Expander {
	if variantCap < 1 {
		variantCap = 1
	}
	return &Expander{dict: dict, rewriter: rewriter, cap: variantCap}
}

// Expand returns the query variants in priority order, original first.
// The list never exceeds the variant cap and never comes back empty.
func (e *Expander) Expand(ctx context.Context, query string, history []Turn) []string {
	variants := []string{query}
	seen := map[string]bool{query: true}

	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] || len(variants) >= e.cap {
			return
		}
		seen[v] = true
		variants = append(variants, v)
	}

	if e.rewriter != nil && len(history) > 0 {
		rewritten, err := e.rewriter.Rewrite(ctx, query, history)
		if err != nil {
			slog.WarnContext(ctx, "query rewrite failed", "error", err)
		} else {
			add(rewritten)
		}
	}

	// Synonym substitution runs over the original and the rewrite, both
	// directions: term to synonym and synonym back to term.
	if e.dict != nil {
		bases := append([]string{}, variants...)
		synonyms := e.dict.Synonyms()
		for _, base := range bases {
			for term, alts := range synonyms {
				for _, alt := range alts {
					if v, ok := replaceWholeWord(base, term, alt); ok {
						add(v)
					}
					if v, ok := replaceWholeWord(base, alt, term); ok {
						add(v)
					}
				}
			}
		}
	}

	return variants
}

func wordBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// replaceWholeWord substitutes every standalone occurrence of old in s.
// An occurrence glued to surrounding letters or digits, like a Korean
// particle suffix, is left alone.
func replaceWholeWord(s, old, new string) (string, bool) {
	if old == "" {
		return s, false
	}
	var b strings.Builder
	replaced := false
	rest := s
	for {
		i := strings.Index(rest, old)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		before := rest[:i]
		after := rest[i+len(old):]

		ok := true
		if before != "" {
			runes := []rune(before)
			ok = wordBoundary(runes[len(runes)-1])
		}
		if ok && after != "" {
			r := []rune(after)[0]
			ok = wordBoundary(r)
		}

		b.WriteString(before)
		if ok {
			b.WriteString(new)
			replaced = true
		} else {
			b.WriteString(old)
		}
		rest = after
	}
	if !replaced {
		return s, false
	}
	return b.String(), true
}
