package retrieval

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var tokenRe = regexp.MustCompile(`[가-힣a-zA-Z0-9]+`)

// stopwords covers common Korean particles and English function words
// that would otherwise dominate occurrence counts.
var stopwords = map[string]bool{
	"은": true, "는": true, "이": true, "가": true, "을": true, "를": true,
	"의": true, "에": true, "에서": true, "으로": true, "로": true, "와": true,
	"과": true, "도": true, "만": true, "대한": true, "대해": true, "관련": true,
	"어떻게": true, "무엇": true, "있는": true, "하는": true, "합니다": true,
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"of": true, "to": true, "in": true, "on": true, "for": true, "and": true,
	"or": true, "what": true, "how": true, "about": true, "with": true,
}

// keywordTokens splits a query into countable tokens: runs of Korean,
// Latin or digit characters, at least two runes long, stopwords removed.
func keywordTokens(query string) []string {
	var tokens []string
	seen := map[string]bool{}
	for _, tok := range tokenRe.FindAllString(strings.ToLower(query), -1) {
		if utf8.RuneCountInString(tok) < 2 || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	return tokens
}

// countOccurrences sums case-insensitive occurrences of every token in
// the content.
func countOccurrences(content string, tokens []string) int {
	lower := strings.ToLower(content)
	total := 0
	for _, tok := range tokens {
		total += strings.Count(lower, tok)
	}
	return total
}
