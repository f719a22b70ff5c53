// Package lexicon holds the keyword tables shared by the beat trigger
// evaluator, the retrieval engine and the pacing classifier.
package lexicon

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of s used for every keyword comparison.
func Fold(s string) string {
	// cases.Caser is stateful, so one is built per call.
	return cases.Fold().String(s)
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true, "might": true,
	"can": true, "shall": true, "must": true,
	"to": true, "of": true, "in": true, "on": true, "at": true, "by": true, "for": true,
	"with": true, "from": true, "as": true, "about": true, "into": true, "through": true,
	"over": true, "under": true, "then": true, "than": true, "there": true, "here": true,
	"this": true, "that": true, "these": true, "those": true, "what": true, "which": true,
	"who": true, "whom": true, "how": true, "when": true, "where": true, "why": true,
	"i": true, "me": true, "my": true, "you": true, "your": true, "he": true, "she": true,
	"it": true, "its": true, "we": true, "our": true, "they": true, "them": true, "their": true,
	"his": true, "her": true, "not": true, "all": true, "any": true, "some": true,
	"just": true, "very": true, "too": true, "also": true, "now": true, "out": true,
	"up": true, "down": true, "if": true, "so": true, "let": true,
}

// IsStopWord reports whether word (already folded) is a stop word.
func IsStopWord(word string) bool {
	return stopWords[word]
}

// trimPunct strips leading and trailing runes that are neither letters nor digits.
func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Tokenize splits a query into folded, whitespace-separated search tokens.
// Tokens of two runes or fewer and stop words are dropped. Duplicates are kept.
func Tokenize(query string) []string {
	var tokens []string
	for _, field := range strings.Fields(query) {
		word := Fold(trimPunct(field))
		if len([]rune(word)) <= 2 || IsStopWord(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// Words splits text into folded words without filtering.
func Words(text string) []string {
	fields := strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	return fields
}

// ContainsWord reports whether the folded text contains term as a whole word.
// Multi-word terms fall back to substring containment.
func ContainsWord(text, term string) bool {
	term = Fold(term)
	if strings.ContainsRune(term, ' ') {
		return strings.Contains(Fold(text), term)
	}
	return slices.Contains(Words(text), term)
}

// ContainsAny reports whether text contains any of the terms as whole words.
func ContainsAny(text string, terms []string) bool {
	for _, term := range terms {
		if ContainsWord(text, term) {
			return true
		}
	}
	return false
}
