package beats

import (
	"slices"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/lexicon"
)

// matchesTriggers reports whether action satisfies any trigger. A trigger
// matches on substring containment in either direction, on a trigger verb
// or one of its synonyms appearing in the action, on a trigger verb from
// the caller's action class when the action uses any verb of that class, or
// on every significant word of the trigger appearing in the action.
func matchesTriggers(action string, triggers []string, actionType lexicon.ActionType) bool {
	a := lexicon.Fold(strings.TrimSpace(action))
	words := lexicon.Words(a)
	class := lexicon.ActionClasses[actionType]
	significant := len(lexicon.Tokenize(a)) > 0

	for _, trigger := range triggers {
		t := lexicon.Fold(strings.TrimSpace(trigger))
		if t == "" {
			continue
		}
		if strings.Contains(a, t) || (significant && strings.Contains(t, a)) {
			return true
		}
		required := significantWords(t)
		if synonymMatch(a, words, required) || classMatch(a, words, required, class) || wordsMatch(a, words, required) {
			return true
		}
	}
	return false
}

// synonymMatch reports whether a trigger word from the synonym table, or
// any of its synonyms, appears in the action.
func synonymMatch(action string, actionWords, required []string) bool {
	for _, w := range required {
		if eq := lexicon.Equivalents(w); len(eq) > 1 && anyWord(action, actionWords, eq) {
			return true
		}
	}
	return false
}

// classMatch reports whether the trigger holds a verb of class and the
// action holds any verb of the same class.
func classMatch(action string, actionWords, required, class []string) bool {
	if len(class) == 0 {
		return false
	}
	for _, w := range required {
		if slices.Contains(class, w) {
			return anyWord(action, actionWords, class)
		}
	}
	return false
}

// wordsMatch reports whether every significant word of trigger appears in
// the action, directly, as an inflected form, or through a synonym.
func wordsMatch(action string, actionWords, required []string) bool {
	if len(required) == 0 {
		return false
	}
	for _, w := range required {
		if !anyWord(action, actionWords, lexicon.Equivalents(w)) {
			return false
		}
	}
	return true
}

func significantWords(text string) []string {
	var out []string
	for _, w := range lexicon.Words(text) {
		if !lexicon.IsStopWord(w) {
			out = append(out, w)
		}
	}
	return out
}

func anyWord(action string, actionWords []string, terms []string) bool {
	for _, term := range terms {
		if strings.ContainsRune(term, ' ') {
			if strings.Contains(action, term) {
				return true
			}
			continue
		}
		for _, aw := range actionWords {
			if inflects(aw, term) {
				return true
			}
		}
	}
	return false
}

// inflects reports whether word is term or a short suffixed form of it
// ("door" → "doors", "examine" → "examined").
func inflects(word, term string) bool {
	if word == term {
		return true
	}
	return len(term) >= 4 && strings.HasPrefix(word, term) && len(word)-len(term) <= 3
}

// matchesDialogue requires a phrase-level match: the trigger phrase itself,
// or every word of it reduced to its stem ("searching" → "search").
func matchesDialogue(action string, triggers []string) bool {
	a := lexicon.Fold(action)
	for _, trigger := range triggers {
		t := lexicon.Fold(strings.TrimSpace(trigger))
		if t == "" {
			continue
		}
		if strings.Contains(a, t) {
			return true
		}
		words := lexicon.Words(t)
		if len(words) == 0 {
			continue
		}
		all := true
		for _, w := range words {
			if !strings.Contains(a, stem(w)) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

var suffixes = []string{"ing", "ed", "es", "s"}

func stem(w string) string {
	for _, suf := range suffixes {
		if strings.HasSuffix(w, suf) && len(w)-len(suf) >= 3 {
			return strings.TrimSuffix(w, suf)
		}
	}
	return w
}

// containsAny reports substring containment of any keyword in action.
func containsAny(action string, keywords []string) bool {
	a := lexicon.Fold(action)
	for _, kw := range keywords {
		if kw = lexicon.Fold(strings.TrimSpace(kw)); kw != "" && strings.Contains(a, kw) {
			return true
		}
	}
	return false
}
