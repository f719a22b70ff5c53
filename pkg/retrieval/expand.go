package retrieval

import (
	"slices"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/corpus"
	"github.com/jwebster45206/narrative-engine/pkg/lexicon"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

type docKey struct {
	typ corpus.DocumentType
	id  string
}

func keyOf(m corpus.Metadata) docKey {
	return docKey{typ: m.Type, id: m.ID}
}

// expand appends documents related to each top result, in result order and
// corpus order, until MaxContextEntries is reached. Expanded entries are
// scored without query tokens.
func expand(top []ScoredContext, docs []corpus.Document, st *state.StoryState) []ScoredContext {
	results := slices.Clone(top)
	selected := make(map[docKey]bool, MaxContextEntries)
	for _, r := range results {
		selected[keyOf(r.Metadata)] = true
	}

	for _, r := range top {
		if len(results) >= MaxContextEntries {
			break
		}
		anchor := corpus.Document{Content: r.Content, Metadata: r.Metadata}
		for _, doc := range docs {
			if len(results) >= MaxContextEntries {
				break
			}
			k := keyOf(doc.Metadata)
			if selected[k] || !Related(anchor, doc) {
				continue
			}
			sc := score(doc, query{}, st)
			sc.Expanded = true
			results = append(results, sc)
			selected[k] = true
		}
	}
	return results
}

// Related reports whether two documents are narratively connected. The
// relation is symmetric.
func Related(a, b corpus.Document) bool {
	ma, mb := a.Metadata, b.Metadata
	if keyOf(ma) == keyOf(mb) {
		return false
	}

	switch {
	case ma.Type == corpus.DocCharacter && mb.Type == corpus.DocCharacter:
		return mentions(b.Content, ma.ID) || mentions(a.Content, mb.ID)
	case ma.Type == corpus.DocLocation && mb.Type == corpus.DocLocation:
		return connects(a, mb) || connects(b, ma)
	case ma.Type == corpus.DocCharacter && mb.Type == corpus.DocLocation:
		return mentions(b.Content, characterName(ma))
	case ma.Type == corpus.DocLocation && mb.Type == corpus.DocCharacter:
		return mentions(a.Content, characterName(mb))
	}

	if ma.Type == corpus.DocBeat && mentions(b.Content, ma.Title) {
		return true
	}
	if mb.Type == corpus.DocBeat && mentions(a.Content, mb.Title) {
		return true
	}
	return false
}

// connects reports whether location doc from links to location to, either
// through its declared connections or a connection word alongside to's id.
func connects(from corpus.Document, to corpus.Metadata) bool {
	if slices.Contains(from.Metadata.Connections, to.ID) {
		return true
	}
	content := lexicon.Fold(from.Content)
	if !strings.Contains(content, lexicon.Fold(to.ID)) {
		return false
	}
	for _, kw := range lexicon.ConnectionWords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

func characterName(m corpus.Metadata) string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

func mentions(content, term string) bool {
	if strings.TrimSpace(term) == "" {
		return false
	}
	return strings.Contains(lexicon.Fold(content), lexicon.Fold(term))
}
