// Package retrieval ranks a story's documents against a query and the
// session's narrative state, then expands the ranking with documents that
// are narratively connected to the top hits.
package retrieval

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/jwebster45206/narrative-engine/pkg/corpus"
	"github.com/jwebster45206/narrative-engine/pkg/lexicon"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

const (
	// MaxContextEntries caps the result set, expansion included.
	MaxContextEntries = 12
	// DefaultMaxResults is used when a caller asks for zero results.
	DefaultMaxResults = 5
)

// Scoring weights.
const (
	exactMatchWeight     = 3
	substringMatchWeight = 1
	labelMatchBonus      = 5

	discoveredCharacterBonus = 10
	knownLocationBonus       = 8
	currentLocationBonus     = 15
	completedBeatBonus       = 5
	revealedLoreBonus        = 6

	progressPerBeat = 2
	progressCap     = 10
	activeBeatBonus = 20
)

var relationshipTiers = map[state.RelationshipLevel]float64{
	state.RelationshipAllied:   12,
	state.RelationshipRomance:  10,
	state.RelationshipFriendly: 8,
	state.RelationshipHostile:  7,
	state.RelationshipMet:      5,
	state.RelationshipUnknown:  0,
}

// ScoredContext is a document with the three score components that rank it.
type ScoredContext struct {
	Content             string          `json:"content"`
	Metadata            corpus.Metadata `json:"metadata"`
	RelevanceScore      float64         `json:"relevanceScore"`
	RelationshipScore   float64         `json:"relationshipScore"`
	StoryRelevanceScore float64         `json:"storyRelevanceScore"`
	// Expanded is set on entries added because they relate to a top hit.
	Expanded bool `json:"expanded,omitempty"`
}

// TotalScore is the ranking key.
func (c ScoredContext) TotalScore() float64 {
	return c.RelevanceScore + c.RelationshipScore + c.StoryRelevanceScore
}

// Engine scores documents. It holds no per-session data and is safe for
// concurrent use.
type Engine struct {
	logger *slog.Logger
}

// New creates a retrieval engine.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// query is a tokenized search query with its whole-word patterns.
type query struct {
	tokens   []string
	patterns []*regexp.Regexp
}

func newQuery(text string) query {
	q := query{tokens: lexicon.Tokenize(text)}
	q.patterns = make([]*regexp.Regexp, len(q.tokens))
	for i, tok := range q.tokens {
		q.patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(tok) + `\b`)
	}
	return q
}

// Search ranks docs for text against st. Results are ordered by total score
// descending with ties kept in corpus order, truncated to maxResults, and
// then expanded with related documents up to MaxContextEntries entries.
// Scoring cost is O(documents × tokens); expansion is O(top × documents).
func (e *Engine) Search(st *state.StoryState, text string, docs []corpus.Document, maxResults int) []ScoredContext {
	if st == nil {
		st = state.NewStoryState("", "", state.Defaults{}, time.Time{})
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	maxResults = min(maxResults, MaxContextEntries)

	q := newQuery(text)
	scored := make([]ScoredContext, 0, len(docs))
	for _, doc := range docs {
		sc := score(doc, q, st)
		if sc.TotalScore() <= 0 {
			continue
		}
		scored = append(scored, sc)
	}

	slices.SortStableFunc(scored, func(a, b ScoredContext) int {
		switch ta, tb := a.TotalScore(), b.TotalScore(); {
		case ta > tb:
			return -1
		case ta < tb:
			return 1
		}
		return 0
	})
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	results := expand(scored, docs, st)

	e.logger.Debug("Scored story context",
		"story_id", st.StoryID,
		"session_id", st.SessionID,
		"tokens", q.tokens,
		"matched", len(scored),
		"returned", len(results))

	return results
}

func score(doc corpus.Document, q query, st *state.StoryState) ScoredContext {
	return ScoredContext{
		Content:             doc.Content,
		Metadata:            doc.Metadata,
		RelevanceScore:      relevanceScore(doc, q),
		RelationshipScore:   relationshipScore(doc.Metadata, st),
		StoryRelevanceScore: storyRelevanceScore(doc.Metadata, st),
	}
}

// relevanceScore counts whole-word hits at three points each, other
// substring hits at one point each, and adds a bonus per token found in
// the document's name or title.
func relevanceScore(doc corpus.Document, q query) float64 {
	if len(q.tokens) == 0 {
		return 0
	}
	content := lexicon.Fold(doc.Content)
	name := lexicon.Fold(doc.Metadata.Name)
	title := lexicon.Fold(doc.Metadata.Title)

	var total float64
	for i, tok := range q.tokens {
		exact := len(q.patterns[i].FindAllStringIndex(content, -1))
		partial := max(strings.Count(content, tok)-exact, 0)
		total += float64(exact*exactMatchWeight + partial*substringMatchWeight)
		if strings.Contains(name, tok) || strings.Contains(title, tok) {
			total += labelMatchBonus
		}
	}
	return total
}

func relationshipScore(m corpus.Metadata, st *state.StoryState) float64 {
	var total float64
	switch m.Type {
	case corpus.DocCharacter:
		if st.HasDiscovered(m.ID) {
			total += discoveredCharacterBonus
		}
		if rel, ok := st.Relationship(m.ID); ok {
			total += relationshipTiers[rel.Level]
		}
	case corpus.DocLocation:
		if st.KnowsLocation(m.ID) {
			total += knownLocationBonus
		}
		if st.CurrentLocation != "" && st.CurrentLocation == m.ID {
			total += currentLocationBonus
		}
	case corpus.DocBeat:
		if st.HasCompleted(m.ID) {
			total += completedBeatBonus
		}
	case corpus.DocLore:
		if st.HasRevealed(m.ID) {
			total += revealedLoreBonus
		}
	}
	return total
}

func storyRelevanceScore(m corpus.Metadata, st *state.StoryState) float64 {
	total := float64(min(progressPerBeat*len(st.CompletedBeats), progressCap))
	if m.Type == corpus.DocBeat && st.IsActive(m.ID) {
		total += activeBeatBonus
	}
	if m.StoryWeight != nil {
		total += *m.StoryWeight
	}
	return total
}
