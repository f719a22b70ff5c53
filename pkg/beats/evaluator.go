// Package beats decides which story beats a player action triggers and what
// those beats change in the session's story state.
package beats

import (
	"log/slog"
	"time"

	"github.com/jwebster45206/narrative-engine/pkg/corpus"
	"github.com/jwebster45206/narrative-engine/pkg/lexicon"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// Mutations lists what the triggered beats changed.
type Mutations struct {
	DiscoveredCharacters []string                           `json:"discoveredCharacters,omitempty"`
	KnownLocations       []string                           `json:"knownLocations,omitempty"`
	CompletedBeats       []string                           `json:"completedBeats,omitempty"`
	ActivatedBeats       []string                           `json:"activatedBeats,omitempty"`
	StoryFlags           map[string]bool                    `json:"storyFlags,omitempty"`
	RevealedLore         []string                           `json:"revealedLore,omitempty"`
	Relationships        map[string]state.RelationshipLevel `json:"relationships,omitempty"`
}

// Empty reports whether nothing changed.
func (m Mutations) Empty() bool {
	return len(m.DiscoveredCharacters) == 0 && len(m.KnownLocations) == 0 &&
		len(m.CompletedBeats) == 0 && len(m.ActivatedBeats) == 0 &&
		len(m.StoryFlags) == 0 && len(m.RevealedLore) == 0 && len(m.Relationships) == 0
}

// Result is the outcome of evaluating one action.
type Result struct {
	TriggeredBeats []corpus.BeatDefinition `json:"triggeredBeats"`
	StateMutations Mutations               `json:"stateMutations"`
	NarrativeHints []string                `json:"narrativeHints"`
	UrgentActions  []string                `json:"urgentActions"`
	// State is the session state after the mutations were committed.
	State *state.StoryState `json:"-"`
}

// Triggered reports whether any beat fired.
func (r Result) Triggered() bool {
	return len(r.TriggeredBeats) > 0
}

// Evaluator applies beat triggers to the sessions held in a store.
type Evaluator struct {
	store  *state.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewEvaluator creates an evaluator that commits to store.
func NewEvaluator(store *state.Store, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{store: store, logger: logger, now: time.Now}
}

// Evaluate runs every beat of c against action for one session and commits
// the accumulated mutations in a single store update. The caller holds the
// session lock when evaluation races with other writers are possible.
func (e *Evaluator) Evaluate(c *corpus.Corpus, sessionID string, d state.Defaults, action string, actionType lexicon.ActionType) Result {
	current := e.store.GetOrCreate(c.StoryID, sessionID, d)
	res, next := Plan(current, c, action, actionType, e.now())
	if !res.Triggered() {
		res.State = current
		return res
	}

	res.State = e.store.Update(c.StoryID, sessionID, state.PatchFrom(next))

	ids := make([]string, len(res.TriggeredBeats))
	for i, b := range res.TriggeredBeats {
		ids[i] = b.ID
	}
	e.logger.Info("Story beats triggered",
		"story_id", c.StoryID,
		"session_id", sessionID,
		"beats", ids,
		"urgent", len(res.UrgentActions))
	return res
}

// Plan evaluates beats against a snapshot of the state without committing.
// Every eligible beat fires, in declaration order; eligibility is judged on
// the snapshot so the outcome does not depend on beat order. It returns the
// result and the mutated copy of the state.
func Plan(st *state.StoryState, c *corpus.Corpus, action string, actionType lexicon.ActionType, now time.Time) (Result, *state.StoryState) {
	res := Result{
		TriggeredBeats: []corpus.BeatDefinition{},
		NarrativeHints: []string{},
		UrgentActions:  []string{},
	}
	next := st.Clone()

	for _, b := range c.Beats {
		if !fires(b, st, c.Entities, action, actionType) {
			continue
		}
		res.TriggeredBeats = append(res.TriggeredBeats, b)
		apply(b, next, c.Entities, &res.StateMutations, now)
		res.NarrativeHints = append(res.NarrativeHints, hints(b)...)
		res.UrgentActions = append(res.UrgentActions, urgent(b)...)
	}
	return res, next
}

// Available returns the beats that could fire for some action: not yet
// completed (or repeatable) and with every prerequisite satisfied.
func Available(st *state.StoryState, c *corpus.Corpus) []corpus.BeatDefinition {
	out := []corpus.BeatDefinition{}
	for _, b := range c.Beats {
		if open(b, st) {
			out = append(out, b)
		}
	}
	return out
}

func open(b corpus.BeatDefinition, st *state.StoryState) bool {
	if st.HasCompleted(b.ID) && !b.Repeatable {
		return false
	}
	for _, p := range b.Prerequisites {
		if !st.HasCompleted(p) && !st.Flag(p) {
			return false
		}
	}
	return true
}

func fires(b corpus.BeatDefinition, st *state.StoryState, entities *lexicon.EntityTable, action string, actionType lexicon.ActionType) bool {
	if !open(b, st) {
		return false
	}
	if len(b.Triggers) > 0 && !matchesTriggers(action, b.Triggers, actionType) {
		return false
	}
	if len(b.DialogueTriggers) > 0 && !matchesDialogue(action, b.DialogueTriggers) {
		return false
	}
	if b.Type == corpus.BeatCharacterIntroduction {
		for _, id := range entities.Characters(b.ID) {
			if st.HasDiscovered(id) {
				return false
			}
		}
	}
	if g := b.Gating; g != nil {
		if g.Location != "" && st.CurrentLocation != g.Location {
			return false
		}
		if len(g.AnyKeywords) > 0 && !containsAny(action, g.AnyKeywords) {
			return false
		}
	}
	return true
}

func apply(b corpus.BeatDefinition, next *state.StoryState, entities *lexicon.EntityTable, m *Mutations, now time.Time) {
	for _, id := range entities.Characters(b.ID) {
		if next.Discover(id) {
			m.DiscoveredCharacters = append(m.DiscoveredCharacters, id)
		}
	}
	for _, id := range entities.Locations(b.ID) {
		if !next.KnowsLocation(id) {
			next.Learn(id)
			m.KnownLocations = append(m.KnownLocations, id)
		}
	}

	if b.Repeatable {
		if !next.IsActive(b.ID) {
			next.Activate(b.ID)
			m.ActivatedBeats = append(m.ActivatedBeats, b.ID)
		}
	} else {
		next.Complete(b.ID)
		m.CompletedBeats = append(m.CompletedBeats, b.ID)
	}

	for _, choice := range b.Choices {
		if choice.LeadsTo == "" {
			continue
		}
		flag := "can_access_" + choice.LeadsTo
		next.SetFlag(flag, true)
		if m.StoryFlags == nil {
			m.StoryFlags = map[string]bool{}
		}
		m.StoryFlags[flag] = true
	}

	for _, id := range b.RevealsLore {
		if !next.HasRevealed(id) {
			next.Reveal(id)
			m.RevealedLore = append(m.RevealedLore, id)
		}
	}

	for charID, level := range b.RelationshipChanges {
		lvl := state.RelationshipLevel(level)
		if !lvl.Valid() {
			continue
		}
		next.SetRelationship(charID, lvl, b.Name, now)
		if m.Relationships == nil {
			m.Relationships = map[string]state.RelationshipLevel{}
		}
		m.Relationships[charID] = lvl
	}
}

func hints(b corpus.BeatDefinition) []string {
	var out []string
	if b.StorySignificance != "" {
		out = append(out, b.StorySignificance)
	}
	out = append(out, b.KeyInformationRevealed...)
	out = append(out, b.WisdomShared...)
	return out
}

func urgent(b corpus.BeatDefinition) []string {
	var out []string
	switch b.Type {
	case corpus.BeatMajorConflict:
		out = append(out, "CONFLICT: "+b.Name+" demands an immediate response")
	case corpus.BeatClimax:
		out = append(out, "CLIMAX: "+b.Name+" is unfolding now")
	}
	if b.HasMultipleOutcomes() {
		out = append(out, "BRANCH: "+b.Name+" can end in more than one way")
	}
	if b.HasFinalChoices() {
		out = append(out, "FINAL CHOICE: "+b.Name+" requires the player's final decision")
	}
	return out
}
