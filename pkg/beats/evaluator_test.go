package beats

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/narrative-engine/pkg/corpus"
	"github.com/jwebster45206/narrative-engine/pkg/lexicon"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

const (
	storyID   = "whiskers_tale"
	sessionID = "session-1"
)

func newEvaluator(t *testing.T) (*Evaluator, *state.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := state.NewStore(state.WithLogger(logger))
	return NewEvaluator(store, logger), store
}

func testCorpus(beats ...corpus.BeatDefinition) *corpus.Corpus {
	return corpus.Build(storyID,
		[]corpus.CharacterSpec{
			{ID: "whiskers", Name: "Whiskers"},
			{ID: "elder_oak", Name: "Elder Oak"},
		},
		[]corpus.LocationSpec{
			{ID: "cottage_garden", Name: "Cottage Garden"},
			{ID: "whispering_woods", Name: "Whispering Woods"},
		},
		beats, nil,
		[]lexicon.Entity{{ID: "whispering_woods", Kind: lexicon.EntityLocation, Keywords: []string{"woods"}}},
	)
}

func ids(beats []corpus.BeatDefinition) []string {
	out := []string{}
	for _, b := range beats {
		out = append(out, b.ID)
	}
	return out
}

func TestEvaluate_TriggersOnce(t *testing.T) {
	e, store := newEvaluator(t)
	c := testCorpus(corpus.BeatDefinition{
		ID:       "B1",
		Name:     "The Door",
		Type:     corpus.BeatDecisionPoint,
		Triggers: []string{"examine door"},
	})

	res := e.Evaluate(c, sessionID, state.Defaults{}, "I examine the door", "")
	require.True(t, res.Triggered())
	assert.Equal(t, []string{"B1"}, ids(res.TriggeredBeats))
	assert.Equal(t, []string{"B1"}, res.StateMutations.CompletedBeats)
	assert.True(t, res.State.HasCompleted("B1"))

	stored, ok := store.Get(storyID, sessionID)
	require.True(t, ok)
	assert.Equal(t, []string{"B1"}, stored.CompletedBeats)

	again := e.Evaluate(c, sessionID, state.Defaults{}, "I examine the door", "")
	assert.False(t, again.Triggered())
	assert.Empty(t, again.TriggeredBeats)
	assert.True(t, again.StateMutations.Empty())
	assert.Equal(t, []string{"B1"}, again.State.CompletedBeats)
}

func TestEvaluate_NoMatchLeavesStateUntouched(t *testing.T) {
	e, store := newEvaluator(t)
	c := testCorpus(corpus.BeatDefinition{ID: "B1", Name: "The Door", Type: corpus.BeatClimax, Triggers: []string{"examine door"}})

	before := store.GetOrCreate(storyID, sessionID, state.Defaults{Location: "cottage_garden"})
	res := e.Evaluate(c, sessionID, state.Defaults{}, "sing loudly", "")
	assert.False(t, res.Triggered())
	assert.NotNil(t, res.NarrativeHints)
	assert.NotNil(t, res.UrgentActions)
	assert.Equal(t, before, res.State)
}

func TestEvaluate_Prerequisites(t *testing.T) {
	e, _ := newEvaluator(t)
	c := testCorpus(
		corpus.BeatDefinition{ID: "meet_whiskers", Name: "Meeting Whiskers", Type: corpus.BeatCharacterIntroduction, Triggers: []string{"approach cat"}},
		corpus.BeatDefinition{ID: "follow_cat", Name: "Follow", Type: corpus.BeatDecisionPoint, Triggers: []string{"follow cat"}, Prerequisites: []string{"meet_whiskers"}},
	)

	res := e.Evaluate(c, sessionID, state.Defaults{}, "follow cat", "")
	assert.False(t, res.Triggered())

	res = e.Evaluate(c, sessionID, state.Defaults{}, "approach cat", "")
	assert.Equal(t, []string{"meet_whiskers"}, ids(res.TriggeredBeats))

	res = e.Evaluate(c, sessionID, state.Defaults{}, "follow cat", "")
	assert.Equal(t, []string{"follow_cat"}, ids(res.TriggeredBeats))
}

func TestEvaluate_ChoicesUnlockOnNextTurn(t *testing.T) {
	e, _ := newEvaluator(t)
	c := testCorpus(
		corpus.BeatDefinition{
			ID:       "at_the_gate",
			Name:     "At the Gate",
			Type:     corpus.BeatDecisionPoint,
			Triggers: []string{"open gate"},
			Choices: []corpus.Choice{
				{Text: "Go in", LeadsTo: "beyond_gate"},
				{Text: "Stay"},
			},
		},
		corpus.BeatDefinition{
			ID:            "beyond_gate",
			Name:          "Beyond the Gate",
			Type:          corpus.BeatExpositionLore,
			Triggers:      []string{"open gate"},
			Prerequisites: []string{"can_access_beyond_gate"},
		},
	)

	res := e.Evaluate(c, sessionID, state.Defaults{}, "open gate", "")
	// eligibility is judged before any beat of the turn applies
	assert.Equal(t, []string{"at_the_gate"}, ids(res.TriggeredBeats))
	assert.Equal(t, map[string]bool{"can_access_beyond_gate": true}, res.StateMutations.StoryFlags)
	assert.True(t, res.State.Flag("can_access_beyond_gate"))

	res = e.Evaluate(c, sessionID, state.Defaults{}, "open gate", "")
	assert.Equal(t, []string{"beyond_gate"}, ids(res.TriggeredBeats))
}

func TestEvaluate_AllMatchingBeatsFire(t *testing.T) {
	e, _ := newEvaluator(t)
	c := testCorpus(
		corpus.BeatDefinition{ID: "first", Name: "First", Type: corpus.BeatExpositionLore, Triggers: []string{"open gate"}, StorySignificance: "one"},
		corpus.BeatDefinition{ID: "second", Name: "Second", Type: corpus.BeatExpositionLore, Triggers: []string{"gate"}, StorySignificance: "two"},
	)

	res := e.Evaluate(c, sessionID, state.Defaults{}, "open gate", "")
	assert.Equal(t, []string{"first", "second"}, ids(res.TriggeredBeats))
	assert.Equal(t, []string{"first", "second"}, res.StateMutations.CompletedBeats)
	assert.Equal(t, []string{"one", "two"}, res.NarrativeHints)
	assert.Equal(t, []string{"first", "second"}, res.State.CompletedBeats)
}

func TestEvaluate_Repeatable(t *testing.T) {
	e, _ := newEvaluator(t)
	c := testCorpus(corpus.BeatDefinition{
		ID:           "idle_chatter",
		Name:         "Idle Chatter",
		Type:         corpus.BeatExpositionLore,
		Triggers:     []string{"chat"},
		Repeatable:   true,
		WisdomShared: corpus.StringList{"Cats nap a lot"},
	})

	res := e.Evaluate(c, sessionID, state.Defaults{}, "chat", "")
	require.True(t, res.Triggered())
	assert.Equal(t, []string{"idle_chatter"}, res.StateMutations.ActivatedBeats)
	assert.Empty(t, res.StateMutations.CompletedBeats)
	assert.True(t, res.State.IsActive("idle_chatter"))

	res = e.Evaluate(c, sessionID, state.Defaults{}, "chat", "")
	require.True(t, res.Triggered())
	assert.Empty(t, res.StateMutations.ActivatedBeats)
	assert.Equal(t, []string{"Cats nap a lot"}, res.NarrativeHints)
	assert.Equal(t, []string{"idle_chatter"}, res.State.ActiveBeats)
	assert.Empty(t, res.State.CompletedBeats)
}

func TestEvaluate_CharacterIntroduction(t *testing.T) {
	meet := corpus.BeatDefinition{
		ID:       "meet_whiskers",
		Name:     "Meeting Whiskers",
		Type:     corpus.BeatCharacterIntroduction,
		Triggers: []string{"approach cat"},
	}

	t.Run("discovers the character", func(t *testing.T) {
		e, _ := newEvaluator(t)
		res := e.Evaluate(testCorpus(meet), sessionID, state.Defaults{}, "approach cat", "")
		require.True(t, res.Triggered())
		assert.Equal(t, []string{"whiskers"}, res.StateMutations.DiscoveredCharacters)
		assert.Equal(t, []string{"whiskers"}, res.State.DiscoveredCharacters)
	})

	t.Run("skipped when already discovered", func(t *testing.T) {
		e, store := newEvaluator(t)
		store.GetOrCreate(storyID, sessionID, state.Defaults{})
		discovered := []string{"whiskers"}
		store.Update(storyID, sessionID, state.Patch{DiscoveredCharacters: &discovered})

		res := e.Evaluate(testCorpus(meet), sessionID, state.Defaults{}, "approach cat", "")
		assert.False(t, res.Triggered())
	})
}

func TestEvaluate_Gating(t *testing.T) {
	oak := corpus.BeatDefinition{
		ID:          "elder_oak_wisdom",
		Name:        "The Elder Oak Speaks",
		Type:        corpus.BeatExpositionLore,
		Repeatable:  true,
		Gating:      &corpus.Gating{Location: "whispering_woods", AnyKeywords: lexicon.GuidanceWords},
		RevealsLore: []string{"river_pact"},
	}

	tests := []struct {
		name     string
		location string
		action   string
		expected bool
	}{
		{"right place and request", "whispering_woods", "I ask the oak for advice", true},
		{"right place without request", "whispering_woods", "I kick the oak", false},
		{"request elsewhere", "cottage_garden", "I ask the oak for advice", false},
		{"request word inside another word", "whispering_woods", "helpless, I sit down", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEvaluator(t)
			res := e.Evaluate(testCorpus(oak), sessionID, state.Defaults{Location: tt.location}, tt.action, "")
			assert.Equal(t, tt.expected, res.Triggered())
			if tt.expected {
				assert.Equal(t, []string{"elder_oak"}, res.StateMutations.DiscoveredCharacters)
				assert.Equal(t, []string{"river_pact"}, res.StateMutations.RevealedLore)
				assert.True(t, res.State.HasRevealed("river_pact"))
			}
		})
	}
}

func TestEvaluate_DialogueTriggers(t *testing.T) {
	e, _ := newEvaluator(t)
	c := testCorpus(corpus.BeatDefinition{
		ID:               "lost_item",
		Name:             "Lost Item",
		Type:             corpus.BeatExpositionLore,
		DialogueTriggers: []string{"searching"},
	})

	assert.False(t, e.Evaluate(c, sessionID, state.Defaults{}, "I wave hello", lexicon.ActionDialogue).Triggered())
	assert.True(t, e.Evaluate(c, sessionID, state.Defaults{}, "I am going to search for it", lexicon.ActionDialogue).Triggered())
}

func TestEvaluate_LearnsLocationsAndRelationships(t *testing.T) {
	e, _ := newEvaluator(t)
	c := testCorpus(corpus.BeatDefinition{
		ID:       "enter_woods",
		Name:     "Into the Woods",
		Type:     corpus.BeatDecisionPoint,
		Triggers: []string{"enter woods"},
		RelationshipChanges: map[string]string{
			"whiskers":  "friendly",
			"elder_oak": "bewildered",
		},
	})

	res := e.Evaluate(c, sessionID, state.Defaults{Location: "cottage_garden"}, "enter woods", lexicon.ActionDecision)
	require.True(t, res.Triggered())
	assert.Equal(t, []string{"whispering_woods"}, res.StateMutations.KnownLocations)
	assert.Equal(t, []string{"cottage_garden", "whispering_woods"}, res.State.KnownLocations)
	assert.Equal(t, map[string]state.RelationshipLevel{"whiskers": state.RelationshipFriendly}, res.StateMutations.Relationships)

	r, ok := res.State.Relationship("whiskers")
	require.True(t, ok)
	assert.Equal(t, state.RelationshipFriendly, r.Level)
	assert.Equal(t, []string{"Into the Woods"}, r.KeyEvents)
	_, ok = res.State.Relationship("elder_oak")
	assert.False(t, ok)
}

func TestEvaluate_HintsAndUrgentActions(t *testing.T) {
	e, _ := newEvaluator(t)
	c := testCorpus(
		corpus.BeatDefinition{
			ID:                     "fox_at_the_gate",
			Name:                   "The Fox at the Gate",
			Type:                   corpus.BeatMajorConflict,
			Triggers:               []string{"confront fox"},
			StorySignificance:      "The threat becomes personal.",
			KeyInformationRevealed: corpus.StringList{"Rusk wants revenge"},
			MultipleOutcomes:       json.RawMessage(`{"win": "x", "lose": "y"}`),
		},
		corpus.BeatDefinition{
			ID:           "homecoming",
			Name:         "Homecoming",
			Type:         corpus.BeatClimax,
			Triggers:     []string{"fox"},
			FinalChoices: json.RawMessage(`["stay", "go"]`),
			WisdomShared: corpus.StringList{"Home is where the hearth is"},
		},
	)

	res := e.Evaluate(c, sessionID, state.Defaults{}, "confront the fox", lexicon.ActionCombat)
	require.Len(t, res.TriggeredBeats, 2)
	assert.Equal(t, []string{
		"The threat becomes personal.",
		"Rusk wants revenge",
		"Home is where the hearth is",
	}, res.NarrativeHints)
	assert.Equal(t, []string{
		"CONFLICT: The Fox at the Gate demands an immediate response",
		"BRANCH: The Fox at the Gate can end in more than one way",
		"CLIMAX: Homecoming is unfolding now",
		"FINAL CHOICE: Homecoming requires the player's final decision",
	}, res.UrgentActions)
}

func TestPlan_DoesNotCommit(t *testing.T) {
	c := testCorpus(corpus.BeatDefinition{ID: "B1", Name: "Door", Type: corpus.BeatClimax, Triggers: []string{"examine door"}})
	st := state.NewStoryState(storyID, sessionID, state.Defaults{}, time.Now())

	res, next := Plan(st, c, "examine door", "", time.Now())
	assert.True(t, res.Triggered())
	assert.True(t, next.HasCompleted("B1"))
	assert.False(t, st.HasCompleted("B1"))
}

func TestAvailable(t *testing.T) {
	c := testCorpus(
		corpus.BeatDefinition{ID: "intro", Name: "Intro", Type: corpus.BeatExpositionLore},
		corpus.BeatDefinition{ID: "chatter", Name: "Chatter", Type: corpus.BeatExpositionLore, Repeatable: true},
		corpus.BeatDefinition{ID: "gated", Name: "Gated", Type: corpus.BeatClimax, Prerequisites: []string{"intro"}},
		corpus.BeatDefinition{ID: "flagged", Name: "Flagged", Type: corpus.BeatClimax, Prerequisites: []string{"can_access_flagged"}},
	)
	st := state.NewStoryState(storyID, sessionID, state.Defaults{}, time.Now())

	assert.Equal(t, []string{"intro", "chatter"}, ids(Available(st, c)))

	st.Complete("intro")
	st.Complete("chatter")
	assert.Equal(t, []string{"chatter", "gated"}, ids(Available(st, c)))

	st.SetFlag("can_access_flagged", true)
	assert.Equal(t, []string{"chatter", "gated", "flagged"}, ids(Available(st, c)))

	assert.Empty(t, Available(st, corpus.Empty(storyID)))
}

func TestEvaluate_SynonymVerbFiresMultiWordTrigger(t *testing.T) {
	e, _ := newEvaluator(t)
	c := testCorpus(corpus.BeatDefinition{
		ID:       "lost_in_the_garden",
		Name:     "Lost in the Garden",
		Type:     corpus.BeatExpositionLore,
		Triggers: []string{"look around"},
	})

	assert.False(t, e.Evaluate(c, sessionID, state.Defaults{}, "I search the hollow", "").Triggered())
	assert.True(t, e.Evaluate(c, sessionID, state.Defaults{}, "I search the hollow", lexicon.ActionExploration).Triggered())

	e, _ = newEvaluator(t)
	res := e.Evaluate(c, sessionID, state.Defaults{}, "I examine the area", "")
	require.True(t, res.Triggered())
	assert.Equal(t, []string{"lost_in_the_garden"}, res.StateMutations.CompletedBeats)
}
