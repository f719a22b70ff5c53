package prompts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/narrative-engine/pkg/beats"
	"github.com/jwebster45206/narrative-engine/pkg/corpus"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/pacing"
	"github.com/jwebster45206/narrative-engine/pkg/retrieval"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

func testTurn() *engine.Turn {
	st := state.NewStoryState("whiskers_tale", "s1", state.Defaults{Location: "whispering_woods"}, time.Now())
	st.Complete("meet_whiskers")
	return &engine.Turn{
		Request:    engine.TurnRequest{StoryID: "whiskers_tale", SessionID: "s1", Action: "I ask the oak for advice"},
		StoryTitle: "Whiskers' Tale",
		State:      st,
		Context: []retrieval.ScoredContext{
			{
				Content:           "Character: Elder Oak\nRole: mentor",
				Metadata:          corpus.Metadata{Type: corpus.DocCharacter, ID: "elder_oak", Name: "Elder Oak"},
				RelevanceScore:    8,
				RelationshipScore: 10,
			},
			{
				Content:  "Story Beat: The Elder Oak Speaks",
				Metadata: corpus.Metadata{Type: corpus.DocBeat, ID: "elder_oak_wisdom", Title: "The Elder Oak Speaks"},
				Expanded: true,
			},
		},
		Beats: beats.Result{
			NarrativeHints: []string{"The fox fears running water", "Fireflies lead home"},
			UrgentActions:  []string{"CONFLICT: The Fox at the Gate demands an immediate response"},
		},
		Pacing:        pacing.State{Tension: pacing.TensionMedium, Momentum: pacing.MomentumSlow},
		Intervention:  pacing.InterventionRevealPlot,
		PendingEvents: []string{"CLIMAX: Homecoming is unfolding now"},
	}
}

func TestBuilder_Build(t *testing.T) {
	out, err := New().WithTurn(testTurn()).Build()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "### Story: Whiskers' Tale\nCurrent location: whispering_woods\nStory progress: 1 beats completed"))
	assert.Contains(t, out, ContextHeader)
	assert.Contains(t, out, "[Character] Elder Oak\nCharacter: Elder Oak\nRole: mentor")
	assert.Contains(t, out, "[Story Beat] The Elder Oak Speaks")
	assert.Contains(t, out, StoryEventPrefix+"CLIMAX: Homecoming is unfolding now")
	assert.Contains(t, out, UrgentHeader+"\n- CONFLICT: The Fox at the Gate demands an immediate response")
	assert.Contains(t, out, HintsHeader+"\n- The fox fears running water\n- Fireflies lead home")
	assert.Contains(t, out, "Tension: medium. Momentum: slow.")
	assert.Contains(t, out, InterventionPrompt(pacing.InterventionRevealPlot))
	assert.True(t, strings.HasSuffix(out, "### Player Action\nI ask the oak for advice"))
	assert.NotContains(t, out, "### Player Belongings")
	assert.NotContains(t, out, "(total")

	// events come before urgent actions
	assert.Less(t, strings.Index(out, StoryEventPrefix), strings.Index(out, UrgentHeader))
}

func TestBuilder_Options(t *testing.T) {
	turn := testTurn()
	turn.InventorySummary = "a rusty key"
	turn.LocationItems = "an acorn"

	out, err := New().
		WithTurn(turn).
		WithMaxHints(1).
		WithScores(true).
		WithoutPlayerAction().
		Build()
	require.NoError(t, err)

	assert.Contains(t, out, "- The fox fears running water")
	assert.NotContains(t, out, "Fireflies lead home")
	assert.Contains(t, out, "[Character] Elder Oak (total 18 = relevance 8 + relationship 10 + story 0)")
	assert.Contains(t, out, "### Player Belongings\na rusty key")
	assert.Contains(t, out, "### Items Here\nan acorn")
	assert.NotContains(t, out, "### Player Action")
}

func TestBuilder_EmptyTurn(t *testing.T) {
	turn := &engine.Turn{
		Request: engine.TurnRequest{StoryID: "whiskers_tale", Action: "sing"},
		Pacing:  pacing.State{Tension: pacing.TensionLow, Momentum: pacing.MomentumSteady},
	}

	out, err := BuildContext(turn)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "### Story: whiskers_tale\n\n"+EmptyContextPrompt))
	assert.NotContains(t, out, UrgentHeader)
	assert.NotContains(t, out, HintsHeader)
	assert.NotContains(t, out, StoryEventPrefix)
}

func TestBuilder_RequiresTurn(t *testing.T) {
	_, err := New().Build()
	assert.Error(t, err)
}

func TestInterventionPrompt(t *testing.T) {
	for _, i := range []pacing.Intervention{
		pacing.InterventionInjectComplication,
		pacing.InterventionIncreaseTension,
		pacing.InterventionForceChange,
		pacing.InterventionRevealPlot,
	} {
		assert.NotEmpty(t, InterventionPrompt(i), i)
	}
	assert.Empty(t, InterventionPrompt(pacing.InterventionNone))
}
