package beats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/narrative-engine/pkg/lexicon"
)

func TestMatchesTriggers(t *testing.T) {
	tests := []struct {
		name       string
		action     string
		triggers   []string
		actionType lexicon.ActionType
		expected   bool
	}{
		{"words with stop words between", "I examine the door", []string{"examine door"}, "", true},
		{"exact substring", "slowly open gate now", []string{"open gate"}, "", true},
		{"action inside trigger", "door", []string{"examine the door"}, "", true},
		{"stop-word action is not reversed", "the", []string{"examine the door"}, "", false},
		{"synonym verb", "look at the door", []string{"examine door"}, "", true},
		{"inflected words", "I examined the doors", []string{"examine door"}, "", true},
		{"multi-word synonym", "pick up the key", []string{"take key"}, "", true},
		{"case insensitive", "EXAMINE DOOR", []string{"examine door"}, "", true},
		{"any trigger suffices", "open gate", []string{"examine door", "open gate"}, "", true},
		{"unrelated action", "walk north", []string{"examine door"}, "", false},
		{"synonym verb alone suffices", "examine the window", []string{"examine door"}, "", true},
		{"look around by examining", "I examine the area", []string{"look around"}, "", true},
		{"look around by inspecting", "I inspect the flowerbeds", []string{"look around"}, "", true},
		{"look around by studying", "I study the garden wall", []string{"look around"}, "", true},
		{"move synonym", "I walk to the gate", []string{"go north"}, "", true},
		{"object alone does not match", "kick the door", []string{"examine door"}, "", false},
		{"empty action", "", []string{"examine door"}, "", false},
		{"blank trigger ignored", "walk", []string{"  "}, "", false},
		{"action class verb", "check the statue", []string{"investigate statue"}, lexicon.ActionExploration, true},
		{"action class required for class verb", "check the statue", []string{"investigate statue"}, "", false},
		{"wrong action class", "check the statue", []string{"investigate statue"}, lexicon.ActionCombat, false},
		{"exploration class across synonym groups", "I search the hollow", []string{"look around"}, lexicon.ActionExploration, true},
		{"search outside the look group", "I search the hollow", []string{"look around"}, "", false},
		{"dialogue class", "I greet the cat", []string{"ask whiskers"}, lexicon.ActionDialogue, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchesTriggers(tt.action, tt.triggers, tt.actionType))
		})
	}
}

func TestMatchesDialogue(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		triggers []string
		expected bool
	}{
		{"phrase present", "I say hello cat", []string{"hello cat"}, true},
		{"stemmed trigger", "I search the room", []string{"searching"}, true},
		{"every word needed", "hello there", []string{"hello cat"}, false},
		{"case insensitive", "HERE KITTY", []string{"here kitty"}, true},
		{"no match", "walk away", []string{"searching"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchesDialogue(tt.action, tt.triggers))
		})
	}
}

func TestStem(t *testing.T) {
	assert.Equal(t, "search", stem("searching"))
	assert.Equal(t, "open", stem("opened"))
	assert.Equal(t, "box", stem("boxes"))
	assert.Equal(t, "door", stem("doors"))
	assert.Equal(t, "is", stem("is"))
	assert.Equal(t, "bus", stem("bus"))
}
