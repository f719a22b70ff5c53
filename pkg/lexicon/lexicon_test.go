package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "drops stop words and short tokens",
			query:    "I examine the door",
			expected: []string{"examine", "door"},
		},
		{
			name:     "folds case and trims punctuation",
			query:    "Whiskers! Where is the FOREST?",
			expected: []string{"whiskers", "forest"},
		},
		{
			name:     "keeps duplicates",
			query:    "door door",
			expected: []string{"door", "door"},
		},
		{
			name:     "keeps inner apostrophes",
			query:    "the cat's bowl",
			expected: []string{"cat's", "bowl"},
		},
		{
			name:     "empty query",
			query:    "",
			expected: nil,
		},
		{
			name:     "only stop words",
			query:    "what is it",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.query))
		})
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		term     string
		expected bool
	}{
		{"whole word", "The fox is near", "fox", true},
		{"case insensitive", "THE FOX", "fox", true},
		{"partial word is not a match", "the foxglove blooms", "fox", false},
		{"multi-word term uses substring", "you should pick up the key", "pick up", true},
		{"missing", "nothing here", "fox", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsWord(tt.text, tt.term))
		})
	}
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("I ask the oak for advice", []string{"guidance", "advice"}))
	assert.False(t, ContainsAny("I kick the oak", []string{"guidance", "advice"}))
	assert.False(t, ContainsAny("anything", nil))
}

func TestEquivalents(t *testing.T) {
	assert.Equal(t, []string{"look", "examine", "observe", "inspect", "study"}, Equivalents("look"))
	assert.Equal(t, []string{"examine", "look", "observe", "inspect", "study"}, Equivalents("Examine"))
	assert.Equal(t, []string{"grab", "take", "pick up", "collect"}, Equivalents("grab"))
	assert.Equal(t, []string{"door"}, Equivalents("door"))
}

func TestClassifyAction(t *testing.T) {
	tests := []struct {
		action   string
		expected Bucket
	}{
		{"look at the tree", BucketExamine},
		{"examine the rock", BucketExamine},
		{"look under the log", BucketExamine},
		{"walk north", BucketMove},
		{"ask the oak a question", BucketTalk},
		{"open the gate", BucketInteract},
		{"sing a song", BucketOther},
		{"", BucketOther},
		// examine wins over move when both appear
		{"go and look around", BucketExamine},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyAction(tt.action))
		})
	}
}

func TestEntityTable(t *testing.T) {
	table := NewEntityTable(
		Entity{ID: "whiskers", Kind: EntityCharacter},
		Entity{ID: "elder_oak", Kind: EntityCharacter, Keywords: []string{"Elder_Oak"}},
		Entity{ID: "whispering_woods", Kind: EntityLocation, Keywords: []string{"woods"}},
	)
	table.Add(Entity{ID: "whispering_woods", Kind: EntityLocation, Keywords: []string{"oak"}})

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"whiskers"}, table.Characters("meet_whiskers"))
	assert.Equal(t, []string{"elder_oak"}, table.Characters("ELDER_OAK_wisdom"))
	assert.Equal(t, []string{"whispering_woods"}, table.Locations("elder_oak_wisdom"))
	assert.Empty(t, table.Characters("enter_woods"))
	assert.Equal(t, []string{"whispering_woods"}, table.Locations("enter_woods"))

	var nilTable *EntityTable
	assert.Equal(t, 0, nilTable.Len())
	assert.Nil(t, nilTable.Characters("whiskers"))
}
