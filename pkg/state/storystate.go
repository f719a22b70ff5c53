// Package state holds the mutable per-session narrative record and the
// in-memory store that owns it.
package state

import (
	"maps"
	"slices"
	"time"
)

// RelationshipLevel is the player's standing with a character.
type RelationshipLevel string

const (
	RelationshipUnknown  RelationshipLevel = "unknown"
	RelationshipMet      RelationshipLevel = "met"
	RelationshipFriendly RelationshipLevel = "friendly"
	RelationshipHostile  RelationshipLevel = "hostile"
	RelationshipAllied   RelationshipLevel = "allied"
	RelationshipRomance  RelationshipLevel = "romance"
)

// Valid reports whether l is a known relationship level.
func (l RelationshipLevel) Valid() bool {
	switch l {
	case RelationshipUnknown, RelationshipMet, RelationshipFriendly, RelationshipHostile, RelationshipAllied, RelationshipRomance:
		return true
	}
	return false
}

// Relationship tracks one character's relationship with the player.
type Relationship struct {
	Level           RelationshipLevel `json:"level"`
	LastInteraction time.Time         `json:"lastInteraction"`
	KeyEvents       []string          `json:"keyEvents,omitempty"`
}

// PlayerChoice records a decision the player made at a beat.
type PlayerChoice struct {
	ID          string    `json:"id"`
	BeatID      string    `json:"beatId"`
	Choice      string    `json:"choice"`
	Consequence string    `json:"consequence"`
	Timestamp   time.Time `json:"timestamp"`
}

// Metadata is bookkeeping maintained by the store.
type Metadata struct {
	CreatedAt      time.Time     `json:"createdAt"`
	LastUpdated    time.Time     `json:"lastUpdated"`
	TotalPlayTime  time.Duration `json:"totalPlayTime"`
	MajorDecisions int           `json:"majorDecisions"`
}

// StoryState is the narrative progress of one (story, session) pair.
type StoryState struct {
	StoryID              string                  `json:"storyId"`
	SessionID            string                  `json:"sessionId"`
	CurrentLocation      string                  `json:"currentLocation"`
	CompletedBeats       []string                `json:"completedBeats"`
	ActiveBeats          []string                `json:"activeBeats"`
	DiscoveredCharacters []string                `json:"discoveredCharacters"`
	KnownLocations       []string                `json:"knownLocations"`
	PlayerChoices        []PlayerChoice          `json:"playerChoices"`
	RelationshipStates   map[string]Relationship `json:"relationshipStates"`
	RevealedLore         []string                `json:"revealedLore"`
	StoryFlags           map[string]bool         `json:"storyFlags"`
	Metadata             Metadata                `json:"metadata"`
}

// Defaults seeds a newly created StoryState.
type Defaults struct {
	Location     string
	StartingBeat string
}

// NewStoryState returns a fresh state with the defaults applied.
func NewStoryState(storyID, sessionID string, d Defaults, now time.Time) *StoryState {
	s := &StoryState{
		StoryID:              storyID,
		SessionID:            sessionID,
		CurrentLocation:      d.Location,
		CompletedBeats:       []string{},
		ActiveBeats:          []string{},
		DiscoveredCharacters: []string{},
		KnownLocations:       []string{},
		PlayerChoices:        []PlayerChoice{},
		RelationshipStates:   map[string]Relationship{},
		RevealedLore:         []string{},
		StoryFlags:           map[string]bool{},
		Metadata:             Metadata{CreatedAt: now, LastUpdated: now},
	}
	if d.Location != "" {
		s.KnownLocations = append(s.KnownLocations, d.Location)
	}
	if d.StartingBeat != "" {
		s.ActiveBeats = append(s.ActiveBeats, d.StartingBeat)
	}
	return s
}

// Clone returns a deep copy of s.
func (s *StoryState) Clone() *StoryState {
	if s == nil {
		return nil
	}
	c := *s
	c.CompletedBeats = slices.Clone(s.CompletedBeats)
	c.ActiveBeats = slices.Clone(s.ActiveBeats)
	c.DiscoveredCharacters = slices.Clone(s.DiscoveredCharacters)
	c.KnownLocations = slices.Clone(s.KnownLocations)
	c.RevealedLore = slices.Clone(s.RevealedLore)
	c.PlayerChoices = slices.Clone(s.PlayerChoices)
	c.StoryFlags = maps.Clone(s.StoryFlags)
	if s.RelationshipStates != nil {
		c.RelationshipStates = make(map[string]Relationship, len(s.RelationshipStates))
		for id, r := range s.RelationshipStates {
			r.KeyEvents = slices.Clone(r.KeyEvents)
			c.RelationshipStates[id] = r
		}
	}
	return &c
}

func (s *StoryState) HasCompleted(beatID string) bool { return slices.Contains(s.CompletedBeats, beatID) }
func (s *StoryState) IsActive(beatID string) bool     { return slices.Contains(s.ActiveBeats, beatID) }
func (s *StoryState) HasDiscovered(charID string) bool {
	return slices.Contains(s.DiscoveredCharacters, charID)
}
func (s *StoryState) KnowsLocation(locID string) bool { return slices.Contains(s.KnownLocations, locID) }
func (s *StoryState) HasRevealed(loreID string) bool  { return slices.Contains(s.RevealedLore, loreID) }

// Flag reports whether a story flag is set to true.
func (s *StoryState) Flag(name string) bool {
	return s.StoryFlags[name]
}

// Relationship returns the relationship entry for a character, if any.
func (s *StoryState) Relationship(charID string) (Relationship, bool) {
	r, ok := s.RelationshipStates[charID]
	return r, ok
}

// Complete moves a beat into CompletedBeats and out of ActiveBeats.
func (s *StoryState) Complete(beatID string) {
	s.ActiveBeats = slices.DeleteFunc(s.ActiveBeats, func(id string) bool { return id == beatID })
	s.CompletedBeats = appendUnique(s.CompletedBeats, beatID)
}

// Activate adds a beat to ActiveBeats if it is not already there.
func (s *StoryState) Activate(beatID string) {
	s.ActiveBeats = appendUnique(s.ActiveBeats, beatID)
}

// Discover adds a character to DiscoveredCharacters. It reports whether the
// character was new.
func (s *StoryState) Discover(charID string) bool {
	if s.HasDiscovered(charID) {
		return false
	}
	s.DiscoveredCharacters = append(s.DiscoveredCharacters, charID)
	return true
}

// Learn adds a location to KnownLocations.
func (s *StoryState) Learn(locID string) {
	s.KnownLocations = appendUnique(s.KnownLocations, locID)
}

// Reveal adds a lore id to RevealedLore.
func (s *StoryState) Reveal(loreID string) {
	s.RevealedLore = appendUnique(s.RevealedLore, loreID)
}

// SetFlag sets a story flag.
func (s *StoryState) SetFlag(name string, value bool) {
	if s.StoryFlags == nil {
		s.StoryFlags = map[string]bool{}
	}
	s.StoryFlags[name] = value
}

// SetRelationship changes a character's level and appends a key event.
func (s *StoryState) SetRelationship(charID string, level RelationshipLevel, event string, at time.Time) {
	if s.RelationshipStates == nil {
		s.RelationshipStates = map[string]Relationship{}
	}
	r := s.RelationshipStates[charID]
	r.Level = level
	r.LastInteraction = at
	if event != "" {
		r.KeyEvents = append(slices.Clone(r.KeyEvents), event)
	}
	s.RelationshipStates[charID] = r
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
