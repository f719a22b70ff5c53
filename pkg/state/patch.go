package state

import (
	"maps"
	"slices"
)

// Patch is a partial update. Nil fields are left untouched; non-nil fields
// replace the stored value wholesale.
type Patch struct {
	CurrentLocation      *string
	CompletedBeats       *[]string
	ActiveBeats          *[]string
	DiscoveredCharacters *[]string
	KnownLocations       *[]string
	PlayerChoices        *[]PlayerChoice
	RelationshipStates   map[string]Relationship
	RevealedLore         *[]string
	StoryFlags           map[string]bool
}

// PatchFrom builds a patch that replaces every narrative field of s.
func PatchFrom(s *StoryState) Patch {
	c := s.Clone()
	return Patch{
		CurrentLocation:      &c.CurrentLocation,
		CompletedBeats:       &c.CompletedBeats,
		ActiveBeats:          &c.ActiveBeats,
		DiscoveredCharacters: &c.DiscoveredCharacters,
		KnownLocations:       &c.KnownLocations,
		PlayerChoices:        &c.PlayerChoices,
		RelationshipStates:   c.RelationshipStates,
		RevealedLore:         &c.RevealedLore,
		StoryFlags:           c.StoryFlags,
	}
}

// WithLocation is a convenience for a patch that only moves the player.
func WithLocation(location string) Patch {
	return Patch{CurrentLocation: &location}
}

// apply merges p into s. s must be a private copy.
func (p Patch) apply(s *StoryState) {
	if p.CurrentLocation != nil {
		s.CurrentLocation = *p.CurrentLocation
	}
	if p.CompletedBeats != nil {
		s.CompletedBeats = slices.Clone(*p.CompletedBeats)
	}
	if p.ActiveBeats != nil {
		s.ActiveBeats = slices.Clone(*p.ActiveBeats)
	}
	if p.DiscoveredCharacters != nil {
		s.DiscoveredCharacters = slices.Clone(*p.DiscoveredCharacters)
	}
	if p.KnownLocations != nil {
		s.KnownLocations = slices.Clone(*p.KnownLocations)
	}
	if p.PlayerChoices != nil {
		s.PlayerChoices = slices.Clone(*p.PlayerChoices)
	}
	if p.RelationshipStates != nil {
		s.RelationshipStates = maps.Clone(p.RelationshipStates)
	}
	if p.RevealedLore != nil {
		s.RevealedLore = slices.Clone(*p.RevealedLore)
	}
	if p.StoryFlags != nil {
		s.StoryFlags = maps.Clone(p.StoryFlags)
	}
}
