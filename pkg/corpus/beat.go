package corpus

import (
	"bytes"
	"encoding/json"
)

// BeatType classifies a story beat.
type BeatType string

const (
	BeatDecisionPoint         BeatType = "decision_point"
	BeatCharacterIntroduction BeatType = "character_introduction"
	BeatMajorConflict         BeatType = "major_conflict"
	BeatClimax                BeatType = "climax"
	BeatExpositionLore        BeatType = "exposition_lore"
)

// Valid reports whether t is one of the known beat types.
func (t BeatType) Valid() bool {
	switch t {
	case BeatDecisionPoint, BeatCharacterIntroduction, BeatMajorConflict, BeatClimax, BeatExpositionLore:
		return true
	}
	return false
}

// Choice is one option offered by a decision beat.
type Choice struct {
	ID          string `json:"id,omitempty"`
	Text        string `json:"text"`
	LeadsTo     string `json:"leads_to,omitempty"`
	Consequence string `json:"consequence,omitempty"`
}

// Gating restricts a beat to a location and/or a set of request words.
type Gating struct {
	Location    string   `json:"location,omitempty"`
	AnyKeywords []string `json:"any_keywords,omitempty"`
}

// StringList accepts either a single JSON string or an array of strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str == "" {
			*s = nil
		} else {
			*s = StringList{str}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

// BeatDefinition is a predefined plot event. It is read-only at runtime.
type BeatDefinition struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name"`
	Type                   BeatType          `json:"type"`
	Description            string            `json:"description,omitempty"`
	Triggers               []string          `json:"triggers,omitempty"`
	DialogueTriggers       []string          `json:"dialogue_triggers,omitempty"`
	Prerequisites          []string          `json:"prerequisites,omitempty"`
	Repeatable             bool              `json:"repeatable,omitempty"`
	Choices                []Choice          `json:"choices,omitempty"`
	KeyInformationRevealed StringList        `json:"key_information_revealed,omitempty"`
	StorySignificance      string            `json:"story_significance,omitempty"`
	WisdomShared           StringList        `json:"wisdom_shared,omitempty"`
	MultipleOutcomes       json.RawMessage   `json:"multiple_outcomes,omitempty"`
	FinalChoices           json.RawMessage   `json:"final_choices,omitempty"`
	Gating                 *Gating           `json:"gating,omitempty"`
	RevealsLore            []string          `json:"reveals_lore,omitempty"`
	RelationshipChanges    map[string]string `json:"relationship_changes,omitempty"`
	StoryWeight            *float64          `json:"story_weight,omitempty"`
}

// HasMultipleOutcomes reports whether the beat declares multiple outcomes.
func (b BeatDefinition) HasMultipleOutcomes() bool {
	return present(b.MultipleOutcomes)
}

// HasFinalChoices reports whether the beat declares final choices.
func (b BeatDefinition) HasFinalChoices() bool {
	return present(b.FinalChoices)
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	switch string(trimmed) {
	case "null", "false", "[]", "{}", `""`:
		return false
	}
	return true
}
