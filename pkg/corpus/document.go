// Package corpus turns a story's static JSON files into the flat list of
// documents consumed by retrieval, plus the beat definitions consumed by the
// trigger evaluator.
package corpus

import "github.com/jwebster45206/narrative-engine/pkg/lexicon"

// DocumentType identifies which kind of story fact a document carries.
type DocumentType string

const (
	DocCharacter DocumentType = "character"
	DocLocation  DocumentType = "location"
	DocBeat      DocumentType = "story_beat"
	DocLore      DocumentType = "lore"
)

// Metadata describes a document. Name is set for characters and locations,
// Title for beats and lore.
type Metadata struct {
	Type        DocumentType `json:"type"`
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	Title       string       `json:"title,omitempty"`
	Category    string       `json:"category"`
	Connections []string     `json:"connections,omitempty"`
	StoryWeight *float64     `json:"storyWeight,omitempty"`
}

// Label returns the document's display name, preferring Name over Title.
func (m Metadata) Label() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Title
}

// Document is one immutable unit of world knowledge.
type Document struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Corpus is everything loaded for one story.
type Corpus struct {
	StoryID         string
	Title           string
	Documents       []Document
	Beats           []BeatDefinition
	Entities        *lexicon.EntityTable
	DefaultLocation string
	StartingBeat    string
}

// Empty returns a corpus with no documents or beats.
func Empty(storyID string) *Corpus {
	return &Corpus{StoryID: storyID, Entities: lexicon.NewEntityTable()}
}

// Beat returns the beat definition with the given id.
func (c *Corpus) Beat(id string) (BeatDefinition, bool) {
	for _, b := range c.Beats {
		if b.ID == id {
			return b, true
		}
	}
	return BeatDefinition{}, false
}
