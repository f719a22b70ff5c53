package lexicon

import "strings"

// EntityKind distinguishes characters from locations in an EntityTable.
type EntityKind string

const (
	EntityCharacter EntityKind = "character"
	EntityLocation  EntityKind = "location"
)

// Entity links a character or location id to the keywords that imply it.
type Entity struct {
	ID       string     `json:"id"`
	Kind     EntityKind `json:"kind"`
	Keywords []string   `json:"keywords"`
}

// EntityTable maps free text (usually a beat id) to the characters and
// locations it refers to. It replaces hard-coded name lists so each story can
// ship its own table.
type EntityTable struct {
	entities []Entity
}

// NewEntityTable builds a table from the given entities. Keywords are folded;
// an entity with no keywords matches on its id.
func NewEntityTable(entities ...Entity) *EntityTable {
	t := &EntityTable{}
	for _, e := range entities {
		t.Add(e)
	}
	return t
}

// Add registers an entity, merging keywords if the id is already present.
func (t *EntityTable) Add(e Entity) {
	keywords := make([]string, 0, len(e.Keywords)+1)
	for _, kw := range e.Keywords {
		if kw = Fold(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		keywords = append(keywords, Fold(e.ID))
	}
	for i := range t.entities {
		if t.entities[i].ID == e.ID && t.entities[i].Kind == e.Kind {
			t.entities[i].Keywords = append(t.entities[i].Keywords, keywords...)
			return
		}
	}
	t.entities = append(t.entities, Entity{ID: e.ID, Kind: e.Kind, Keywords: keywords})
}

// Len returns the number of entities in the table.
func (t *EntityTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entities)
}

// Characters returns the character ids implied by text, in table order.
func (t *EntityTable) Characters(text string) []string {
	return t.extract(text, EntityCharacter)
}

// Locations returns the location ids implied by text, in table order.
func (t *EntityTable) Locations(text string) []string {
	return t.extract(text, EntityLocation)
}

func (t *EntityTable) extract(text string, kind EntityKind) []string {
	if t == nil {
		return nil
	}
	folded := Fold(text)
	var ids []string
	for _, e := range t.entities {
		if e.Kind != kind {
			continue
		}
		for _, kw := range e.Keywords {
			if strings.Contains(folded, kw) {
				ids = append(ids, e.ID)
				break
			}
		}
	}
	return ids
}
