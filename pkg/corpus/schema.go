package corpus

import (
	"fmt"
	"strings"
)

// StoryInfo is the optional story.json file.
type StoryInfo struct {
	Title            string `json:"title"`
	StartingLocation string `json:"starting_location"`
	StartingBeat     string `json:"starting_beat"`
}

// CharacterSpec is one entry of characters.json. Unknown fields are ignored.
type CharacterSpec struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role,omitempty"`
	Description string   `json:"description,omitempty"`
	Personality string   `json:"personality,omitempty"`
	Background  string   `json:"background,omitempty"`
	Connections []string `json:"connections,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	StoryWeight *float64 `json:"story_weight,omitempty"`
}

// LocationSpec is one entry of locations.json.
type LocationSpec struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Atmosphere  string   `json:"atmosphere,omitempty"`
	Features    []string `json:"features,omitempty"`
	Connections []string `json:"connections,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	StoryWeight *float64 `json:"story_weight,omitempty"`
}

// LoreSpec is one entry of lore.json.
type LoreSpec struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category,omitempty"`
	Content     string   `json:"content"`
	StoryWeight *float64 `json:"story_weight,omitempty"`
}

type section struct {
	label string
	value string
}

func render(header string, sections ...section) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, s := range sections {
		if strings.TrimSpace(s.value) == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n%s: %s", s.label, s.value)
	}
	return sb.String()
}

func (c CharacterSpec) document() Document {
	return Document{
		Content: render("Character: "+c.Name,
			section{"Role", c.Role},
			section{"Description", c.Description},
			section{"Personality", c.Personality},
			section{"Background", c.Background},
		),
		Metadata: Metadata{
			Type:        DocCharacter,
			ID:          c.ID,
			Name:        c.Name,
			Category:    fallback(c.Role, "character"),
			Connections: c.Connections,
			StoryWeight: c.StoryWeight,
		},
	}
}

func (l LocationSpec) document() Document {
	return Document{
		Content: render("Location: "+l.Name,
			section{"Description", l.Description},
			section{"Atmosphere", l.Atmosphere},
			section{"Features", strings.Join(l.Features, ", ")},
			section{"Connections", strings.Join(l.Connections, ", ")},
		),
		Metadata: Metadata{
			Type:        DocLocation,
			ID:          l.ID,
			Name:        l.Name,
			Category:    fallback(l.Category, "location"),
			Connections: l.Connections,
			StoryWeight: l.StoryWeight,
		},
	}
}

func (b BeatDefinition) document() Document {
	return Document{
		Content: render("Story Beat: "+b.Name,
			section{"Type", string(b.Type)},
			section{"Description", b.Description},
			section{"Significance", b.StorySignificance},
		),
		Metadata: Metadata{
			Type:        DocBeat,
			ID:          b.ID,
			Title:       b.Name,
			Category:    string(b.Type),
			StoryWeight: b.StoryWeight,
		},
	}
}

func (l LoreSpec) document() Document {
	return Document{
		Content: render("Lore: "+l.Title) + "\n" + l.Content,
		Metadata: Metadata{
			Type:        DocLore,
			ID:          l.ID,
			Title:       l.Title,
			Category:    fallback(l.Category, "lore"),
			StoryWeight: l.StoryWeight,
		},
	}
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
