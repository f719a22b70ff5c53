// Package prompts renders a processed turn into the context block handed to
// the narrator model.
package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/retrieval"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Builder assembles the narrator context for a turn using a fluent interface.
type Builder struct {
	turn        *engine.Turn
	maxHints    int
	showScores  bool
	includeUser bool
}

// New creates a builder with default settings.
func New() *Builder {
	return &Builder{
		maxHints:    6,
		includeUser: true,
	}
}

// WithTurn sets the processed turn.
func (b *Builder) WithTurn(turn *engine.Turn) *Builder {
	b.turn = turn
	return b
}

// WithMaxHints caps how many narrative hints are included.
func (b *Builder) WithMaxHints(n int) *Builder {
	b.maxHints = n
	return b
}

// WithScores appends score breakdowns to each context entry (debugging aid).
func (b *Builder) WithScores(show bool) *Builder {
	b.showScores = show
	return b
}

// WithoutPlayerAction omits the trailing player action line.
func (b *Builder) WithoutPlayerAction() *Builder {
	b.includeUser = false
	return b
}

// Build renders the context block.
func (b *Builder) Build() (string, error) {
	if b.turn == nil {
		return "", fmt.Errorf("turn is required")
	}
	t := b.turn

	var sections []string
	sections = append(sections, b.storyHeader())
	sections = append(sections, b.contextSection())

	if len(t.PendingEvents) > 0 {
		var sb strings.Builder
		for i, ev := range t.PendingEvents {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(StoryEventPrefix + ev)
		}
		sections = append(sections, sb.String())
	}

	if len(t.Beats.UrgentActions) > 0 {
		sections = append(sections, UrgentHeader+"\n"+bullets(t.Beats.UrgentActions))
	}

	if hints := t.Beats.NarrativeHints; len(hints) > 0 {
		if b.maxHints > 0 && len(hints) > b.maxHints {
			hints = hints[:b.maxHints]
		}
		sections = append(sections, HintsHeader+"\n"+bullets(hints))
	}

	pacingLine := fmt.Sprintf("### Pacing\nTension: %s. Momentum: %s.", t.Pacing.Tension, t.Pacing.Momentum)
	if p := InterventionPrompt(t.Intervention); p != "" {
		pacingLine += "\n" + p
	}
	sections = append(sections, pacingLine)

	if t.InventorySummary != "" {
		sections = append(sections, "### Player Belongings\n"+t.InventorySummary)
	}
	if t.LocationItems != "" {
		sections = append(sections, "### Items Here\n"+t.LocationItems)
	}
	if b.includeUser && t.Request.Action != "" {
		sections = append(sections, "### Player Action\n"+t.Request.Action)
	}

	return strings.Join(sections, "\n\n"), nil
}

func (b *Builder) storyHeader() string {
	t := b.turn
	var sb strings.Builder
	title := t.StoryTitle
	if title == "" {
		title = t.Request.StoryID
	}
	sb.WriteString("### Story: " + title)
	if t.State != nil && t.State.CurrentLocation != "" {
		sb.WriteString("\nCurrent location: " + t.State.CurrentLocation)
	}
	if t.State != nil && len(t.State.CompletedBeats) > 0 {
		sb.WriteString(fmt.Sprintf("\nStory progress: %d beats completed", len(t.State.CompletedBeats)))
	}
	return sb.String()
}

func (b *Builder) contextSection() string {
	if len(b.turn.Context) == 0 {
		return EmptyContextPrompt
	}
	caser := cases.Title(language.English)
	var sb strings.Builder
	sb.WriteString(ContextHeader)
	for _, c := range b.turn.Context {
		label := strings.ReplaceAll(string(c.Metadata.Type), "_", " ")
		sb.WriteString(fmt.Sprintf("\n\n[%s] %s", caser.String(label), c.Metadata.Label()))
		if b.showScores {
			sb.WriteString(" " + scoreLine(c))
		}
		sb.WriteString("\n" + c.Content)
	}
	return sb.String()
}

func scoreLine(c retrieval.ScoredContext) string {
	return fmt.Sprintf("(total %.0f = relevance %.0f + relationship %.0f + story %.0f)",
		c.TotalScore(), c.RelevanceScore, c.RelationshipScore, c.StoryRelevanceScore)
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

// BuildContext is a convenience for the common case.
func BuildContext(turn *engine.Turn) (string, error) {
	return New().WithTurn(turn).Build()
}
