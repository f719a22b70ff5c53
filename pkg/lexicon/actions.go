package lexicon

// ActionType is the optional caller-supplied classification of a player action.
type ActionType string

const (
	ActionExploration ActionType = "exploration"
	ActionDialogue    ActionType = "dialogue"
	ActionDecision    ActionType = "decision"
	ActionCombat      ActionType = "combat"
)

// ActionClasses maps each action type to the verbs that belong to it.
var ActionClasses = map[ActionType][]string{
	ActionExploration: {"look", "search", "examine", "explore", "investigate", "inspect", "observe", "check"},
	ActionDialogue:    {"speak", "talk", "ask", "say", "tell", "greet", "call"},
	ActionDecision:    {"go", "move", "enter", "choose", "decide", "follow", "leave", "accept", "refuse"},
	ActionCombat:      {"attack", "fight", "strike", "defend", "hit", "draw", "battle"},
}

// SynonymGroup is a canonical verb and the phrases treated as equivalent to it.
type SynonymGroup struct {
	Canonical string
	Variants  []string
}

// Terms returns the canonical verb followed by its variants.
func (g SynonymGroup) Terms() []string {
	return append([]string{g.Canonical}, g.Variants...)
}

// Synonyms is the verb synonym table used when matching triggers.
var Synonyms = []SynonymGroup{
	{Canonical: "look", Variants: []string{"examine", "observe", "inspect", "study"}},
	{Canonical: "search", Variants: []string{"look for", "find", "seek"}},
	{Canonical: "speak", Variants: []string{"talk", "say", "tell", "ask"}},
	{Canonical: "move", Variants: []string{"go", "walk", "travel"}},
	{Canonical: "take", Variants: []string{"grab", "pick up", "collect"}},
}

// Equivalents returns every term interchangeable with word, including word
// itself. Terms from all synonym groups that contain word are merged.
func Equivalents(word string) []string {
	word = Fold(word)
	out := []string{word}
	for _, group := range Synonyms {
		terms := group.Terms()
		for _, term := range terms {
			if term != word {
				continue
			}
			for _, t := range terms {
				if t != word {
					out = append(out, t)
				}
			}
			break
		}
	}
	return out
}

// Bucket is the coarse classification of an action used for momentum tracking.
type Bucket string

const (
	BucketExamine  Bucket = "examine"
	BucketMove     Bucket = "move"
	BucketTalk     Bucket = "talk"
	BucketInteract Bucket = "interact"
	BucketOther    Bucket = "other"
)

var bucketOrder = []struct {
	bucket Bucket
	words  []string
}{
	{BucketExamine, []string{"look", "examine", "inspect", "search", "study", "observe", "check", "investigate", "read"}},
	{BucketMove, []string{"go", "walk", "move", "enter", "travel", "run", "climb", "leave", "head", "return", "follow"}},
	{BucketTalk, []string{"talk", "speak", "ask", "say", "tell", "greet", "shout", "whisper", "call"}},
	{BucketInteract, []string{"take", "use", "open", "give", "grab", "pick", "push", "pull", "drop", "eat", "drink", "attack", "close"}},
}

// ClassifyAction assigns an action to its coarse bucket.
func ClassifyAction(action string) Bucket {
	words := Words(action)
	for _, b := range bucketOrder {
		for _, w := range words {
			for _, kw := range b.words {
				if w == kw {
					return b.bucket
				}
			}
		}
	}
	return BucketOther
}
