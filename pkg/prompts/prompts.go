package prompts

import "github.com/jwebster45206/narrative-engine/pkg/pacing"

// StoryEventPrefix marks a queued story event in the assembled prompt.
const StoryEventPrefix = "STORY EVENT: "

// ContextHeader introduces the retrieved story facts.
const ContextHeader = `### Story Context
The following facts about the story world are relevant to the player's action. Use them to keep the narration consistent. Do not recite them verbatim.`

// EmptyContextPrompt stands in for the story context when retrieval found
// nothing, so the narrator still has a usable instruction.
const EmptyContextPrompt = `### Story Context
No specific story facts matched this action. Continue the scene naturally from the player's current location, stay consistent with what has already happened, and do not invent major characters or places.`

// UrgentHeader introduces beat actions that must happen this turn.
const UrgentHeader = `### Urgent Story Developments
These developments MUST be reflected in your next response:`

// HintsHeader introduces narrative hints from triggered beats.
const HintsHeader = `### Narrative Hints
Weave the following into the narration where it fits:`

// interventionPrompts tell the narrator how to correct the pacing.
var interventionPrompts = map[pacing.Intervention]string{
	pacing.InterventionInjectComplication: "The story has stalled. Introduce an unexpected complication that forces the player to respond.",
	pacing.InterventionIncreaseTension:    "The scene has been calm for too long. Raise the stakes with a threat, a deadline, or an unsettling discovery.",
	pacing.InterventionForceChange:        "The player keeps repeating the same action. Change the situation so that repeating it is no longer possible or useful.",
	pacing.InterventionRevealPlot:         "Nothing of consequence has been revealed yet. Reveal a clue that moves the main plot forward.",
}

// InterventionPrompt returns the narrator instruction for an intervention.
func InterventionPrompt(i pacing.Intervention) string {
	return interventionPrompts[i]
}
