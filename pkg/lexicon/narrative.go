package lexicon

// Tension keyword sets, checked from most to least intense.
var (
	CriticalTensionWords = []string{"dying", "fatal", "collapse", "collapsing", "last breath", "overwhelmed", "doomed"}
	HighTensionWords     = []string{"danger", "dangerous", "attack", "attacks", "threat", "blood", "scream", "fight", "kill", "trap", "ambush", "chase", "weapon", "desperate"}
	MediumTensionWords   = []string{"tense", "uneasy", "strange", "mysterious", "suspicious", "warning", "nervous", "shadow", "shadows", "whisper", "unknown"}
	LowTensionWords      = []string{"calm", "peaceful", "quiet", "rest", "safe", "relax", "gentle", "serene", "cozy"}
)

// PlotWords mark a sentence as revealing a plot point.
var PlotWords = []string{"discover", "discovers", "discovered", "reveal", "reveals", "revealed", "secret", "realize", "realizes", "learn", "learns", "clue", "prophecy", "truth"}

// ConflictWords mark a sentence as introducing a conflict.
var ConflictWords = []string{"attack", "attacks", "fight", "battle", "ambush", "confront", "confronts", "enemy", "betray", "betrays", "threatens", "duel"}

// DeathPhrases end the player's life when they appear in a narrative.
var DeathPhrases = []string{"you die", "you have died", "you are dead", "you perish", "killed you", "your vision fades to black", "you breathe your last"}

// IntroductionMarkers precede a newly introduced character name.
var IntroductionMarkers = []string{"named", "called", "meet", "meets", "introduces"}

// ArrivalMarkers precede a newly introduced location name.
var ArrivalMarkers = []string{"enter", "enters", "arrive at", "arrives at", "reach", "reaches"}

// GuidanceWords are the request words used by guidance-gated lore beats.
var GuidanceWords = []string{"guidance", "wisdom", "help", "advice"}

// ConnectionWords signal that a location description links to another place.
var ConnectionWords = []string{"connection", "connected", "border", "path", "entrance", "exit"}
