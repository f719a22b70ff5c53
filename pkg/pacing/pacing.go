// Package pacing tracks narrative tension and momentum from recent turns and
// suggests when the story needs an outside push.
package pacing

import (
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jwebster45206/narrative-engine/pkg/lexicon"
)

type Tension string

const (
	TensionLow      Tension = "low"
	TensionMedium   Tension = "medium"
	TensionHigh     Tension = "high"
	TensionCritical Tension = "critical"
)

type Momentum string

const (
	MomentumStalled Momentum = "stalled"
	MomentumSlow    Momentum = "slow"
	MomentumSteady  Momentum = "steady"
	MomentumFast    Momentum = "fast"
)

// Intervention is a suggested correction for the narrator.
type Intervention string

const (
	InterventionNone               Intervention = ""
	InterventionInjectComplication Intervention = "INJECT_COMPLICATION"
	InterventionIncreaseTension    Intervention = "INCREASE_TENSION"
	InterventionForceChange        Intervention = "FORCE_CHANGE"
	InterventionRevealPlot         Intervention = "REVEAL_PLOT"
)

const (
	// HistoryLimit bounds the action and narrative windows.
	HistoryLimit = 5
	// DefaultExhaustionScenes is the scene count after which the player dies.
	DefaultExhaustionScenes = 15

	stalledWindow       = 3
	lowTensionLimit     = 3
	repetitionThreshold = 3
	plotDroughtScenes   = 5
	maxExtractLength    = 160
)

// StoryBeats collects what the narrative has introduced so far.
type StoryBeats struct {
	Characters []string `json:"characters"`
	Locations  []string `json:"locations"`
	PlotPoints []string `json:"plotPoints"`
	Conflicts  []string `json:"conflicts"`
}

// PlayerStatus is the alive/dead state of the player.
type PlayerStatus struct {
	Alive           bool   `json:"alive"`
	DeathCount      int    `json:"deathCount"`
	LastDeathReason string `json:"lastDeathReason,omitempty"`
}

// DeathRecord is one entry of the historical death log.
type DeathRecord struct {
	Reason string    `json:"reason"`
	Scene  int       `json:"scene"`
	At     time.Time `json:"at"`
}

// State is a snapshot of one session's pacing.
type State struct {
	Tension          Tension       `json:"tension"`
	Momentum         Momentum      `json:"momentum"`
	SceneCounter     int           `json:"sceneCounter"`
	LowTensionScenes int           `json:"lowTensionScenes"`
	LastActions      []string      `json:"lastActions"`
	LastNarratives   []string      `json:"lastNarratives"`
	StoryBeats       StoryBeats    `json:"storyBeats"`
	PlayerStatus     PlayerStatus  `json:"playerStatus"`
	DeathLog         []DeathRecord `json:"deathLog,omitempty"`
}

func newState() State {
	return State{
		Tension:      TensionLow,
		Momentum:     MomentumSteady,
		PlayerStatus: PlayerStatus{Alive: true},
	}
}

// Classifier holds the pacing of one session. It is safe for concurrent use.
type Classifier struct {
	mu               sync.Mutex
	st               State
	exhaustionScenes int
	// exhaustionBase is the scene counter at the last resurrection.
	exhaustionBase int
	now            func() time.Time
	touched        time.Time
}

// NewClassifier creates a classifier. exhaustionScenes of zero or less
// disables death by scene exhaustion.
func NewClassifier(exhaustionScenes int, now func() time.Time) *Classifier {
	if now == nil {
		now = time.Now
	}
	return &Classifier{st: newState(), exhaustionScenes: exhaustionScenes, now: now, touched: now()}
}

// State returns a copy of the current pacing state.
func (c *Classifier) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.st
	s.LastActions = append([]string(nil), c.st.LastActions...)
	s.LastNarratives = append([]string(nil), c.st.LastNarratives...)
	s.StoryBeats = StoryBeats{
		Characters: append([]string(nil), c.st.StoryBeats.Characters...),
		Locations:  append([]string(nil), c.st.StoryBeats.Locations...),
		PlotPoints: append([]string(nil), c.st.StoryBeats.PlotPoints...),
		Conflicts:  append([]string(nil), c.st.StoryBeats.Conflicts...),
	}
	s.DeathLog = append([]DeathRecord(nil), c.st.DeathLog...)
	return s
}

// UpdateFromNarrative folds one turn into the pacing state. Nothing changes
// while the player is dead.
func (c *Classifier) UpdateFromNarrative(narrative, action string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = c.now()
	if !c.st.PlayerStatus.Alive {
		return
	}

	c.st.LastActions = pushBounded(c.st.LastActions, action)
	c.st.LastNarratives = pushBounded(c.st.LastNarratives, narrative)
	c.st.SceneCounter++

	c.extract(narrative)

	if t, ok := classifyTension(narrative); ok {
		c.st.Tension = t
	}
	if c.st.Tension == TensionLow {
		c.st.LowTensionScenes++
	} else {
		c.st.LowTensionScenes = 0
	}
	c.st.Momentum = c.momentum()

	if phrase, ok := deathPhrase(narrative); ok {
		c.die(phrase)
	} else if c.exhaustionScenes > 0 && c.st.SceneCounter-c.exhaustionBase > c.exhaustionScenes {
		c.die("exhaustion: the story ran past its final scene")
	}
}

// NeedsIntervention returns the first applicable correction, or
// InterventionNone.
func (c *Classifier) NeedsIntervention() Intervention {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.st.Momentum == MomentumStalled:
		return InterventionInjectComplication
	case c.st.LowTensionScenes > lowTensionLimit:
		return InterventionIncreaseTension
	case repetitive(c.st.LastActions):
		return InterventionForceChange
	case c.st.SceneCounter > plotDroughtScenes && len(c.st.StoryBeats.PlotPoints) == 0:
		return InterventionRevealPlot
	}
	return InterventionNone
}

// Die marks the player dead for the given reason. It reports false if the
// player was already dead.
func (c *Classifier) Die(reason string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.st.PlayerStatus.Alive {
		return false
	}
	c.die(reason)
	return true
}

func (c *Classifier) die(reason string) {
	c.st.PlayerStatus.Alive = false
	c.st.PlayerStatus.DeathCount++
	c.st.PlayerStatus.LastDeathReason = reason
	c.st.DeathLog = append(c.st.DeathLog, DeathRecord{Reason: reason, Scene: c.st.SceneCounter, At: c.now()})
}

// Resurrect brings a dead player back with medium tension and steady
// momentum. It reports false if the player was alive.
func (c *Classifier) Resurrect() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = c.now()
	if c.st.PlayerStatus.Alive {
		return false
	}
	c.st.PlayerStatus.Alive = true
	c.exhaustionBase = c.st.SceneCounter
	c.st.Tension = TensionMedium
	c.st.Momentum = MomentumSteady
	return true
}

// ResetForRestart clears counters and histories but keeps the death count
// and the death log.
func (c *Classifier) ResetForRestart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = c.now()
	deaths, log, reason := c.st.PlayerStatus.DeathCount, c.st.DeathLog, c.st.PlayerStatus.LastDeathReason
	c.st = newState()
	c.exhaustionBase = 0
	c.st.PlayerStatus.DeathCount = deaths
	c.st.PlayerStatus.LastDeathReason = reason
	c.st.DeathLog = log
}

func (c *Classifier) touch() {
	c.mu.Lock()
	c.touched = c.now()
	c.mu.Unlock()
}

func (c *Classifier) lastTouched() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

func (c *Classifier) momentum() Momentum {
	if n := len(c.st.LastActions); n >= stalledWindow {
		recent := c.st.LastActions[n-stalledWindow:]
		bucket := lexicon.ClassifyAction(recent[0])
		same := true
		for _, a := range recent[1:] {
			if lexicon.ClassifyAction(a) != bucket {
				same = false
				break
			}
		}
		if same {
			return MomentumStalled
		}
	}
	switch {
	case len(c.st.StoryBeats.PlotPoints) > 0 || len(c.st.StoryBeats.Conflicts) > 0:
		return MomentumFast
	case c.st.SceneCounter > 2:
		return MomentumSlow
	}
	return MomentumSteady
}

func classifyTension(narrative string) (Tension, bool) {
	switch {
	case lexicon.ContainsAny(narrative, lexicon.CriticalTensionWords):
		return TensionCritical, true
	case lexicon.ContainsAny(narrative, lexicon.HighTensionWords):
		return TensionHigh, true
	case lexicon.ContainsAny(narrative, lexicon.MediumTensionWords):
		return TensionMedium, true
	case lexicon.ContainsAny(narrative, lexicon.LowTensionWords):
		return TensionLow, true
	}
	return "", false
}

func deathPhrase(narrative string) (string, bool) {
	folded := lexicon.Fold(narrative)
	for _, p := range lexicon.DeathPhrases {
		if strings.Contains(folded, p) {
			return p, true
		}
	}
	return "", false
}

func repetitive(actions []string) bool {
	counts := make(map[string]int, len(actions))
	for _, a := range actions {
		key := strings.Join(lexicon.Words(a), " ")
		if key == "" {
			continue
		}
		counts[key]++
		if counts[key] >= repetitionThreshold {
			return true
		}
	}
	return false
}

func pushBounded(list []string, v string) []string {
	list = append(list, v)
	if len(list) > HistoryLimit {
		list = append([]string(nil), list[len(list)-HistoryLimit:]...)
	}
	return list
}

var (
	characterPattern = markerPattern(lexicon.IntroductionMarkers, `([A-Z][\w']*)`)
	locationPattern  = markerPattern(lexicon.ArrivalMarkers, `(?:the\s+)?([A-Z][\w']*(?:\s+[A-Z][\w']*)*)`)
	sentenceSplit    = regexp.MustCompile(`[.!?]+`)
)

func markerPattern(markers []string, capture string) *regexp.Regexp {
	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(m), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i:\b(?:` + strings.Join(quoted, "|") + `)\s+)` + capture)
}

func (c *Classifier) extract(narrative string) {
	b := &c.st.StoryBeats
	for _, m := range characterPattern.FindAllStringSubmatch(narrative, -1) {
		b.Characters = appendUnique(b.Characters, m[1])
	}
	for _, m := range locationPattern.FindAllStringSubmatch(narrative, -1) {
		b.Locations = appendUnique(b.Locations, m[1])
	}
	for _, sentence := range sentenceSplit.Split(narrative, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if lexicon.ContainsAny(sentence, lexicon.PlotWords) {
			b.PlotPoints = appendUnique(b.PlotPoints, truncate(sentence))
		}
		if lexicon.ContainsAny(sentence, lexicon.ConflictWords) {
			b.Conflicts = appendUnique(b.Conflicts, truncate(sentence))
		}
	}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func truncate(s string) string {
	if len(s) <= maxExtractLength {
		return s
	}
	cut := maxExtractLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
