// Package engine exposes the narrative context operations used by prompt
// assembly: story state access, contextual retrieval, beat triggering and
// pacing, plus a single-call turn pipeline.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/jwebster45206/narrative-engine/pkg/beats"
	"github.com/jwebster45206/narrative-engine/pkg/corpus"
	"github.com/jwebster45206/narrative-engine/pkg/pacing"
	"github.com/jwebster45206/narrative-engine/pkg/retrieval"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// InventorySummarizer describes the player's inventory as free text.
type InventorySummarizer interface {
	PlayerInventorySummary(ctx context.Context, userID, sessionID string) (string, error)
}

// LocationItemsSummarizer describes the items lying at a location.
type LocationItemsSummarizer interface {
	LocationItemsSummary(ctx context.Context, storyID, locationID string) (string, error)
}

// Snapshotter persists committed story states outside the process.
type Snapshotter interface {
	SaveStoryState(ctx context.Context, st *state.StoryState) error
	LoadStoryState(ctx context.Context, storyID, sessionID string) (*state.StoryState, error)
}

// EventQueue carries story events from one turn to the next.
type EventQueue interface {
	Enqueue(ctx context.Context, storyID, sessionID string, events ...string) error
	Dequeue(ctx context.Context, storyID, sessionID string) ([]string, error)
}

// Engine is safe for concurrent use. Turns for the same session are
// serialized; different sessions proceed in parallel.
type Engine struct {
	corpora   *corpus.Cache
	store     *state.Store
	retrieval *retrieval.Engine
	beats     *beats.Evaluator
	pacing    *pacing.Tracker
	logger    *slog.Logger

	defaults         state.Defaults
	maxResults       int
	exhaustionScenes int

	snapshots     Snapshotter
	events        EventQueue
	inventory     InventorySummarizer
	locationItems LocationItemsSummarizer
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaults overrides the starting location and beat taken from the corpus.
func WithDefaults(location, startingBeat string) Option {
	return func(e *Engine) { e.defaults = state.Defaults{Location: location, StartingBeat: startingBeat} }
}

// WithMaxResults sets how many scored documents a turn retrieves before expansion.
func WithMaxResults(n int) Option {
	return func(e *Engine) { e.maxResults = n }
}

// WithExhaustionScenes sets the scene count after which the player dies; zero disables it.
func WithExhaustionScenes(n int) Option {
	return func(e *Engine) { e.exhaustionScenes = n }
}

// WithSnapshots persists every committed turn through s.
func WithSnapshots(s Snapshotter) Option {
	return func(e *Engine) { e.snapshots = s }
}

// WithEventQueue carries urgent beat actions into the following turn.
func WithEventQueue(q EventQueue) Option {
	return func(e *Engine) { e.events = q }
}

// WithInventory sets the inventory collaborator.
func WithInventory(inv InventorySummarizer) Option {
	return func(e *Engine) { e.inventory = inv }
}

// WithLocationItems sets the world-items collaborator.
func WithLocationItems(li LocationItemsSummarizer) Option {
	return func(e *Engine) { e.locationItems = li }
}

// New creates an engine over a corpus cache and a state store.
func New(corpora *corpus.Cache, store *state.Store, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		corpora:          corpora,
		store:            store,
		retrieval:        retrieval.New(logger),
		beats:            beats.NewEvaluator(store, logger),
		logger:           logger,
		maxResults:       retrieval.DefaultMaxResults,
		exhaustionScenes: pacing.DefaultExhaustionScenes,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pacing = pacing.NewTracker(e.exhaustionScenes, nil)
	return e
}

func (e *Engine) defaultsFor(c *corpus.Corpus) state.Defaults {
	d := state.Defaults{Location: c.DefaultLocation, StartingBeat: c.StartingBeat}
	if e.defaults.Location != "" {
		d.Location = e.defaults.Location
	}
	if e.defaults.StartingBeat != "" {
		d.StartingBeat = e.defaults.StartingBeat
	}
	return d
}

// GetOrCreateStoryState returns the session's state, creating it on first access.
func (e *Engine) GetOrCreateStoryState(storyID, sessionID string) *state.StoryState {
	return e.store.GetOrCreate(storyID, sessionID, e.defaultsFor(e.corpora.Get(storyID)))
}

// UpdateStoryState shallow-merges patch into the session's state.
func (e *Engine) UpdateStoryState(storyID, sessionID string, patch state.Patch) *state.StoryState {
	unlock := e.store.Lock(storyID, sessionID)
	defer unlock()
	e.GetOrCreateStoryState(storyID, sessionID)
	return e.store.Update(storyID, sessionID, patch)
}

// RecordPlayerChoice records a decision made at a beat. Beats unknown to the
// corpus are treated as non-repeatable.
func (e *Engine) RecordPlayerChoice(storyID, sessionID, beatID, choice, consequence string) *state.StoryState {
	unlock := e.store.Lock(storyID, sessionID)
	defer unlock()
	e.GetOrCreateStoryState(storyID, sessionID)
	b, _ := e.corpora.Get(storyID).Beat(beatID)
	return e.store.RecordChoice(storyID, sessionID, beatID, choice, consequence, b.Repeatable)
}

// SearchStoryContext ranks the story's documents for query against the
// session's current state.
func (e *Engine) SearchStoryContext(storyID, sessionID, query string, maxResults int) []retrieval.ScoredContext {
	c := e.corpora.Get(storyID)
	st := e.store.GetOrCreate(storyID, sessionID, e.defaultsFor(c))
	return e.retrieval.Search(st, query, c.Documents, maxResults)
}

// AnalyzeAndTriggerBeats evaluates the story's beats against a player action
// and commits their consequences.
func (e *Engine) AnalyzeAndTriggerBeats(storyID, sessionID, action string, actionType ActionType) beats.Result {
	unlock := e.store.Lock(storyID, sessionID)
	defer unlock()
	c := e.corpora.Get(storyID)
	return e.beats.Evaluate(c, sessionID, e.defaultsFor(c), action, actionType)
}

// GetAvailableBeats lists beats whose prerequisites are met and which have
// not been completed, independent of any action.
func (e *Engine) GetAvailableBeats(storyID, sessionID string) []corpus.BeatDefinition {
	c := e.corpora.Get(storyID)
	st := e.store.GetOrCreate(storyID, sessionID, e.defaultsFor(c))
	return beats.Available(st, c)
}

// RecordNarrative feeds the narrator's text for a turn into the session's
// pacing classifier.
func (e *Engine) RecordNarrative(storyID, sessionID, narrative, action string) pacing.State {
	p := e.pacing.For(storyID, sessionID)
	p.UpdateFromNarrative(narrative, action)
	return p.State()
}

// Pacing returns the session's pacing state and suggested intervention.
func (e *Engine) Pacing(storyID, sessionID string) (pacing.State, pacing.Intervention) {
	p := e.pacing.For(storyID, sessionID)
	return p.State(), p.NeedsIntervention()
}

// Resurrect revives a dead player. It reports false if the player was alive.
func (e *Engine) Resurrect(storyID, sessionID string) bool {
	return e.pacing.For(storyID, sessionID).Resurrect()
}

// Restart resets the session's pacing for a new attempt, keeping its death history.
func (e *Engine) Restart(storyID, sessionID string) {
	e.pacing.For(storyID, sessionID).ResetForRestart()
}

// Restore loads a session from the snapshot store into memory. It reports
// whether a snapshot was found.
func (e *Engine) Restore(ctx context.Context, storyID, sessionID string) (bool, error) {
	if e.snapshots == nil {
		return false, nil
	}
	st, err := e.snapshots.LoadStoryState(ctx, storyID, sessionID)
	if err != nil || st == nil {
		return false, err
	}
	unlock := e.store.Lock(storyID, sessionID)
	defer unlock()
	e.store.Put(st)
	return true, nil
}

// StartSweeper evicts idle sessions from the state store and the pacing
// tracker every interval until ctx is cancelled.
func (e *Engine) StartSweeper(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				states := e.store.Sweep(maxAge)
				trackers := e.pacing.Sweep(maxAge)
				if states > 0 || trackers > 0 {
					e.logger.Info("Swept idle sessions", "states", states, "pacing", trackers, "max_age", maxAge)
				}
			}
		}
	}()
}

// Corpus returns the cached corpus for a story.
func (e *Engine) Corpus(storyID string) *corpus.Corpus {
	return e.corpora.Get(storyID)
}
