package state

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

const (
	lockStripes = 64
	// idleGap caps how much wall time between two updates counts as play time.
	idleGap = 30 * time.Minute
)

// Key identifies a story state.
type Key struct {
	StoryID   string
	SessionID string
}

func (k Key) String() string {
	return k.StoryID + ":" + k.SessionID
}

// Store owns every StoryState in the process. Entries are replaced whole on
// each write, so readers and the sweeper never observe a half-applied update.
// Callers that run read-evaluate-write sequences hold the session lock from
// Lock for the duration.
type Store struct {
	mu     sync.RWMutex
	states map[Key]*StoryState

	locks [lockStripes]sync.Mutex

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		states: make(map[Key]*StoryState),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lock acquires the mutual-exclusion region for one session and returns the
// function that releases it. Sessions share a fixed pool of stripes.
func (s *Store) Lock(storyID, sessionID string) (unlock func()) {
	m := &s.locks[xxhash.Sum64String(Key{storyID, sessionID}.String())%lockStripes]
	m.Lock()
	return m.Unlock
}

// Get returns a copy of the stored state, if present.
func (s *Store) Get(storyID, sessionID string) (*StoryState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[Key{storyID, sessionID}]
	if !ok {
		return nil, false
	}
	return st.Clone(), true
}

// GetOrCreate returns a copy of the stored state, creating it from defaults
// on first access.
func (s *Store) GetOrCreate(storyID, sessionID string, d Defaults) *StoryState {
	if st, ok := s.Get(storyID, sessionID); ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := Key{storyID, sessionID}
	if st, ok := s.states[key]; ok {
		return st.Clone()
	}
	st := NewStoryState(storyID, sessionID, d, s.now())
	s.states[key] = st
	s.logger.Debug("Created story state",
		"story_id", storyID,
		"session_id", sessionID,
		"location", d.Location,
		"starting_beat", d.StartingBeat)
	return st.Clone()
}

// Update merges patch into the stored state and refreshes LastUpdated. A
// missing entry is created empty before the merge.
func (s *Store) Update(storyID, sessionID string, patch Patch) *StoryState {
	return s.mutate(storyID, sessionID, func(st *StoryState) {
		patch.apply(st)
	})
}

// RecordChoice appends a player choice, completes the beat unless it is
// repeatable, and counts a major decision.
func (s *Store) RecordChoice(storyID, sessionID, beatID, choice, consequence string, repeatable bool) *StoryState {
	return s.mutate(storyID, sessionID, func(st *StoryState) {
		st.PlayerChoices = append(st.PlayerChoices, PlayerChoice{
			ID:          uuid.NewString(),
			BeatID:      beatID,
			Choice:      choice,
			Consequence: consequence,
			Timestamp:   s.now(),
		})
		if !repeatable {
			st.Complete(beatID)
		}
		st.Metadata.MajorDecisions++
	})
}

// Put replaces the stored state wholesale, keeping its metadata. Used to
// rehydrate a session from a snapshot.
func (s *Store) Put(st *StoryState) {
	c := st.Clone()
	s.mu.Lock()
	s.states[Key{c.StoryID, c.SessionID}] = c
	s.mu.Unlock()
}

func (s *Store) mutate(storyID, sessionID string, fn func(*StoryState)) *StoryState {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := Key{storyID, sessionID}
	var next *StoryState
	if cur, ok := s.states[key]; ok {
		next = cur.Clone()
	} else {
		next = NewStoryState(storyID, sessionID, Defaults{}, now)
	}

	fn(next)

	if gap := now.Sub(next.Metadata.LastUpdated); gap > 0 && gap <= idleGap {
		next.Metadata.TotalPlayTime += gap
	}
	next.Metadata.LastUpdated = now
	s.states[key] = next
	return next.Clone()
}

// Sweep removes every entry whose LastUpdated is strictly older than maxAge
// and returns how many were removed.
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, st := range s.states {
		if st.Metadata.LastUpdated.Before(cutoff) {
			delete(s.states, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored states.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
