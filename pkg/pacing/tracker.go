package pacing

import (
	"sync"
	"time"
)

type trackerKey struct {
	storyID   string
	sessionID string
}

// Tracker keeps one Classifier per (story, session).
type Tracker struct {
	mu               sync.Mutex
	classifiers      map[trackerKey]*Classifier
	exhaustionScenes int
	now              func() time.Time
}

// NewTracker creates a tracker whose classifiers use the given exhaustion
// threshold.
func NewTracker(exhaustionScenes int, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		classifiers:      make(map[trackerKey]*Classifier),
		exhaustionScenes: exhaustionScenes,
		now:              now,
	}
}

// For returns the session's classifier, creating it on first use. The
// classifier is touched under the tracker lock so a concurrent Sweep cannot
// drop it before the caller uses it.
func (t *Tracker) For(storyID, sessionID string) *Classifier {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := trackerKey{storyID, sessionID}
	c, ok := t.classifiers[key]
	if !ok {
		c = NewClassifier(t.exhaustionScenes, t.now)
		t.classifiers[key] = c
	}
	c.touch()
	return c
}

// Sweep drops classifiers untouched for longer than maxAge.
func (t *Tracker) Sweep(maxAge time.Duration) int {
	cutoff := t.now().Add(-maxAge)
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for key, c := range t.classifiers {
		if c.lastTouched().Before(cutoff) {
			delete(t.classifiers, key)
			removed++
		}
	}
	return removed
}
