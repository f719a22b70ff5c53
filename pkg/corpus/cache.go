package corpus

import (
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache keeps one corpus per story for the life of the process. Concurrent
// first loads of the same story share a single call to the Source.
type Cache struct {
	source Source
	logger *slog.Logger

	mu      sync.RWMutex
	corpora map[string]*Corpus
	group   singleflight.Group
}

// NewCache wraps source with a process-lifetime cache.
func NewCache(source Source, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		source:  source,
		logger:  logger,
		corpora: make(map[string]*Corpus),
	}
}

// Get returns the corpus for storyID. It never returns nil: a story whose
// corpus cannot be loaded yields an empty corpus so retrieval degrades to no
// context instead of failing the turn.
func (c *Cache) Get(storyID string) *Corpus {
	c.mu.RLock()
	cached, ok := c.corpora[storyID]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	v, _, _ := c.group.Do(storyID, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.corpora[storyID]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		loaded := c.load(storyID)
		c.mu.Lock()
		c.corpora[storyID] = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	return v.(*Corpus)
}

func (c *Cache) load(storyID string) *Corpus {
	loaded, err := c.source.Load(storyID)
	if err == nil {
		return loaded
	}

	var verr *ValidationError
	if errors.As(err, &verr) && loaded != nil {
		c.logger.Error("Corpus validation rejected entries",
			"story_id", storyID,
			"issues", verr.Issues)
		return loaded
	}

	c.logger.Error("Failed to load story corpus, continuing without context",
		"story_id", storyID,
		"error", err)
	return Empty(storyID)
}

// Documents returns the cached documents for storyID.
func (c *Cache) Documents(storyID string) []Document {
	return c.Get(storyID).Documents
}

// Clear drops the cached corpus for storyID so the next Get reloads it.
func (c *Cache) Clear(storyID string) {
	c.mu.Lock()
	delete(c.corpora, storyID)
	c.mu.Unlock()
	c.group.Forget(storyID)
}

// ClearAll drops every cached corpus.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	for id := range c.corpora {
		c.group.Forget(id)
	}
	c.corpora = make(map[string]*Corpus)
	c.mu.Unlock()
}
