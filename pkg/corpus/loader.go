package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/lexicon"
)

const (
	charactersFile = "characters.json"
	locationsFile  = "locations.json"
	beatsFile      = "beats.json"
	loreFile       = "lore.json"
	entitiesFile   = "entities.json"
	storyFile      = "story.json"
)

// Source produces the corpus for a story.
type Source interface {
	Load(storyID string) (*Corpus, error)
}

// Loader reads corpora from <dataDir>/stories/<storyID>/.
type Loader struct {
	dataDir string
	logger  *slog.Logger
}

var _ Source = (*Loader)(nil)

// NewLoader creates a filesystem loader rooted at dataDir.
func NewLoader(dataDir string, logger *slog.Logger) *Loader {
	if dataDir == "" {
		dataDir = "./data"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dataDir: dataDir, logger: logger}
}

// StoryDir returns the directory holding a story's corpus files.
func (l *Loader) StoryDir(storyID string) string {
	return filepath.Join(l.dataDir, "stories", storyID)
}

// ListStories returns the ids of every story directory under the data dir.
func (l *Loader) ListStories() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.dataDir, "stories"))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read stories directory: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

// Load reads and validates a story's corpus. A *ValidationError is returned
// together with a usable corpus when only individual entries were rejected;
// any other error means no corpus could be built.
func (l *Loader) Load(storyID string) (*Corpus, error) {
	if storyID == "" || strings.ContainsAny(storyID, `/\`) || strings.Contains(storyID, "..") {
		return nil, fmt.Errorf("invalid story id %q: %w", storyID, ErrStoryNotFound)
	}
	dir := l.StoryDir(storyID)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", storyID, ErrStoryNotFound)
	}

	verr := &ValidationError{StoryID: storyID}

	var characters []CharacterSpec
	if err := l.readRequired(dir, charactersFile, &characters); err != nil {
		return nil, err
	}
	var locations []LocationSpec
	if err := l.readRequired(dir, locationsFile, &locations); err != nil {
		return nil, err
	}

	beats := readOptional[[]BeatDefinition](l, storyID, dir, beatsFile, verr)
	lore := readOptional[[]LoreSpec](l, storyID, dir, loreFile, verr)
	entities := readOptional[[]lexicon.Entity](l, storyID, dir, entitiesFile, verr)
	info := readOptional[StoryInfo](l, storyID, dir, storyFile, verr)

	characters = requireIDs("characters", characters, func(c CharacterSpec) string { return c.ID }, verr)
	locations = requireIDs("locations", locations, func(l LocationSpec) string { return l.ID }, verr)
	lore = requireIDs("lore", lore, func(l LoreSpec) string { return l.ID }, verr)
	beats = validateBeats(beats, verr)

	c := Build(storyID, characters, locations, beats, lore, entities)
	c.Title = info.Title
	if info.StartingLocation != "" {
		c.DefaultLocation = info.StartingLocation
	}
	if info.StartingBeat != "" {
		c.StartingBeat = info.StartingBeat
	}

	l.logger.Debug("Loaded story corpus",
		"story_id", storyID,
		"documents", len(c.Documents),
		"beats", len(c.Beats))

	return c, verr.orNil()
}

// Build assembles a corpus from already-parsed entries. Documents are
// ordered characters, locations, beats, lore.
func Build(storyID string, characters []CharacterSpec, locations []LocationSpec, beats []BeatDefinition, lore []LoreSpec, entities []lexicon.Entity) *Corpus {
	c := Empty(storyID)
	c.Beats = beats
	c.Documents = make([]Document, 0, len(characters)+len(locations)+len(beats)+len(lore))

	for _, ch := range characters {
		c.Documents = append(c.Documents, ch.document())
		c.Entities.Add(lexicon.Entity{ID: ch.ID, Kind: lexicon.EntityCharacter, Keywords: entityKeywords(ch.ID, ch.Name, ch.Keywords)})
	}
	for _, loc := range locations {
		c.Documents = append(c.Documents, loc.document())
		c.Entities.Add(lexicon.Entity{ID: loc.ID, Kind: lexicon.EntityLocation, Keywords: entityKeywords(loc.ID, loc.Name, loc.Keywords)})
	}
	for _, b := range beats {
		c.Documents = append(c.Documents, b.document())
	}
	for _, lr := range lore {
		c.Documents = append(c.Documents, lr.document())
	}
	for _, e := range entities {
		c.Entities.Add(e)
	}

	if len(locations) > 0 {
		c.DefaultLocation = locations[0].ID
	}
	if len(beats) > 0 {
		c.StartingBeat = beats[0].ID
	}
	return c
}

// entityKeywords derives the default extraction keywords for an entity: its
// id, its snake_cased name and any explicit keywords.
func entityKeywords(id, name string, explicit []string) []string {
	keywords := []string{id}
	if snake := strings.Join(lexicon.Words(name), "_"); snake != "" && snake != lexicon.Fold(id) {
		keywords = append(keywords, snake)
	}
	return append(keywords, explicit...)
}

func (l *Loader) readRequired(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, ErrRequiredFileMissing)
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// readOptional returns the zero value when the file is absent. A malformed
// optional file is reported on verr and its category skipped.
func readOptional[T any](l *Loader, storyID, dir, name string, verr *ValidationError) T {
	var zero T
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("Optional corpus file not present", "story_id", storyID, "file", name)
			return zero
		}
		verr.add("%s: %v", name, err)
		return zero
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		verr.add("%s: %v", name, err)
		return zero
	}
	return v
}
