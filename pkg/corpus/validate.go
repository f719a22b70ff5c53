package corpus

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoryNotFound is returned when a story has no corpus directory.
	ErrStoryNotFound = errors.New("story not found")
	// ErrRequiredFileMissing is returned when characters.json or locations.json is absent.
	ErrRequiredFileMissing = errors.New("required corpus file missing")
)

// ValidationError lists the entries rejected while loading a corpus. The
// corpus returned alongside it is usable; the rejected entries are left out.
type ValidationError struct {
	StoryID string
	Issues  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("corpus %s has %d invalid entries:\n%s", e.StoryID, len(e.Issues), strings.Join(e.Issues, "\n"))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

// validateBeats returns the well-formed beats and records every rejected one.
func validateBeats(beats []BeatDefinition, verr *ValidationError) []BeatDefinition {
	seen := make(map[string]bool, len(beats))
	valid := make([]BeatDefinition, 0, len(beats))
	for i, b := range beats {
		switch {
		case strings.TrimSpace(b.ID) == "":
			verr.add("beats[%d]: missing id", i)
			continue
		case seen[b.ID]:
			verr.add("beats[%d]: duplicate id %q", i, b.ID)
			continue
		case !b.Type.Valid():
			verr.add("beats[%d] %q: unknown type %q", i, b.ID, b.Type)
			continue
		}
		for j, c := range b.Choices {
			if c.LeadsTo != "" && strings.ContainsAny(c.LeadsTo, " \t\n") {
				verr.add("beats[%d] %q: choices[%d].leads_to %q must not contain whitespace", i, b.ID, j, c.LeadsTo)
			}
		}
		seen[b.ID] = true
		valid = append(valid, b)
	}
	return valid
}

// requireIDs drops entries without an id, recording each one.
func requireIDs[T any](kind string, items []T, id func(T) string, verr *ValidationError) []T {
	seen := make(map[string]bool, len(items))
	valid := make([]T, 0, len(items))
	for i, item := range items {
		key := id(item)
		if strings.TrimSpace(key) == "" {
			verr.add("%s[%d]: missing id", kind, i)
			continue
		}
		if seen[key] {
			verr.add("%s[%d]: duplicate id %q", kind, i, key)
			continue
		}
		seen[key] = true
		valid = append(valid, item)
	}
	return valid
}
