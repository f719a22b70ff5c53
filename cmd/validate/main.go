package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/jwebster45206/narrative-engine/pkg/corpus"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <data-dir> [story-id ...]\n", os.Args[0])
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	loader := corpus.NewLoader(os.Args[1], logger)

	storyIDs := os.Args[2:]
	if len(storyIDs) == 0 {
		ids, err := loader.ListStories()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list stories: %v\n", err)
			os.Exit(1)
		}
		storyIDs = ids
	}
	if len(storyIDs) == 0 {
		fmt.Fprintf(os.Stderr, "No stories found under %s\n", os.Args[1])
		os.Exit(1)
	}

	failed := false
	for _, id := range storyIDs {
		validator := &CorpusValidator{}
		if err := validator.validateStory(loader, id); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("Story %s is valid!\n", id)
	}
	if failed {
		os.Exit(1)
	}
}

type CorpusValidator struct {
	errors []string
}

func (v *CorpusValidator) validateStory(loader *corpus.Loader, storyID string) error {
	fmt.Printf("Validating %s...\n", storyID)

	if !isValidID(storyID) {
		return fmt.Errorf("story directory '%s' must be lowercase snake_case", storyID)
	}

	c, err := loader.Load(storyID)
	var verr *corpus.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, issue := range verr.Issues {
			v.addError(issue)
		}
	case err != nil:
		return fmt.Errorf("story %s could not be loaded: %w", storyID, err)
	}

	v.validateCorpus(c)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", storyID, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *CorpusValidator) validateCorpus(c *corpus.Corpus) {
	ids := make(map[corpus.DocumentType]map[string]bool)
	for _, doc := range c.Documents {
		if ids[doc.Metadata.Type] == nil {
			ids[doc.Metadata.Type] = make(map[string]bool)
		}
		ids[doc.Metadata.Type][doc.Metadata.ID] = true
		v.validateIDFormat(string(doc.Metadata.Type)+" id", doc.Metadata.ID)
	}

	if c.DefaultLocation != "" && !ids[corpus.DocLocation][c.DefaultLocation] {
		v.addError(fmt.Sprintf("starting location '%s' is not a known location", c.DefaultLocation))
	}
	if c.StartingBeat != "" && !ids[corpus.DocBeat][c.StartingBeat] {
		v.addError(fmt.Sprintf("starting beat '%s' is not a known beat", c.StartingBeat))
	}

	for _, b := range c.Beats {
		v.validateBeat(b, ids)
	}
}

func (v *CorpusValidator) validateBeat(b corpus.BeatDefinition, ids map[corpus.DocumentType]map[string]bool) {
	context := fmt.Sprintf("beat %s", b.ID)

	if b.Name == "" {
		v.addError(context + " has no name")
	}
	if len(b.Triggers) == 0 && len(b.DialogueTriggers) == 0 && b.Gating == nil {
		v.addError(context + " has no triggers, dialogue triggers or gating - it fires on every action")
	}

	for _, p := range b.Prerequisites {
		if !ids[corpus.DocBeat][p] && !strings.HasPrefix(p, "can_access_") && !isValidID(p) {
			v.addError(fmt.Sprintf("%s prerequisite '%s' is neither a beat id nor a snake_case flag", context, p))
		}
		if p == b.ID {
			v.addError(fmt.Sprintf("%s lists itself as a prerequisite", context))
		}
	}

	if b.Gating != nil && b.Gating.Location != "" && !ids[corpus.DocLocation][b.Gating.Location] {
		v.addError(fmt.Sprintf("%s gating location '%s' is not a known location", context, b.Gating.Location))
	}

	for _, id := range b.RevealsLore {
		if !ids[corpus.DocLore][id] {
			v.addError(fmt.Sprintf("%s reveals unknown lore '%s'", context, id))
		}
	}

	for charID, level := range b.RelationshipChanges {
		if !ids[corpus.DocCharacter][charID] {
			v.addError(fmt.Sprintf("%s changes relationship with unknown character '%s'", context, charID))
		}
		if !state.RelationshipLevel(level).Valid() {
			v.addError(fmt.Sprintf("%s uses unknown relationship level '%s'", context, level))
		}
	}

	for _, c := range b.Choices {
		if c.LeadsTo != "" {
			v.validateIDFormat(context+" choice leads_to", c.LeadsTo)
		}
	}
}

func (v *CorpusValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *CorpusValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
