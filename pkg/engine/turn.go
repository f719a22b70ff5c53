package engine

import (
	"context"
	"fmt"

	"github.com/jwebster45206/narrative-engine/pkg/beats"
	"github.com/jwebster45206/narrative-engine/pkg/lexicon"
	"github.com/jwebster45206/narrative-engine/pkg/pacing"
	"github.com/jwebster45206/narrative-engine/pkg/retrieval"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// ActionType is the optional classification of a player action.
type ActionType = lexicon.ActionType

// TurnRequest is one player action.
type TurnRequest struct {
	StoryID    string
	SessionID  string
	UserID     string
	Action     string
	ActionType ActionType
	MaxResults int
}

// Turn is everything prompt assembly needs for one action.
type Turn struct {
	Request          TurnRequest
	StoryTitle       string
	State            *state.StoryState
	Context          []retrieval.ScoredContext
	Beats            beats.Result
	Pacing           pacing.State
	Intervention     pacing.Intervention
	PendingEvents    []string
	InventorySummary string
	LocationItems    string
}

// ProcessTurn runs one action end to end under the session lock: read the
// state, retrieve context, evaluate beats and commit their mutations.
// Collaborator failures are logged and leave the corresponding field empty.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (*Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("turn cancelled: %w", err)
	}
	if req.StoryID == "" || req.SessionID == "" {
		return nil, fmt.Errorf("story id and session id are required")
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = e.maxResults
	}

	unlock := e.store.Lock(req.StoryID, req.SessionID)
	defer unlock()

	c := e.corpora.Get(req.StoryID)
	d := e.defaultsFor(c)
	st := e.store.GetOrCreate(req.StoryID, req.SessionID, d)

	turn := &Turn{
		Request:    req,
		StoryTitle: c.Title,
		Context:    e.retrieval.Search(st, req.Action, c.Documents, maxResults),
	}
	turn.Beats = e.beats.Evaluate(c, req.SessionID, d, req.Action, req.ActionType)
	turn.State = turn.Beats.State

	p := e.pacing.For(req.StoryID, req.SessionID)
	turn.Pacing = p.State()
	turn.Intervention = p.NeedsIntervention()

	if e.events != nil {
		pending, err := e.events.Dequeue(ctx, req.StoryID, req.SessionID)
		if err != nil {
			e.logger.Error("Failed to dequeue story events", "story_id", req.StoryID, "session_id", req.SessionID, "error", err)
		}
		turn.PendingEvents = pending
		if len(turn.Beats.UrgentActions) > 0 {
			if err := e.events.Enqueue(ctx, req.StoryID, req.SessionID, turn.Beats.UrgentActions...); err != nil {
				e.logger.Error("Failed to enqueue story events", "story_id", req.StoryID, "session_id", req.SessionID, "error", err)
			}
		}
	}

	if e.snapshots != nil {
		if err := e.snapshots.SaveStoryState(ctx, turn.State); err != nil {
			e.logger.Error("Failed to persist story state", "story_id", req.StoryID, "session_id", req.SessionID, "error", err)
		}
	}

	e.summarize(ctx, turn)
	return turn, nil
}

func (e *Engine) summarize(ctx context.Context, turn *Turn) {
	req := turn.Request
	if e.inventory != nil {
		summary, err := e.inventory.PlayerInventorySummary(ctx, req.UserID, req.SessionID)
		if err != nil {
			e.logger.Warn("Failed to summarize inventory", "session_id", req.SessionID, "error", err)
		}
		turn.InventorySummary = summary
	}
	if e.locationItems != nil && turn.State.CurrentLocation != "" {
		summary, err := e.locationItems.LocationItemsSummary(ctx, req.StoryID, turn.State.CurrentLocation)
		if err != nil {
			e.logger.Warn("Failed to summarize location items", "story_id", req.StoryID, "location", turn.State.CurrentLocation, "error", err)
		}
		turn.LocationItems = summary
	}
}
