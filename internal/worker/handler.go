package worker

import (
	"context"
	"fmt"
	"log"

	"socialwave/internal/cache"
	"socialwave/internal/queue"
)

// EventHandler processes timeline events by applying them to the global
// timeline cache.
type EventHandler struct {
	timelineCache cache.TimelineCache
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(timelineCache cache.TimelineCache) *EventHandler {
	return &EventHandler{timelineCache: timelineCache}
}

// Handle dispatches an event to the appropriate cache operation. Unknown event
// types are logged and acknowledged so they don't clog the pending list.
func (h *EventHandler) Handle(ctx context.Context, event queue.TimelineEvent) error {
	switch event.Type {
	case queue.EventPostCreated:
		return h.handlePostCreated(ctx, event)
	case queue.EventPostDeleted:
		return h.handlePostDeleted(ctx, event)
	default:
		log.Printf("[EventHandler] unknown event type: %s", event.Type)
		return nil
	}
}

func (h *EventHandler) handlePostCreated(ctx context.Context, event queue.TimelineEvent) error {
	if err := h.timelineCache.AddPost(ctx, event.PostID, event.Timestamp); err != nil {
		return fmt.Errorf("handle post created: %w", err)
	}
	return nil
}

func (h *EventHandler) handlePostDeleted(ctx context.Context, event queue.TimelineEvent) error {
	if err := h.timelineCache.RemovePost(ctx, event.PostID); err != nil {
		return fmt.Errorf("handle post deleted: %w", err)
	}
	return nil
}
