package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the timeline stream
const (
	EventPostCreated = "post_created"
	EventPostDeleted = "post_deleted"
)

// Stream names
const (
	StreamTimeline = "stream:timeline"
)

// Consumer group name for timeline workers
const (
	ConsumerGroupTimeline = "timeline_workers"
)

// TimelineEvent represents an event published to the timeline stream.
type TimelineEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when the event occurred

	PostID   int64 `json:"post_id"`
	AuthorID int64 `json:"author_id"`
}

// NewPostCreatedEvent creates an event for a freshly created post. The worker
// adds the post to the global timeline cache.
func NewPostCreatedEvent(postID, authorID int64, createdAt time.Time) TimelineEvent {
	return TimelineEvent{
		Type:      EventPostCreated,
		Timestamp: createdAt.Unix(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

// NewPostDeletedEvent creates an event for a deleted post. The worker removes
// the post from the global timeline cache.
func NewPostDeletedEvent(postID, authorID int64) TimelineEvent {
	return TimelineEvent{
		Type:      EventPostDeleted,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

// ToMap converts the event to a map for Redis XADD. Redis Streams store
// field-value pairs, so the event is serialized as JSON in a "data" field.
func (e TimelineEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseTimelineEvent parses a TimelineEvent from Redis stream message values.
func ParseTimelineEvent(values map[string]interface{}) (TimelineEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return TimelineEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event TimelineEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return TimelineEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
