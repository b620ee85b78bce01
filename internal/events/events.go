package events

import (
	"context"
	"encoding/json"
	"time"
)

// TopicCommentSubmitted carries notifications for the moderation queue.
const TopicCommentSubmitted = "comments.submitted"

// CommentSubmitted is emitted when a reader submits a comment for review.
type CommentSubmitted struct {
	CommentID   string    `json:"commentId"`
	BlogID      string    `json:"blogId"`
	Name        string    `json:"name"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Backend defines the broker-agnostic publish operations used by the app.
type Backend interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher emits domain events to the configured broker. A nil Publisher
// is valid and drops every event, so publishing stays best-effort when no
// broker is configured.
type Publisher struct {
	backend Backend
}

// NewPublisher constructs a Publisher for the provided backend.
func NewPublisher(backend Backend) *Publisher {
	return &Publisher{backend: backend}
}

// CommentSubmitted publishes a moderation notification.
func (p *Publisher) CommentSubmitted(ctx context.Context, event CommentSubmitted) error {
	if p == nil || p.backend == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.backend.Publish(ctx, TopicCommentSubmitted, data, map[string]string{
		"event": "comment.submitted",
	})
	return err
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Close()
}
