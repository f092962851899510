package events

import (
	"context"
	"time"
)

const (
	ArticlePublished   = "article.published"
	ArticleFavorited   = "article.favorited"
	ArticleUnfavorited = "article.unfavorited"
)

type Event struct {
	Type        string    `json:"type"`
	ArticleID   int64     `json:"articleId"`
	ArticleSlug string    `json:"articleSlug"`
	ActorID     int64     `json:"actorId"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }

// Counter is notified of every event that was published.
type Counter interface {
	Event(ctx context.Context, name string)
}

// Counting wraps a publisher and counts the events it accepted.
type Counting struct {
	Publisher
	counter Counter
}

func NewCounting(p Publisher, c Counter) *Counting {
	return &Counting{Publisher: p, counter: c}
}

func (c *Counting) Publish(ctx context.Context, ev Event) error {
	if err := c.Publisher.Publish(ctx, ev); err != nil {
		return err
	}
	c.counter.Event(ctx, ev.Type)

	return nil
}
