package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// ArticleStatus is the publication state of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "DRAFT"
	StatusPublished ArticleStatus = "PUBLISHED"
)

func (s ArticleStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Article data model. Counters mirror the favorites and comments relations
// and are only written together with them.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID             int64         `bun:"id,pk,autoincrement"`
	Slug           string        `bun:"slug,notnull,unique"`
	Title          string        `bun:"title,notnull"`
	Description    string        `bun:"description,type:text,notnull"`
	Body           string        `bun:"body,type:text,notnull"`
	Status         ArticleStatus `bun:"status,notnull"`
	FavoritesCount int           `bun:"favorites_count,notnull"`
	CommentsCount  int           `bun:"comments_count,notnull"`
	AuthorID       int64         `bun:"author_id,notnull"`
	Author         *User         `bun:"rel:belongs-to,join:author_id=id"`
	Tags           []Tag         `bun:"m2m:article_tags,join:Article=Tag"`
	PublishedAt    *time.Time    `bun:"published_at"`
	CreatedAt      time.Time     `bun:"created_at,notnull"`
	UpdatedAt      time.Time     `bun:"updated_at,notnull"`
}

var _ bun.BeforeAppendModelHook = (*Article)(nil)

func (a *Article) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		a.UpdatedAt = a.CreatedAt
		if a.Status == "" {
			a.Status = StatusDraft
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}

	return nil
}

// Visible reports whether the article can be shown to viewerID.
// Drafts are only visible to their author.
func (a *Article) Visible(viewerID int64) bool {
	return a.Status == StatusPublished || (viewerID != 0 && a.AuthorID == viewerID)
}

// TagNames returns tag names in the order they were loaded.
func (a *Article) TagNames() []string {
	names := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		names = append(names, t.Name)
	}

	return names
}

// Favorite links a user to an article they favorited.
type Favorite struct {
	bun.BaseModel `bun:"table:favorites,alias:fav"`

	UserID    int64     `bun:"user_id,pk"`
	ArticleID int64     `bun:"article_id,pk"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}
