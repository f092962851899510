package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Body      string    `bun:"body,type:text,notnull"`
	AuthorID  int64     `bun:"author_id,notnull"`
	Author    *User     `bun:"rel:belongs-to,join:author_id=id"`
	ArticleID int64     `bun:"article_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

var _ bun.BeforeAppendModelHook = (*Comment)(nil)

func (c *Comment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = c.CreatedAt
	case *bun.UpdateQuery:
		c.UpdatedAt = now
	}

	return nil
}
