package model

import "github.com/uptrace/bun"

type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
}

// ArticleTag is the join model behind Article.Tags. It has to be registered
// with bun.DB.RegisterModel before the relation is queried.
type ArticleTag struct {
	bun.BaseModel `bun:"table:article_tags,alias:at"`

	ArticleID int64    `bun:"article_id,pk"`
	Article   *Article `bun:"rel:belongs-to,join:article_id=id"`
	TagID     int64    `bun:"tag_id,pk"`
	Tag       *Tag     `bun:"rel:belongs-to,join:tag_id=id"`
}
