package comment

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/model"
)

type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Create inserts c and recounts the comments of a in one transaction.
func (s *Store) Create(ctx context.Context, c *model.Comment, a *model.Article) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(c).Exec(ctx); err != nil {
			return err
		}

		return article.Recount(ctx, tx, a)
	})
}

// ByArticle returns the comments of an article, newest first.
func (s *Store) ByArticle(ctx context.Context, articleID int64) ([]*model.Comment, error) {
	comments := []*model.Comment{}
	err := s.db.NewSelect().
		Model(&comments).
		Relation("Author").
		Where("c.article_id = ?", articleID).
		Order("c.created_at DESC", "c.id DESC").
		Scan(ctx)

	return comments, err
}

func (s *Store) ByID(ctx context.Context, articleID, id int64) (*model.Comment, error) {
	c := new(model.Comment)
	err := s.db.NewSelect().
		Model(c).
		Where("c.id = ?", id).
		Where("c.article_id = ?", articleID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Store) Delete(ctx context.Context, c *model.Comment, a *model.Article) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model(c).WherePK().Exec(ctx); err != nil {
			return err
		}

		return article.Recount(ctx, tx, a)
	})
}
