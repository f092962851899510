package article

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

type Store struct {
	db bun.IDB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Tx runs fn with a store bound to a single transaction.
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Store{db: tx})
	})
}

// Filter selects articles for List. Zero values are ignored.
type Filter struct {
	Status      model.ArticleStatus
	Tag         string
	Author      string
	FavoritedBy string
	AuthorID    int64
	FollowerID  int64
	Limit       int
	Offset      int
}

func orderTags(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("t.name ASC")
}

func (s *Store) selectArticles(dest interface{}) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(dest).
		Relation("Author").
		Relation("Tags", orderTags)
}

func (s *Store) BySlug(ctx context.Context, slug string) (*model.Article, error) {
	a := new(model.Article)
	if err := s.selectArticles(a).Where("a.slug = ?", slug).Limit(1).Scan(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

// BySlugs returns the articles found among slugs keyed by slug.
func (s *Store) BySlugs(ctx context.Context, slugs []string) (map[string]*model.Article, error) {
	var articles []*model.Article
	if err := s.selectArticles(&articles).Where("a.slug IN (?)", bun.In(slugs)).Scan(ctx); err != nil {
		return nil, err
	}

	found := make(map[string]*model.Article, len(articles))
	for _, a := range articles {
		found[a.Slug] = a
	}

	return found, nil
}

// ByIDs returns the published articles among ids in the order of ids.
func (s *Store) ByIDs(ctx context.Context, ids []int64) ([]*model.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var articles []*model.Article
	err := s.selectArticles(&articles).
		Where("a.id IN (?)", bun.In(ids)).
		Where("a.status = ?", model.StatusPublished).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*model.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	ordered := make([]*model.Article, 0, len(articles))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}

	return ordered, nil
}

func (s *Store) SlugTaken(ctx context.Context, slug string, exceptID int64) (bool, error) {
	return s.db.NewSelect().
		Model((*model.Article)(nil)).
		Where("a.slug = ?", slug).
		Where("a.id <> ?", exceptID).
		Exists(ctx)
}

func (s *Store) List(ctx context.Context, f Filter) ([]*model.Article, int, error) {
	var articles []*model.Article

	q := s.selectArticles(&articles)

	if f.Status != "" {
		q = q.Where("a.status = ?", f.Status)
	}
	if f.AuthorID != 0 {
		q = q.Where("a.author_id = ?", f.AuthorID)
	}
	if f.Author != "" {
		q = q.Where("author.username = ?", f.Author)
	}
	if f.Tag != "" {
		q = q.Where("a.id IN (?)", s.db.NewSelect().
			TableExpr("article_tags AS atf").
			Join("JOIN tags AS tf ON tf.id = atf.tag_id").
			Column("atf.article_id").
			Where("tf.name = ?", f.Tag))
	}
	if f.FavoritedBy != "" {
		q = q.Where("a.id IN (?)", s.db.NewSelect().
			TableExpr("favorites AS ff").
			Join("JOIN users AS uf ON uf.id = ff.user_id").
			Column("ff.article_id").
			Where("uf.username = ?", f.FavoritedBy))
	}
	if f.FollowerID != 0 {
		q = q.Where("a.author_id IN (?)", s.db.NewSelect().
			TableExpr("follows AS fof").
			Column("fof.following_id").
			Where("fof.follower_id = ?", f.FollowerID))
	}

	q = q.Order("a.created_at DESC", "a.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	count, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}

	return articles, count, nil
}

// MostFavorited returns published articles by favorites_count.
func (s *Store) MostFavorited(ctx context.Context, limit int) ([]*model.Article, error) {
	var articles []*model.Article
	err := s.selectArticles(&articles).
		Where("a.status = ?", model.StatusPublished).
		Where("a.favorites_count > 0").
		Order("a.favorites_count DESC", "a.created_at DESC").
		Limit(limit).
		Scan(ctx)

	return articles, err
}

// Activity returns the counters and creation time of every article by
// authorID.
func (s *Store) Activity(ctx context.Context, authorID int64) ([]*model.Article, error) {
	var articles []*model.Article
	err := s.db.NewSelect().
		Model(&articles).
		Column("a.id", "a.favorites_count", "a.comments_count", "a.created_at").
		Where("a.author_id = ?", authorID).
		Order("a.created_at ASC").
		Scan(ctx)

	return articles, err
}

func (s *Store) FavoritedSet(ctx context.Context, userID int64, articleIDs []int64) (map[int64]bool, error) {
	set := make(map[int64]bool)
	if userID == 0 || len(articleIDs) == 0 {
		return set, nil
	}

	var ids []int64
	err := s.db.NewSelect().
		Model((*model.Favorite)(nil)).
		Column("fav.article_id").
		Where("fav.user_id = ?", userID).
		Where("fav.article_id IN (?)", bun.In(articleIDs)).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		set[id] = true
	}

	return set, nil
}

func (s *Store) TagNames(ctx context.Context) ([]string, error) {
	names := []string{}
	err := s.db.NewSelect().
		Model((*model.Tag)(nil)).
		Column("t.name").
		Order("t.name ASC").
		Scan(ctx, &names)

	return names, err
}

func (s *Store) Create(ctx context.Context, a *model.Article, tags []string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(a).Exec(ctx); err != nil {
			return err
		}

		return setTags(ctx, tx, a, tags)
	})
}

// Update writes columns of a and replaces its tags when tags is not nil.
func (s *Store) Update(ctx context.Context, a *model.Article, columns []string, tags *[]string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model(a).
			Column(append(columns, "updated_at")...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}

		if tags == nil {
			return nil
		}

		return setTags(ctx, tx, a, *tags)
	})
}

func (s *Store) SetStatus(ctx context.Context, a *model.Article) error {
	_, err := s.db.NewUpdate().
		Model(a).
		Column("status", "published_at", "updated_at").
		WherePK().
		Exec(ctx)

	return err
}

// Delete removes the article with its favorites, comments and tag links.
func (s *Store) Delete(ctx context.Context, articleID int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, m := range []interface{}{
			(*model.Favorite)(nil),
			(*model.Comment)(nil),
			(*model.ArticleTag)(nil),
		} {
			if _, err := tx.NewDelete().Model(m).Where("article_id = ?", articleID).Exec(ctx); err != nil {
				return err
			}
		}

		_, err := tx.NewDelete().Model((*model.Article)(nil)).Where("id = ?", articleID).Exec(ctx)

		return err
	})
}

// Favorite records the favorite and recounts the article's counters in the
// same transaction. A repeated favorite fails with a duplicate key error.
func (s *Store) Favorite(ctx context.Context, userID int64, a *model.Article) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		fav := &model.Favorite{UserID: userID, ArticleID: a.ID, CreatedAt: time.Now().UTC()}
		if _, err := tx.NewInsert().Model(fav).Exec(ctx); err != nil {
			return err
		}

		return Recount(ctx, tx, a)
	})
}

// Unfavorite removes the favorite and reports whether there was one.
func (s *Store) Unfavorite(ctx context.Context, userID int64, a *model.Article) (bool, error) {
	var removed bool

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*model.Favorite)(nil)).
			Where("user_id = ?", userID).
			Where("article_id = ?", a.ID).
			Exec(ctx)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if removed = n > 0; !removed {
			return nil
		}

		return Recount(ctx, tx, a)
	})

	return removed, err
}

// Recount sets favorites_count and comments_count of a from the favorites
// and comments relations and loads the new values into a. It must run in
// the transaction that changed the relation.
func Recount(ctx context.Context, db bun.IDB, a *model.Article) error {
	favorites := db.NewSelect().
		Model((*model.Favorite)(nil)).
		ColumnExpr("COUNT(*)").
		Where("fav.article_id = ?", a.ID)
	comments := db.NewSelect().
		Model((*model.Comment)(nil)).
		ColumnExpr("COUNT(*)").
		Where("c.article_id = ?", a.ID)

	_, err := db.NewUpdate().
		Model((*model.Article)(nil)).
		Set("favorites_count = (?)", favorites).
		Set("comments_count = (?)", comments).
		Where("id = ?", a.ID).
		Exec(ctx)
	if err != nil {
		return err
	}

	return db.NewSelect().
		Model(a).
		Column("a.favorites_count", "a.comments_count").
		Where("a.id = ?", a.ID).
		Scan(ctx)
}

// setTags replaces the tag links of a, creating missing tags by name.
func setTags(ctx context.Context, tx bun.IDB, a *model.Article, names []string) error {
	_, err := tx.NewDelete().
		Model((*model.ArticleTag)(nil)).
		Where("article_id = ?", a.ID).
		Exec(ctx)
	if err != nil {
		return err
	}

	a.Tags = []model.Tag{}
	if len(names) == 0 {
		return nil
	}

	tags := make([]model.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, model.Tag{Name: n})
	}

	_, err = tx.NewInsert().Model(&tags).Ignore().Returning("NULL").Exec(ctx)
	if err != nil {
		return err
	}

	if err := tx.NewSelect().Model(&a.Tags).Where("t.name IN (?)", bun.In(names)).Order("t.name ASC").Scan(ctx); err != nil {
		return err
	}

	links := make([]model.ArticleTag, 0, len(a.Tags))
	for _, t := range a.Tags {
		links = append(links, model.ArticleTag{ArticleID: a.ID, TagID: t.ID})
	}

	_, err = tx.NewInsert().Model(&links).Exec(ctx)

	return err
}
