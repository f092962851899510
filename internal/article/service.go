package article

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/database"
	"github.com/SergeyParamoshkin/blog/internal/errs"
	"github.com/SergeyParamoshkin/blog/internal/events"
	"github.com/SergeyParamoshkin/blog/internal/logger"
	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/ranking"
	"github.com/SergeyParamoshkin/blog/internal/user"
)

var (
	ErrInvalidTitle     = errs.BadRequest("article.invalid_title", nil)
	ErrForbidden        = errs.Forbidden("article.forbidden", nil)
	ErrAlreadyFavorited = errs.Conflict("article.already_favorited", nil)
	ErrNotFavorited     = errs.Conflict("article.not_favorited", nil)
	ErrEmptyPublish     = errs.BadRequest("article.empty_publish_list", nil)
)

// Reasons an article was skipped by a batch publish.
const (
	SkipNotFound         = "not_found"
	SkipNotOwner         = "not_owner"
	SkipAlreadyPublished = "already_published"
)

func notFound(slug string) *errs.Error {
	return errs.NotFound("article.not_found", errs.Args{"slug": slug})
}

type Service struct {
	store  *Store
	users  *user.Store
	ranker ranking.Ranker
	events events.Publisher
	now    func() time.Time
}

func NewService(store *Store, users *user.Store, ranker ranking.Ranker, publisher events.Publisher) *Service {
	if ranker == nil {
		ranker = ranking.Nop{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &Service{
		store:  store,
		users:  users,
		ranker: ranker,
		events: publisher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// View is an article decorated for one viewer.
type View struct {
	Article   *model.Article
	Favorited bool
	Following bool
}

type List struct {
	Views []*View
	Count int
}

// Page bounds a listing.
type Page struct {
	Limit  int
	Offset int
}

type ListQuery struct {
	Tag       string
	Author    string
	Favorited string
	Page
}

type Draft struct {
	Title       string
	Description string
	Body        string
	TagList     []string
	Status      model.ArticleStatus
}

// Patch lists the fields to change, nil means unchanged.
type Patch struct {
	Title       *string
	Description *string
	Body        *string
	TagList     *[]string
}

type Skipped struct {
	Slug   string `json:"slug"`
	Reason string `json:"reason"`
}

// Visible loads the article at slug if viewerID may see it. Drafts of other
// authors are reported as missing.
func (s *Service) Visible(ctx context.Context, viewerID int64, slug string) (*model.Article, error) {
	a, err := s.store.BySlug(ctx, slug)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, notFound(slug)
		}

		return nil, fmt.Errorf("find article %s: %w", slug, err)
	}

	if !a.Visible(viewerID) {
		return nil, notFound(slug)
	}

	return a, nil
}

// View decorates a single article for viewerID.
func (s *Service) View(ctx context.Context, viewerID int64, a *model.Article) (*View, error) {
	views, err := s.decorate(ctx, viewerID, []*model.Article{a})
	if err != nil {
		return nil, err
	}

	return views[0], nil
}

func (s *Service) decorate(ctx context.Context, viewerID int64, articles []*model.Article) ([]*View, error) {
	views := make([]*View, 0, len(articles))
	if len(articles) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(articles))
	authors := make([]int64, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
		authors = append(authors, a.AuthorID)
	}

	favorited, err := s.store.FavoritedSet(ctx, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}

	following, err := s.users.FollowingSet(ctx, viewerID, authors)
	if err != nil {
		return nil, fmt.Errorf("load follows: %w", err)
	}

	for _, a := range articles {
		views = append(views, &View{
			Article:   a,
			Favorited: favorited[a.ID],
			Following: following[a.AuthorID],
		})
	}

	return views, nil
}

func requireOwner(viewerID int64, a *model.Article) error {
	if viewerID == 0 || a.AuthorID != viewerID {
		return ErrForbidden
	}

	return nil
}

func (s *Service) checkSlug(ctx context.Context, title string, exceptID int64) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", ErrInvalidTitle
	}

	taken, err := s.store.SlugTaken(ctx, slug, exceptID)
	if err != nil {
		return "", fmt.Errorf("check slug %s: %w", slug, err)
	}
	if taken {
		return "", errs.Conflict("article.title_exists", errs.Args{"title": title})
	}

	return slug, nil
}

func (s *Service) Create(ctx context.Context, authorID int64, in Draft) (*View, error) {
	slug, err := s.checkSlug(ctx, in.Title, 0)
	if err != nil {
		return nil, err
	}

	author, err := s.users.ByID(ctx, authorID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, user.ErrUserGone
		}

		return nil, fmt.Errorf("find author %d: %w", authorID, err)
	}

	a := &model.Article{
		Slug:        slug,
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		Status:      model.StatusDraft,
		AuthorID:    authorID,
	}
	if in.Status == model.StatusPublished {
		now := s.now()
		a.Status = model.StatusPublished
		a.PublishedAt = &now
	}

	if err := s.store.Create(ctx, a, normalizeTags(in.TagList)); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, errs.Conflict("article.title_exists", errs.Args{"title": in.Title}).Wrap(err)
		}

		return nil, fmt.Errorf("create article: %w", err)
	}
	a.Author = author

	if a.Status == model.StatusPublished {
		s.emit(ctx, events.ArticlePublished, a, authorID)
	}

	return &View{Article: a}, nil
}

func (s *Service) Update(ctx context.Context, viewerID int64, a *model.Article, in Patch) (*View, error) {
	if err := requireOwner(viewerID, a); err != nil {
		return nil, err
	}

	var columns []string

	if in.Title != nil && *in.Title != a.Title {
		slug, err := s.checkSlug(ctx, *in.Title, a.ID)
		if err != nil {
			return nil, err
		}
		a.Title = *in.Title
		a.Slug = slug
		columns = append(columns, "title", "slug")
	}
	if in.Description != nil {
		a.Description = *in.Description
		columns = append(columns, "description")
	}
	if in.Body != nil {
		a.Body = *in.Body
		columns = append(columns, "body")
	}

	var tags *[]string
	if in.TagList != nil {
		normalized := normalizeTags(*in.TagList)
		tags = &normalized
	}

	if err := s.store.Update(ctx, a, columns, tags); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, errs.Conflict("article.title_exists", errs.Args{"title": a.Title}).Wrap(err)
		}

		return nil, fmt.Errorf("update article %s: %w", a.Slug, err)
	}

	return s.View(ctx, viewerID, a)
}

func (s *Service) Delete(ctx context.Context, viewerID int64, a *model.Article) error {
	if err := requireOwner(viewerID, a); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, a.ID); err != nil {
		return fmt.Errorf("delete article %s: %w", a.Slug, err)
	}

	if err := s.ranker.Remove(ctx, a.ID); err != nil {
		logger.FromContext(ctx).Warnw("remove article from ranking", "article", a.Slug, "error", err)
	}

	return nil
}

// SetStatus moves an article between draft and published. Publishing
// stamps published_at, returning to draft clears it.
func (s *Service) SetStatus(ctx context.Context, viewerID int64, a *model.Article, status model.ArticleStatus) (*View, error) {
	if err := requireOwner(viewerID, a); err != nil {
		return nil, err
	}

	if a.Status == status {
		return s.View(ctx, viewerID, a)
	}

	a.Status = status
	if status == model.StatusPublished {
		now := s.now()
		a.PublishedAt = &now
	} else {
		a.PublishedAt = nil
	}

	if err := s.store.SetStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("set status of %s: %w", a.Slug, err)
	}

	s.rank(ctx, a)
	if status == model.StatusPublished {
		s.emit(ctx, events.ArticlePublished, a, viewerID)
	}

	return s.View(ctx, viewerID, a)
}

// rank brings the ranking in line with the status and favorite count of a.
// Only published articles are ranked.
func (s *Service) rank(ctx context.Context, a *model.Article) {
	var err error
	if a.Status == model.StatusPublished {
		err = s.ranker.Set(ctx, a.ID, float64(a.FavoritesCount))
	} else {
		err = s.ranker.Remove(ctx, a.ID)
	}

	if err != nil {
		logger.FromContext(ctx).Warnw("update ranking", "article", a.Slug, "error", err)
	}
}

func (s *Service) Favorite(ctx context.Context, viewerID int64, a *model.Article) (*View, error) {
	if err := s.store.Favorite(ctx, viewerID, a); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrAlreadyFavorited.Wrap(err)
		}

		return nil, fmt.Errorf("favorite %s: %w", a.Slug, err)
	}

	if a.Status == model.StatusPublished {
		if err := s.ranker.Incr(ctx, a.ID, 1); err != nil {
			logger.FromContext(ctx).Warnw("rank favorite", "article", a.Slug, "error", err)
		}
	}
	s.emit(ctx, events.ArticleFavorited, a, viewerID)

	return s.View(ctx, viewerID, a)
}

func (s *Service) Unfavorite(ctx context.Context, viewerID int64, a *model.Article) (*View, error) {
	removed, err := s.store.Unfavorite(ctx, viewerID, a)
	if err != nil {
		return nil, fmt.Errorf("unfavorite %s: %w", a.Slug, err)
	}
	if !removed {
		return nil, ErrNotFavorited
	}

	if a.Status == model.StatusPublished {
		if err := s.ranker.Incr(ctx, a.ID, -1); err != nil {
			logger.FromContext(ctx).Warnw("rank unfavorite", "article", a.Slug, "error", err)
		}
	}
	s.emit(ctx, events.ArticleUnfavorited, a, viewerID)

	return s.View(ctx, viewerID, a)
}

// List returns published articles matching q, newest first.
func (s *Service) List(ctx context.Context, viewerID int64, q ListQuery) (*List, error) {
	return s.list(ctx, viewerID, Filter{
		Status:      model.StatusPublished,
		Tag:         q.Tag,
		Author:      q.Author,
		FavoritedBy: q.Favorited,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
}

// Feed returns published articles of the authors viewerID follows.
func (s *Service) Feed(ctx context.Context, viewerID int64, p Page) (*List, error) {
	return s.list(ctx, viewerID, Filter{
		Status:     model.StatusPublished,
		FollowerID: viewerID,
		Limit:      p.Limit,
		Offset:     p.Offset,
	})
}

// Drafts returns the unpublished articles of viewerID.
func (s *Service) Drafts(ctx context.Context, viewerID int64, p Page) (*List, error) {
	return s.list(ctx, viewerID, Filter{
		Status:   model.StatusDraft,
		AuthorID: viewerID,
		Limit:    p.Limit,
		Offset:   p.Offset,
	})
}

func (s *Service) list(ctx context.Context, viewerID int64, f Filter) (*List, error) {
	articles, count, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	views, err := s.decorate(ctx, viewerID, articles)
	if err != nil {
		return nil, err
	}

	return &List{Views: views, Count: count}, nil
}

// PublishResult reports the outcome of a batch publish.
type PublishResult struct {
	Published []string  `json:"published"`
	Skipped   []Skipped `json:"skipped"`
}

// Publish publishes the drafts of viewerID among slugs in one transaction.
// Slugs that cannot be published are reported with a reason instead of
// failing the batch.
func (s *Service) Publish(ctx context.Context, viewerID int64, slugs []string) (*PublishResult, error) {
	slugs = normalizeTags(slugs)
	if len(slugs) == 0 {
		return nil, ErrEmptyPublish
	}

	res := &PublishResult{Published: []string{}, Skipped: []Skipped{}}
	var published []*model.Article

	err := s.store.Tx(ctx, func(ctx context.Context, tx *Store) error {
		found, err := tx.BySlugs(ctx, slugs)
		if err != nil {
			return err
		}

		now := s.now()
		for _, slug := range slugs {
			a, ok := found[slug]
			switch {
			case !ok || !a.Visible(viewerID):
				res.Skipped = append(res.Skipped, Skipped{Slug: slug, Reason: SkipNotFound})
			case a.AuthorID != viewerID:
				res.Skipped = append(res.Skipped, Skipped{Slug: slug, Reason: SkipNotOwner})
			case a.Status == model.StatusPublished:
				res.Skipped = append(res.Skipped, Skipped{Slug: slug, Reason: SkipAlreadyPublished})
			default:
				a.Status = model.StatusPublished
				a.PublishedAt = &now
				if err := tx.SetStatus(ctx, a); err != nil {
					return err
				}
				res.Published = append(res.Published, slug)
				published = append(published, a)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("publish articles: %w", err)
	}

	for _, a := range published {
		s.rank(ctx, a)
		s.emit(ctx, events.ArticlePublished, a, viewerID)
	}

	return res, nil
}

type MonthlyStatistic struct {
	Year              int    `json:"year"`
	Month             int    `json:"month"`
	MonthName         string `json:"monthName"`
	ArticlesCount     int    `json:"articlesCount"`
	TotalInteractions int    `json:"totalInteractions"`
}

// Statistics summarizes an author's articles per month since the account
// was created. Interactions are favorites plus comments.
type Statistics struct {
	Statistics        []MonthlyStatistic `json:"statistics"`
	TotalArticles     int                `json:"totalArticles"`
	TotalInteractions int                `json:"totalInteractions"`
	AccountCreatedAt  time.Time          `json:"accountCreatedAt"`
	PeriodStart       time.Time          `json:"periodStart"`
	PeriodEnd         time.Time          `json:"periodEnd"`
}

func (s *Service) Statistics(ctx context.Context, viewerID int64) (*Statistics, error) {
	u, err := s.users.ByID(ctx, viewerID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, user.ErrUserGone
		}

		return nil, fmt.Errorf("find user %d: %w", viewerID, err)
	}

	articles, err := s.store.Activity(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	created := u.CreatedAt.UTC()
	end := s.now()
	start := time.Date(created.Year(), created.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &Statistics{
		Statistics:       []MonthlyStatistic{},
		AccountCreatedAt: created,
		PeriodStart:      start,
		PeriodEnd:        end,
	}

	index := make(map[int]int)
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		index[m.Year()*12+int(m.Month())] = len(stats.Statistics)
		stats.Statistics = append(stats.Statistics, MonthlyStatistic{
			Year:      m.Year(),
			Month:     int(m.Month()),
			MonthName: m.Month().String(),
		})
	}

	for _, a := range articles {
		at := a.CreatedAt.UTC()
		i, ok := index[at.Year()*12+int(at.Month())]
		if !ok {
			continue
		}

		interactions := a.FavoritesCount + a.CommentsCount
		stats.Statistics[i].ArticlesCount++
		stats.Statistics[i].TotalInteractions += interactions
		stats.TotalArticles++
		stats.TotalInteractions += interactions
	}

	return stats, nil
}

// Popular returns the most favorited published articles. The order comes
// from the ranking when one is configured, from the database otherwise.
// Ranked ids that no longer resolve to a published article are backfilled
// from the database.
func (s *Service) Popular(ctx context.Context, viewerID int64, limit int) ([]*View, error) {
	var articles []*model.Article

	ids, err := s.ranker.Top(ctx, limit)
	if err == nil {
		articles, err = s.store.ByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load ranked articles: %w", err)
		}
	} else if !errors.Is(err, ranking.ErrDisabled) {
		logger.FromContext(ctx).Warnw("ranking unavailable, using database", "error", err)
	}

	if len(articles) < limit {
		more, err := s.store.MostFavorited(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("load popular articles: %w", err)
		}

		articles = fill(articles, more, limit)
	}

	return s.decorate(ctx, viewerID, articles)
}

// fill appends articles from more that are not in articles yet, up to limit.
func fill(articles, more []*model.Article, limit int) []*model.Article {
	seen := make(map[int64]bool, len(articles))
	for _, a := range articles {
		seen[a.ID] = true
	}

	for _, a := range more {
		if len(articles) >= limit {
			break
		}
		if !seen[a.ID] {
			seen[a.ID] = true
			articles = append(articles, a)
		}
	}

	return articles
}

func (s *Service) Tags(ctx context.Context) ([]string, error) {
	names, err := s.store.TagNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return names, nil
}

// emit publishes an event and only logs failures.
func (s *Service) emit(ctx context.Context, typ string, a *model.Article, actorID int64) {
	ev := events.Event{
		Type:        typ,
		ArticleID:   a.ID,
		ArticleSlug: a.Slug,
		ActorID:     actorID,
		OccurredAt:  s.now(),
	}

	if err := s.events.Publish(ctx, ev); err != nil {
		logger.FromContext(ctx).Warnw("publish event", "type", typ, "article", a.Slug, "error", strings.TrimSpace(err.Error()))
	}
}
