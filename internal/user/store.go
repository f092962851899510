package user

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ByID(ctx context.Context, id int64) (*model.User, error) {
	return s.one(ctx, "u.id = ?", id)
}

func (s *Store) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.one(ctx, "u.email = ?", email)
}

func (s *Store) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.one(ctx, "u.username = ?", username)
}

func (s *Store) one(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	u := new(model.User)
	if err := s.db.NewSelect().Model(u).Where(where, arg).Limit(1).Scan(ctx); err != nil {
		return nil, err
	}

	return u, nil
}

// Taken reports whether another user than exceptID already uses value in
// column.
func (s *Store) Taken(ctx context.Context, column, value string, exceptID int64) (bool, error) {
	return s.db.NewSelect().
		Model((*model.User)(nil)).
		Where("? = ?", bun.Ident("u."+column), value).
		Where("u.id <> ?", exceptID).
		Exists(ctx)
}

func (s *Store) Create(ctx context.Context, u *model.User) error {
	_, err := s.db.NewInsert().Model(u).Exec(ctx)

	return err
}

// Update writes the given columns of u. updated_at is always written.
func (s *Store) Update(ctx context.Context, u *model.User, columns ...string) error {
	_, err := s.db.NewUpdate().
		Model(u).
		Column(append(columns, "updated_at")...).
		WherePK().
		Exec(ctx)

	return err
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	return s.db.NewSelect().
		Model((*model.Follow)(nil)).
		Where("fo.follower_id = ?", followerID).
		Where("fo.following_id = ?", followingID).
		Exists(ctx)
}

func (s *Store) Follow(ctx context.Context, followerID, followingID int64) error {
	f := &model.Follow{FollowerID: followerID, FollowingID: followingID, CreatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().Model(f).Exec(ctx)

	return err
}

// Unfollow removes the link and reports whether one existed.
func (s *Store) Unfollow(ctx context.Context, followerID, followingID int64) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*model.Follow)(nil)).
		Where("follower_id = ?", followerID).
		Where("following_id = ?", followingID).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()

	return n > 0, err
}

// FollowingSet returns which of ids followerID follows.
func (s *Store) FollowingSet(ctx context.Context, followerID int64, ids []int64) (map[int64]bool, error) {
	set := make(map[int64]bool)
	if followerID == 0 || len(ids) == 0 {
		return set, nil
	}

	var following []int64
	err := s.db.NewSelect().
		Model((*model.Follow)(nil)).
		Column("fo.following_id").
		Where("fo.follower_id = ?", followerID).
		Where("fo.following_id IN (?)", bun.In(ids)).
		Scan(ctx, &following)
	if err != nil {
		return nil, err
	}

	for _, id := range following {
		set[id] = true
	}

	return set, nil
}
