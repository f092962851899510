package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// User data model.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Email     string    `bun:"email,notnull,unique"`
	Username  string    `bun:"username,notnull,unique"`
	Password  string    `bun:"password,notnull"`
	Bio       *string   `bun:"bio,type:text"`
	Image     *string   `bun:"image"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

var _ bun.BeforeAppendModelHook = (*User)(nil)

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		u.UpdatedAt = u.CreatedAt
	case *bun.UpdateQuery:
		u.UpdatedAt = now
	}

	return nil
}

// Follow links a follower to the user they follow.
type Follow struct {
	bun.BaseModel `bun:"table:follows,alias:fo"`

	FollowerID  int64     `bun:"follower_id,pk"`
	FollowingID int64     `bun:"following_id,pk"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}
