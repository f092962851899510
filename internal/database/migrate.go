package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

// Migration is an applied migration record.
type Migration struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Version   string    `bun:"version,pk"`
	Name      string    `bun:"name,notnull"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

type migrationFunc func(ctx context.Context, db bun.IDB) error

type migrationItem struct {
	Version string
	Name    string
	Up      migrationFunc
}

type index struct {
	model   interface{}
	name    string
	columns []string
}

var indexes = []index{
	{(*model.Article)(nil), "articles_author_id_idx", []string{"author_id"}},
	{(*model.Article)(nil), "articles_status_created_at_idx", []string{"status", "created_at"}},
	{(*model.Comment)(nil), "comments_article_id_idx", []string{"article_id"}},
	{(*model.Favorite)(nil), "favorites_article_id_idx", []string{"article_id"}},
	{(*model.Follow)(nil), "follows_following_id_idx", []string{"following_id"}},
	{(*model.ArticleTag)(nil), "article_tags_tag_id_idx", []string{"tag_id"}},
}

func migrations(d dialect.Name) []migrationItem {
	return []migrationItem{
		{
			Version: "0001",
			Name:    "create_tables",
			Up: func(ctx context.Context, db bun.IDB) error {
				for _, m := range model.Models() {
					if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
						return fmt.Errorf("create table for %T: %w", m, err)
					}
				}

				return nil
			},
		},
		{
			Version: "0002",
			Name:    "create_indexes",
			Up: func(ctx context.Context, db bun.IDB) error {
				for _, idx := range indexes {
					q := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...)
					// mysql has no CREATE INDEX IF NOT EXISTS
					if d != dialect.MySQL {
						q = q.IfNotExists()
					}
					if _, err := q.Exec(ctx); err != nil && !isExistingIndex(err) {
						return fmt.Errorf("create index %s: %w", idx.name, err)
					}
				}

				return nil
			},
		},
	}
}

// Migrate creates the migration table and applies every pending migration in
// version order, each inside its own transaction.
func Migrate(ctx context.Context, db *bun.DB, log *zap.SugaredLogger) error {
	if _, err := db.NewCreateTable().Model((*Migration)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var applied []Migration
	if err := db.NewSelect().Model(&applied).Scan(ctx); err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	items := migrations(db.Dialect().Name())
	sort.Slice(items, func(i, j int) bool { return items[i].Version < items[j].Version })

	for _, item := range items {
		if done[item.Version] {
			continue
		}

		err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := item.Up(ctx, tx); err != nil {
				return err
			}
			record := &Migration{Version: item.Version, Name: item.Name, AppliedAt: time.Now().UTC()}
			_, err := tx.NewInsert().Model(record).Exec(ctx)

			return err
		})
		if err != nil {
			return fmt.Errorf("migration %s_%s: %w", item.Version, item.Name, err)
		}

		if log != nil {
			log.Infow("migration applied", "version", item.Version, "name", item.Name)
		}
	}

	return nil
}
