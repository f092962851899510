package database

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// SlowQueryHook logs queries that take longer than threshold.
type SlowQueryHook struct {
	threshold time.Duration
	log       *zap.SugaredLogger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event.Err != nil {
		return
	}

	if d := time.Since(event.StartTime); d > h.threshold {
		h.log.Warnw("slow query",
			"operation", event.Operation(),
			"duration", d.Round(time.Microsecond).String(),
			"query", event.Query,
		)
	}
}
