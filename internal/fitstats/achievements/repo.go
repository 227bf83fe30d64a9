package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) ListAwards(ctx context.Context, userID uuid.UUID) (_ []Award, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.achievements.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT user_id, badge_id, earned_at
		FROM badge_award
		WHERE user_id = $1
		ORDER BY earned_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query badge awards: %w", err)
	}

	awards, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Award])
	if err != nil {
		return nil, fmt.Errorf("collect badge awards: %w", err)
	}

	return awards, nil
}

// InsertAwardIfAbsent inserts the award unless the user already
// holds that badge. The unique key on (user_id, badge_id) makes
// this safe under concurrent evaluations, only one caller sees
// true for a given badge.
func (r *Repo) InsertAwardIfAbsent(ctx context.Context, userID uuid.UUID, badgeID string, earnedAt time.Time) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.achievements.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx,
		`INSERT INTO badge_award (user_id, badge_id, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_id) DO NOTHING`,
		userID, badgeID, earnedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert badge award: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
