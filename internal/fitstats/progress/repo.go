package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoProgress = errors.New("no progress record")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Upsert(ctx context.Context, record DailyRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx,
		`INSERT INTO daily_progress
			(user_id, day, goals_completed, total_goals, completion_rate,
			workout_completed, calories_burned, exercise_minutes, streak, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, day) DO UPDATE SET
			goals_completed = EXCLUDED.goals_completed,
			total_goals = EXCLUDED.total_goals,
			completion_rate = EXCLUDED.completion_rate,
			workout_completed = EXCLUDED.workout_completed,
			calories_burned = EXCLUDED.calories_burned,
			exercise_minutes = EXCLUDED.exercise_minutes,
			streak = EXCLUDED.streak,
			updated_at = EXCLUDED.updated_at`,
		record.UserID, goals.DayOf(record.Day), record.GoalsCompleted, record.TotalGoals,
		record.CompletionRate, record.WorkoutCompleted, record.CaloriesBurned,
		record.ExerciseMinutes, record.Streak, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert daily progress: %w", err)
	}

	return nil
}

func (r *Repo) Get(ctx context.Context, userID uuid.UUID, day time.Time) (_ DailyRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT user_id, day, goals_completed, total_goals, completion_rate,
			workout_completed, calories_burned, exercise_minutes, streak, updated_at
		FROM daily_progress
		WHERE user_id = $1 AND day = $2`,
		userID, goals.DayOf(day),
	)
	if err != nil {
		return DailyRecord{}, fmt.Errorf("query daily progress: %w", err)
	}

	record, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[DailyRecord])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DailyRecord{}, ErrNoProgress
		}
		return DailyRecord{}, fmt.Errorf("collect daily progress: %w", err)
	}

	return record, nil
}

// History returns the user's daily records in the half open range
// [from, to), ordered by day ascending
func (r *Repo) History(ctx context.Context, userID uuid.UUID, from, to time.Time) (_ []DailyRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT user_id, day, goals_completed, total_goals, completion_rate,
			workout_completed, calories_burned, exercise_minutes, streak, updated_at
		FROM daily_progress
		WHERE user_id = $1 AND day >= $2 AND day < $3
		ORDER BY day`,
		userID, goals.DayOf(from), goals.DayOf(to),
	)
	if err != nil {
		return nil, fmt.Errorf("query daily progress history: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[DailyRecord])
	if err != nil {
		return nil, fmt.Errorf("collect daily progress history: %w", err)
	}

	return records, nil
}

// LongestStreak returns the maximum streak value the user has
// ever recorded
func (r *Repo) LongestStreak(ctx context.Context, userID uuid.UUID) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.longeststreak")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var longest int
	if err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(streak), 0) FROM daily_progress WHERE user_id = $1`,
		userID,
	).Scan(&longest); err != nil {
		return 0, fmt.Errorf("query longest streak: %w", err)
	}

	return longest, nil
}

// CountDaysAbove returns how many recorded days have a completion
// rate of at least the given threshold
func (r *Repo) CountDaysAbove(ctx context.Context, userID uuid.UUID, threshold float64) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.daysabove")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM daily_progress WHERE user_id = $1 AND completion_rate >= $2`,
		userID, threshold,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count days above threshold: %w", err)
	}

	return count, nil
}
