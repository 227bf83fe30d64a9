package weekly

import (
	"context"
	"errors"
	"fmt"

	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoWeeklyRecord = errors.New("no weekly record")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Upsert(ctx context.Context, record Record) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weekly.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx,
		`INSERT INTO weekly_milestone
			(user_id, iso_year, iso_week, week_start, total_goals, goals_completed,
			completion_rate, workout_days, calories_burned, exercise_minutes,
			streak_at_week_end, milestone_achieved, milestone_type, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id, iso_year, iso_week) DO UPDATE SET
			week_start = EXCLUDED.week_start,
			total_goals = EXCLUDED.total_goals,
			goals_completed = EXCLUDED.goals_completed,
			completion_rate = EXCLUDED.completion_rate,
			workout_days = EXCLUDED.workout_days,
			calories_burned = EXCLUDED.calories_burned,
			exercise_minutes = EXCLUDED.exercise_minutes,
			streak_at_week_end = EXCLUDED.streak_at_week_end,
			milestone_achieved = EXCLUDED.milestone_achieved,
			milestone_type = EXCLUDED.milestone_type,
			updated_at = EXCLUDED.updated_at`,
		record.UserID, record.ISOYear, record.ISOWeek, record.WeekStart,
		record.TotalGoals, record.GoalsCompleted, record.CompletionRate,
		record.WorkoutDays, record.CaloriesBurned, record.ExerciseMinutes,
		record.StreakAtWeekEnd, record.MilestoneAchieved, record.MilestoneType,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert weekly milestone: %w", err)
	}

	return nil
}

func (r *Repo) Get(ctx context.Context, userID uuid.UUID, isoYear, isoWeek int) (_ Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weekly.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT user_id, iso_year, iso_week, week_start, total_goals, goals_completed,
			completion_rate, workout_days, calories_burned, exercise_minutes,
			streak_at_week_end, milestone_achieved, milestone_type, updated_at
		FROM weekly_milestone
		WHERE user_id = $1 AND iso_year = $2 AND iso_week = $3`,
		userID, isoYear, isoWeek,
	)
	if err != nil {
		return Record{}, fmt.Errorf("query weekly milestone: %w", err)
	}

	record, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[Record])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNoWeeklyRecord
		}
		return Record{}, fmt.Errorf("collect weekly milestone: %w", err)
	}

	return record, nil
}

// Recent returns up to limit weekly records, oldest first
func (r *Repo) Recent(ctx context.Context, userID uuid.UUID, limit int) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weekly.recent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT user_id, iso_year, iso_week, week_start, total_goals, goals_completed,
			completion_rate, workout_days, calories_burned, exercise_minutes,
			streak_at_week_end, milestone_achieved, milestone_type, updated_at
		FROM (
			SELECT * FROM weekly_milestone
			WHERE user_id = $1
			ORDER BY week_start DESC
			LIMIT $2
		) recent
		ORDER BY week_start`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent weekly milestones: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Record])
	if err != nil {
		return nil, fmt.Errorf("collect recent weekly milestones: %w", err)
	}

	return records, nil
}
