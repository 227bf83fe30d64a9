package goals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrLogNotFound  = errors.New("log entry not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) AddGoal(ctx context.Context, goal Goal) (_ Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	goal.Active = true

	_, err = r.db.Exec(ctx,
		`INSERT INTO goal
			(id, user_id, name, metric, target, frequency, is_workout, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		goal.ID, goal.UserID, goal.Name, goal.Metric, goal.Target,
		goal.Frequency, goal.IsWorkout, goal.Active, goal.CreatedAt, goal.UpdatedAt,
	)
	if err != nil {
		return Goal{}, fmt.Errorf("insert goal: %w", err)
	}

	return goal, nil
}

func (r *Repo) GetGoal(ctx context.Context, userID, goalID uuid.UUID) (_ Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name, metric, target, frequency, is_workout, active, created_at, updated_at
		FROM goal
		WHERE id = $1 AND user_id = $2`,
		goalID, userID,
	)
	if err != nil {
		return Goal{}, fmt.Errorf("query goal: %w", err)
	}

	goal, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[Goal])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Goal{}, ErrGoalNotFound
		}
		return Goal{}, fmt.Errorf("collect goal: %w", err)
	}

	return goal, nil
}

func (r *Repo) ListGoals(ctx context.Context, userID uuid.UUID, onlyActive bool) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `SELECT id, user_id, name, metric, target, frequency, is_workout, active, created_at, updated_at
		FROM goal
		WHERE user_id = $1`
	if onlyActive {
		query += ` AND active`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}

	goals, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Goal])
	if err != nil {
		return nil, fmt.Errorf("collect goals: %w", err)
	}

	return goals, nil
}

func (r *Repo) UpdateGoal(ctx context.Context, goal Goal) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx,
		`UPDATE goal
		SET name = $1, metric = $2, target = $3, frequency = $4, is_workout = $5, active = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9`,
		goal.Name, goal.Metric, goal.Target, goal.Frequency, goal.IsWorkout,
		goal.Active, time.Now().UTC(), goal.ID, goal.UserID,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// DeactivateGoal keeps the goal row around so old log entries
// and historical progress still resolve, but excludes it from
// future aggregation
func (r *Repo) DeactivateGoal(ctx context.Context, userID, goalID uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.deactivate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx,
		`UPDATE goal SET active = FALSE, updated_at = $1 WHERE id = $2 AND user_id = $3`,
		time.Now().UTC(), goalID, userID,
	)
	if err != nil {
		return fmt.Errorf("deactivate goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}

	return nil
}

func (r *Repo) AddLog(ctx context.Context, entry LogEntry) (_ LogEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.addlog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().UTC()
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO log_entry
			(id, user_id, goal_id, value, calories, minutes, note, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.UserID, entry.GoalID, entry.Value,
		entry.Calories, entry.Minutes, entry.Note, entry.LoggedAt,
	)
	if err != nil {
		return LogEntry{}, fmt.Errorf("insert log entry: %w", err)
	}

	return entry, nil
}

// ListLogsForDay returns the user's log entries whose timestamp
// falls on the given UTC calendar day
func (r *Repo) ListLogsForDay(ctx context.Context, userID uuid.UUID, day time.Time) (_ []LogEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.logsforday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	day = DayOf(day)
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, goal_id, value, calories, minutes, note, logged_at
		FROM log_entry
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		ORDER BY logged_at`,
		userID, day, day.AddDate(0, 0, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("query log entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[LogEntry])
	if err != nil {
		return nil, fmt.Errorf("collect log entries: %w", err)
	}

	return entries, nil
}

func (r *Repo) ListLogs(ctx context.Context, params ListLogsParams) (_ []LogEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.listlogs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `SELECT id, user_id, goal_id, value, calories, minutes, note, logged_at
		FROM log_entry
		WHERE user_id = $1`
	args := []interface{}{params.UserID}
	if params.GoalID != uuid.Nil {
		args = append(args, params.GoalID)
		query += fmt.Sprintf(" AND goal_id = $%d", len(args))
	}
	if !params.From.IsZero() {
		args = append(args, params.From)
		query += fmt.Sprintf(" AND logged_at >= $%d", len(args))
	}
	if !params.To.IsZero() {
		args = append(args, params.To)
		query += fmt.Sprintf(" AND logged_at < $%d", len(args))
	}
	query += ` ORDER BY logged_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query log entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[LogEntry])
	if err != nil {
		return nil, fmt.Errorf("collect log entries: %w", err)
	}

	return entries, nil
}

type ListLogsParams struct {
	UserID uuid.UUID
	GoalID uuid.UUID
	From   time.Time
	To     time.Time
}

func (r *Repo) DeleteLog(ctx context.Context, userID, logID uuid.UUID) (_ LogEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.deletelog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`DELETE FROM log_entry
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, goal_id, value, calories, minutes, note, logged_at`,
		logID, userID,
	)
	if err != nil {
		return LogEntry{}, fmt.Errorf("delete log entry: %w", err)
	}

	entry, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[LogEntry])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LogEntry{}, ErrLogNotFound
		}
		return LogEntry{}, fmt.Errorf("collect deleted log entry: %w", err)
	}

	return entry, nil
}

// FirstLogDay returns the UTC day of the user's earliest log
// entry, or a zero time when the user has no logs yet
func (r *Repo) FirstLogDay(ctx context.Context, userID uuid.UUID) (_ time.Time, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.firstlogday")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var first *time.Time
	err = r.db.QueryRow(ctx,
		`SELECT MIN(logged_at) FROM log_entry WHERE user_id = $1`,
		userID,
	).Scan(&first)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("query first log day: %w", err)
	}
	if first == nil {
		return time.Time{}, nil
	}

	return DayOf(*first), nil
}
