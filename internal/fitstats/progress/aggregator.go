package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/metrics"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type goalsSource interface {
	ListGoals(ctx context.Context, userID uuid.UUID, onlyActive bool) ([]goals.Goal, error)
	ListLogsForDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]goals.LogEntry, error)
}

type progressStore interface {
	Upsert(ctx context.Context, record DailyRecord) error
	Get(ctx context.Context, userID uuid.UUID, day time.Time) (DailyRecord, error)
}

// Aggregator recomputes a user's daily progress record from the
// raw log entries of that day
type Aggregator struct {
	goals   goalsSource
	store   progressStore
	metrics *metrics.Manager
}

func NewAggregator(goalsSource goalsSource, store progressStore, metricsManager *metrics.Manager) *Aggregator {
	return &Aggregator{
		goals:   goalsSource,
		store:   store,
		metrics: metricsManager,
	}
}

// AggregateDay rebuilds the daily record for the given user and
// day and stores it. Log entries pointing to goals that are gone
// or deactivated are skipped, a single stray entry never fails
// the whole day.
func (a *Aggregator) AggregateDay(ctx context.Context, userID uuid.UUID, day time.Time) (_ DailyRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "progress.aggregate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	day = goals.DayOf(day)

	activeGoals, err := a.goals.ListGoals(ctx, userID, true)
	if err != nil {
		return DailyRecord{}, fmt.Errorf("list goals: %w", err)
	}
	entries, err := a.goals.ListLogsForDay(ctx, userID, day)
	if err != nil {
		return DailyRecord{}, fmt.Errorf("list log entries: %w", err)
	}

	goalByID := make(map[uuid.UUID]goals.Goal, len(activeGoals))
	for _, goal := range activeGoals {
		goalByID[goal.ID] = goal
	}

	record := DailyRecord{
		UserID:     userID,
		Day:        day,
		TotalGoals: len(activeGoals),
	}

	loggedPerGoal := make(map[uuid.UUID]float64)
	for _, entry := range entries {
		if _, ok := goalByID[entry.GoalID]; !ok {
			log.Warnf("aggregate day %s for user %s: log entry %s references unknown goal %s, skipping",
				day.Format(time.DateOnly), userID, entry.ID, entry.GoalID)
			continue
		}
		loggedPerGoal[entry.GoalID] += entry.Value
		record.CaloriesBurned += entry.Calories
		record.ExerciseMinutes += entry.Minutes
	}

	for goalID, logged := range loggedPerGoal {
		goal := goalByID[goalID]
		if logged >= goal.DailyTarget() {
			record.GoalsCompleted++
			if goal.IsWorkout {
				record.WorkoutCompleted = true
			}
		}
	}

	if record.TotalGoals > 0 {
		record.CompletionRate = float64(record.GoalsCompleted) / float64(record.TotalGoals) * 100
	}

	record.Streak, err = a.streakAt(ctx, record)
	if err != nil {
		return DailyRecord{}, fmt.Errorf("resolve streak: %w", err)
	}
	record.UpdatedAt = time.Now().UTC()

	if err := a.store.Upsert(ctx, record); err != nil {
		return DailyRecord{}, fmt.Errorf("upsert daily record: %w", err)
	}

	a.metrics.CounterAggregationsRun.Inc()
	return record, nil
}

// streakAt chains the streak off the previous day's stored
// record, so recomputing a day is idempotent. Only a missing
// previous record starts the streak over, any other store error
// aborts the aggregation before a wrong streak gets persisted.
func (a *Aggregator) streakAt(ctx context.Context, record DailyRecord) (int, error) {
	if !record.StreakKept() {
		return 0, nil
	}

	previous, err := a.store.Get(ctx, record.UserID, record.Day.AddDate(0, 0, -1))
	if err != nil {
		if errors.Is(err, ErrNoProgress) {
			return 1, nil
		}
		return 0, fmt.Errorf("get previous daily record: %w", err)
	}

	return previous.Streak + 1, nil
}
