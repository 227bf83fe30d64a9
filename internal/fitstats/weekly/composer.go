package weekly

import (
	"context"
	"fmt"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/progress"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"

	"github.com/google/uuid"
)

type progressHistory interface {
	History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]progress.DailyRecord, error)
}

type weeklyStore interface {
	Upsert(ctx context.Context, record Record) error
}

// Composer rolls the seven daily records of a week up into one
// weekly milestone record
type Composer struct {
	progress  progressHistory
	store     weeklyStore
	weekStart time.Weekday
}

func NewComposer(progressHistory progressHistory, store weeklyStore, weekStart time.Weekday) *Composer {
	return &Composer{
		progress:  progressHistory,
		store:     store,
		weekStart: weekStart,
	}
}

// ComposeWeek recomputes and stores the weekly record covering
// the given day. Days without a daily record count as zero
// completion. Composing the same week again replaces the stored
// record instead of duplicating it.
func (c *Composer) ComposeWeek(ctx context.Context, userID uuid.UUID, dayInWeek time.Time) (_ Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "weekly.compose")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	weekStart := WeekStartOf(dayInWeek, c.weekStart)
	weekEnd := weekStart.AddDate(0, 0, 7)

	days, err := c.progress.History(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return Record{}, fmt.Errorf("load daily records: %w", err)
	}

	isoYear, isoWeek := weekStart.ISOWeek()
	record := Record{
		UserID:    userID,
		ISOYear:   isoYear,
		ISOWeek:   isoWeek,
		WeekStart: weekStart,
	}

	lastDay := weekStart.AddDate(0, 0, 6)
	var rateSum float64
	for _, dayRecord := range days {
		record.TotalGoals += dayRecord.TotalGoals
		record.GoalsCompleted += dayRecord.GoalsCompleted
		record.CaloriesBurned += dayRecord.CaloriesBurned
		record.ExerciseMinutes += dayRecord.ExerciseMinutes
		rateSum += dayRecord.CompletionRate
		if dayRecord.WorkoutCompleted {
			record.WorkoutDays++
		}
		if goals.DayOf(dayRecord.Day).Equal(lastDay) {
			record.StreakAtWeekEnd = dayRecord.Streak
		}
	}
	record.CompletionRate = rateSum / 7

	record.MilestoneType, record.MilestoneAchieved = Classify(record)
	record.UpdatedAt = time.Now().UTC()

	if err := c.store.Upsert(ctx, record); err != nil {
		return Record{}, fmt.Errorf("upsert weekly record: %w", err)
	}

	return record, nil
}
