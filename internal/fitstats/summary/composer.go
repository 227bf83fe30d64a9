package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/fitstats/achievements"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/progress"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/streak"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/trend"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/weekly"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// trendWindowDays is how far back the daily rate series for the
// trend analysis reaches
const trendWindowDays = 14

type progressSource interface {
	History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]progress.DailyRecord, error)
}

type awardsSource interface {
	ListAwards(ctx context.Context, userID uuid.UUID) ([]achievements.Award, error)
}

// Composer assembles the ProgressStats view model from the
// derived records, purely read side
type Composer struct {
	progress  progressSource
	awards    awardsSource
	weekStart time.Weekday
}

func NewComposer(progressSource progressSource, awards awardsSource, weekStart time.Weekday) *Composer {
	return &Composer{
		progress:  progressSource,
		awards:    awards,
		weekStart: weekStart,
	}
}

func (c *Composer) Compose(ctx context.Context, userID uuid.UUID, today time.Time) (_ ProgressStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "summary.compose")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	today = goals.DayOf(today)

	// the monthly window covers every shorter one
	history, err := c.progress.History(ctx, userID, today.AddDate(0, 0, -29), today.AddDate(0, 0, 1))
	if err != nil {
		return ProgressStats{}, fmt.Errorf("load progress history: %w", err)
	}
	awards, err := c.awards.ListAwards(ctx, userID)
	if err != nil {
		return ProgressStats{}, fmt.Errorf("load badge awards: %w", err)
	}

	stats := ProgressStats{
		CurrentStreak: streak.Current(history, today, streak.DefaultThreshold),
		LongestStreak: streak.Longest(history, streak.DefaultThreshold),
	}
	if stats.CurrentStreak > stats.LongestStreak {
		// the 30 day window can cut a long running streak short
		stats.LongestStreak = stats.CurrentStreak
	}

	weekStart := weekly.WeekStartOf(today, c.weekStart)
	var weekRateSum, monthRateSum float64
	var trendRates []float64
	for _, record := range history {
		day := goals.DayOf(record.Day)
		monthRateSum += record.CompletionRate
		if !day.Before(today.AddDate(0, 0, -6)) {
			weekRateSum += record.CompletionRate
		}
		if !day.Before(weekStart) {
			if record.WorkoutCompleted {
				stats.WorkoutDaysThisWeek++
			}
			stats.CaloriesThisWeek += record.CaloriesBurned
		}
		if !day.Before(today.AddDate(0, 0, -(trendWindowDays - 1))) {
			trendRates = append(trendRates, record.CompletionRate)
		}
	}
	stats.WeeklyCompletionRate = weekRateSum / 7
	stats.MonthlyCompletionRate = monthRateSum / 30
	stats.Trend = trend.Analyze(trendRates)

	for _, award := range awards {
		badge, ok := achievements.BadgeByID(award.BadgeID)
		if !ok {
			log.Warnf("user %s holds unknown badge %q, skipping", userID, award.BadgeID)
			continue
		}
		stats.TotalPoints += badge.Points
	}

	stats.NextMilestone = nextMilestone(
		float64(stats.CurrentStreak),
		float64(stats.WorkoutDaysThisWeek),
		float64(stats.CaloriesThisWeek),
	)

	return stats, nil
}
