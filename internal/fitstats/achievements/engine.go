package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/progress"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/streak"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/metrics"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=engine_mocks_test.go -package=achievements

type historySource interface {
	ListGoals(ctx context.Context, userID uuid.UUID, onlyActive bool) ([]goals.Goal, error)
	ListLogs(ctx context.Context, params goals.ListLogsParams) ([]goals.LogEntry, error)
	FirstLogDay(ctx context.Context, userID uuid.UUID) (time.Time, error)
}

type progressSource interface {
	History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]progress.DailyRecord, error)
}

type awardsStore interface {
	ListAwards(ctx context.Context, userID uuid.UUID) ([]Award, error)
	InsertAwardIfAbsent(ctx context.Context, userID uuid.UUID, badgeID string, earnedAt time.Time) (bool, error)
}

// Award records that a user earned a catalog badge
type Award struct {
	UserID   uuid.UUID `json:"userId"`
	BadgeID  string    `json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
}

// AchievementEvent is emitted for every badge newly earned by an
// evaluation run
type AchievementEvent struct {
	Badge    Badge     `json:"badge"`
	EarnedAt time.Time `json:"earnedAt"`
}

// evalContext carries everything the badge predicates look at,
// gathered once per evaluation run
type evalContext struct {
	totalGoals     int
	totalLogs      int
	longestStreak  int
	consistency    float64
	maxTargetRatio float64
	perfectLogs    int
}

// Engine checks the badge catalog against a user's history and
// persists newly earned awards. Safe to invoke concurrently for
// the same user, the store's uniqueness guarantee keeps every
// badge single-awarded.
type Engine struct {
	history  historySource
	progress progressSource
	awards   awardsStore
	metrics  *metrics.Manager
}

func NewEngine(history historySource, progressSource progressSource, awards awardsStore, metricsManager *metrics.Manager) *Engine {
	return &Engine{
		history:  history,
		progress: progressSource,
		awards:   awards,
		metrics:  metricsManager,
	}
}

// CheckAndAward evaluates every not-yet-earned badge for the user
// and returns the newly earned ones. An empty result is the
// normal outcome. On a load failure nothing is awarded and the
// call can simply be retried.
func (e *Engine) CheckAndAward(ctx context.Context, userID uuid.UUID, today time.Time) (_ []AchievementEvent, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "achievements.check")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	existing, err := e.awards.ListAwards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list existing awards: %w", err)
	}
	earned := make(map[string]struct{}, len(existing))
	for _, award := range existing {
		earned[award.BadgeID] = struct{}{}
	}
	if len(earned) == len(Catalog) {
		return nil, nil
	}

	ec, err := e.gather(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	var events []AchievementEvent
	now := time.Now().UTC()
	for _, badge := range Catalog {
		if _, alreadyEarned := earned[badge.ID]; alreadyEarned {
			continue
		}
		if !badge.satisfied(ec) {
			continue
		}

		inserted, err := e.awards.InsertAwardIfAbsent(ctx, userID, badge.ID, now)
		if err != nil {
			return nil, fmt.Errorf("insert award %q: %w", badge.ID, err)
		}
		if !inserted {
			// a concurrent evaluation got there first
			continue
		}

		log.Infof("user %s earned badge %q", userID, badge.ID)
		e.metrics.CounterBadgesAwarded.Inc()
		events = append(events, AchievementEvent{Badge: badge, EarnedAt: now})
	}

	return events, nil
}

func (e *Engine) gather(ctx context.Context, userID uuid.UUID, today time.Time) (evalContext, error) {
	userGoals, err := e.history.ListGoals(ctx, userID, false)
	if err != nil {
		return evalContext{}, fmt.Errorf("list goals: %w", err)
	}
	logs, err := e.history.ListLogs(ctx, goals.ListLogsParams{UserID: userID})
	if err != nil {
		return evalContext{}, fmt.Errorf("list log entries: %w", err)
	}
	firstLogDay, err := e.history.FirstLogDay(ctx, userID)
	if err != nil {
		return evalContext{}, fmt.Errorf("first log day: %w", err)
	}

	today = goals.DayOf(today)
	history, err := e.progress.History(ctx, userID, firstLogDay, today.AddDate(0, 0, 1))
	if err != nil {
		return evalContext{}, fmt.Errorf("progress history: %w", err)
	}

	ec := evalContext{
		totalGoals:    len(userGoals),
		totalLogs:     len(logs),
		longestStreak: streak.Longest(history, streak.DefaultThreshold),
	}

	goalByID := make(map[uuid.UUID]goals.Goal, len(userGoals))
	for _, goal := range userGoals {
		goalByID[goal.ID] = goal
	}

	loggedDays := make(map[time.Time]struct{})
	for _, entry := range logs {
		loggedDays[entry.Day()] = struct{}{}

		goal, ok := goalByID[entry.GoalID]
		if !ok || goal.DailyTarget() <= 0 {
			continue
		}
		ratio := entry.Value / goal.DailyTarget()
		if ratio > ec.maxTargetRatio {
			ec.maxTargetRatio = ratio
		}
		if ratio >= 1 {
			ec.perfectLogs++
		}
	}

	if !firstLogDay.IsZero() {
		daysTracked := int(today.Sub(firstLogDay).Hours()/24) + 1
		if daysTracked > 0 {
			ec.consistency = float64(len(loggedDays)) / float64(daysTracked) * 100
			if ec.consistency > 100 {
				ec.consistency = 100
			}
		}
	}

	return ec, nil
}
