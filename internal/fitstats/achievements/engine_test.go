package achievements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/progress"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/metrics"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var today = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

type engineMocks struct {
	history  *MockhistorySource
	progress *MockprogressSource
	awards   *MockawardsStore
}

func newTestEngine(t *testing.T) (*Engine, engineMocks) {
	ctrl := gomock.NewController(t)
	mocks := engineMocks{
		history:  NewMockhistorySource(ctrl),
		progress: NewMockprogressSource(ctrl),
		awards:   NewMockawardsStore(ctrl),
	}
	engine := NewEngine(mocks.history, mocks.progress, mocks.awards, metrics.NewTestManager())
	return engine, mocks
}

// sevenDayHistory builds one daily goal hit on each of the last
// seven days
func sevenDayHistory(userID uuid.UUID) (goal goals.Goal, logs []goals.LogEntry, records []progress.DailyRecord) {
	goal = goals.Goal{
		ID: uuid.New(), UserID: userID, Name: "pushups",
		Metric: goals.MetricCount, Target: 10, Frequency: goals.FrequencyDaily, Active: true,
	}
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, -i)
		logs = append(logs, goals.LogEntry{
			ID: uuid.New(), UserID: userID, GoalID: goal.ID, Value: 10, LoggedAt: day.Add(9 * time.Hour),
		})
		records = append(records, progress.DailyRecord{
			UserID: userID, Day: day, TotalGoals: 1, GoalsCompleted: 1,
			CompletionRate: 100, Streak: 7 - i,
		})
	}
	return goal, logs, records
}

func TestEngine_CheckAndAward_sevenDayStreak(t *testing.T) {
	engine, mocks := newTestEngine(t)
	userID := uuid.New()
	goal, logs, records := sevenDayHistory(userID)

	mocks.awards.EXPECT().ListAwards(gomock.Any(), userID).Return(nil, nil)
	mocks.history.EXPECT().ListGoals(gomock.Any(), userID, false).Return([]goals.Goal{goal}, nil)
	mocks.history.EXPECT().ListLogs(gomock.Any(), goals.ListLogsParams{UserID: userID}).Return(logs, nil)
	mocks.history.EXPECT().FirstLogDay(gomock.Any(), userID).Return(today.AddDate(0, 0, -6), nil)
	mocks.progress.EXPECT().History(gomock.Any(), userID, gomock.Any(), gomock.Any()).Return(records, nil)

	expectedBadges := []string{
		"first-goal", "first-log", "goal-crusher",
		"streak-7", "consistency-70", "consistency-80",
	}
	for _, badgeID := range expectedBadges {
		mocks.awards.EXPECT().
			InsertAwardIfAbsent(gomock.Any(), userID, badgeID, gomock.Any()).
			Return(true, nil)
	}

	events, err := engine.CheckAndAward(context.Background(), userID, today)
	require.NoError(t, err)
	require.Len(t, events, len(expectedBadges))
	for i, event := range events {
		assert.Equal(t, expectedBadges[i], event.Badge.ID)
	}
}

func TestEngine_CheckAndAward_repeatRunFindsNothing(t *testing.T) {
	engine, mocks := newTestEngine(t)
	userID := uuid.New()
	goal, logs, records := sevenDayHistory(userID)

	var existing []Award
	for _, badgeID := range []string{
		"first-goal", "first-log", "goal-crusher",
		"streak-7", "consistency-70", "consistency-80",
	} {
		existing = append(existing, Award{UserID: userID, BadgeID: badgeID, EarnedAt: today})
	}

	mocks.awards.EXPECT().ListAwards(gomock.Any(), userID).Return(existing, nil)
	mocks.history.EXPECT().ListGoals(gomock.Any(), userID, false).Return([]goals.Goal{goal}, nil)
	mocks.history.EXPECT().ListLogs(gomock.Any(), goals.ListLogsParams{UserID: userID}).Return(logs, nil)
	mocks.history.EXPECT().FirstLogDay(gomock.Any(), userID).Return(today.AddDate(0, 0, -6), nil)
	mocks.progress.EXPECT().History(gomock.Any(), userID, gomock.Any(), gomock.Any()).Return(records, nil)

	events, err := engine.CheckAndAward(context.Background(), userID, today)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEngine_CheckAndAward_overachieverNeeds150Percent(t *testing.T) {
	engine, mocks := newTestEngine(t)
	userID := uuid.New()

	goal := goals.Goal{
		ID: uuid.New(), UserID: userID, Name: "pushups",
		Metric: goals.MetricCount, Target: 50, Frequency: goals.FrequencyDaily, Active: true,
	}
	// 110% of target crushes the goal but is no overachievement
	logs := []goals.LogEntry{
		{ID: uuid.New(), UserID: userID, GoalID: goal.ID, Value: 55, LoggedAt: today.Add(9 * time.Hour)},
	}
	records := []progress.DailyRecord{
		{UserID: userID, Day: today, TotalGoals: 1, GoalsCompleted: 1, CompletionRate: 100, Streak: 1},
	}

	mocks.awards.EXPECT().ListAwards(gomock.Any(), userID).Return(nil, nil)
	mocks.history.EXPECT().ListGoals(gomock.Any(), userID, false).Return([]goals.Goal{goal}, nil)
	mocks.history.EXPECT().ListLogs(gomock.Any(), goals.ListLogsParams{UserID: userID}).Return(logs, nil)
	mocks.history.EXPECT().FirstLogDay(gomock.Any(), userID).Return(today, nil)
	mocks.progress.EXPECT().History(gomock.Any(), userID, gomock.Any(), gomock.Any()).Return(records, nil)

	for _, badgeID := range []string{
		"first-goal", "first-log", "goal-crusher", "consistency-70", "consistency-80",
	} {
		mocks.awards.EXPECT().
			InsertAwardIfAbsent(gomock.Any(), userID, badgeID, gomock.Any()).
			Return(true, nil)
	}

	events, err := engine.CheckAndAward(context.Background(), userID, today)
	require.NoError(t, err)
	for _, event := range events {
		assert.NotEqual(t, "overachiever", event.Badge.ID)
		assert.NotEqual(t, "streak-7", event.Badge.ID)
	}
}

func TestEngine_CheckAndAward_concurrentInsertLoses(t *testing.T) {
	engine, mocks := newTestEngine(t)
	userID := uuid.New()

	goal := goals.Goal{
		ID: uuid.New(), UserID: userID, Name: "pushups",
		Metric: goals.MetricCount, Target: 10, Frequency: goals.FrequencyDaily, Active: true,
	}

	mocks.awards.EXPECT().ListAwards(gomock.Any(), userID).Return(nil, nil)
	mocks.history.EXPECT().ListGoals(gomock.Any(), userID, false).Return([]goals.Goal{goal}, nil)
	mocks.history.EXPECT().ListLogs(gomock.Any(), goals.ListLogsParams{UserID: userID}).Return(nil, nil)
	mocks.history.EXPECT().FirstLogDay(gomock.Any(), userID).Return(time.Time{}, nil)
	mocks.progress.EXPECT().History(gomock.Any(), userID, gomock.Any(), gomock.Any()).Return(nil, nil)

	// another evaluation beat this one to the insert
	mocks.awards.EXPECT().
		InsertAwardIfAbsent(gomock.Any(), userID, "first-goal", gomock.Any()).
		Return(false, nil)

	events, err := engine.CheckAndAward(context.Background(), userID, today)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEngine_CheckAndAward_fullCatalogShortCircuits(t *testing.T) {
	engine, mocks := newTestEngine(t)
	userID := uuid.New()

	var existing []Award
	for _, badge := range Catalog {
		existing = append(existing, Award{UserID: userID, BadgeID: badge.ID, EarnedAt: today})
	}
	mocks.awards.EXPECT().ListAwards(gomock.Any(), userID).Return(existing, nil)

	events, err := engine.CheckAndAward(context.Background(), userID, today)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEngine_CheckAndAward_historyLoadFails(t *testing.T) {
	engine, mocks := newTestEngine(t)
	userID := uuid.New()

	mocks.awards.EXPECT().ListAwards(gomock.Any(), userID).Return(nil, nil)
	mocks.history.EXPECT().ListGoals(gomock.Any(), userID, false).Return(nil, errors.New("store down"))

	events, err := engine.CheckAndAward(context.Background(), userID, today)
	require.Error(t, err)
	assert.Empty(t, events)
}

func TestBadgeByID(t *testing.T) {
	badge, ok := BadgeByID("streak-30")
	require.True(t, ok)
	assert.Equal(t, 100, badge.Points)
	assert.Equal(t, RarityEpic, badge.Rarity)
	assert.Equal(t, CategoryStreak, badge.Category)

	_, ok = BadgeByID("nope")
	assert.False(t, ok)
}

func TestCatalog_complete(t *testing.T) {
	validRarities := map[Rarity]bool{
		RarityCommon: true, RarityRare: true, RarityEpic: true, RarityLegendary: true,
	}
	validCategories := map[Category]bool{
		CategoryMilestone: true, CategoryStreak: true,
		CategoryConsistency: true, CategoryPerformance: true,
	}

	seen := make(map[string]bool)
	for _, badge := range Catalog {
		assert.False(t, seen[badge.ID], "duplicate badge id %q", badge.ID)
		seen[badge.ID] = true

		assert.NotEmpty(t, badge.Name, badge.ID)
		assert.True(t, validRarities[badge.Rarity], "badge %q rarity %q", badge.ID, badge.Rarity)
		assert.True(t, validCategories[badge.Category], "badge %q category %q", badge.ID, badge.Category)
		assert.Positive(t, badge.Points, badge.ID)
		assert.NotNil(t, badge.satisfied, badge.ID)
	}
}
