//go:build integration_test || all_tests

package goals

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/db"
	"github.com/BUPE-NONDO/fitstats/internal/users"
	"github.com/BUPE-NONDO/fitstats/pkg"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepoSetup(t *testing.T) (*Repo, uuid.UUID, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postgres host: %s", host)

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "fitstats_db",
		TracingEnabled: false,
	})
	require.NoError(t, err)

	passwordHash, err := pkg.HashPassword(gofakeit.Password(true, true, true, false, false, 14))
	require.NoError(t, err)
	user, err := users.NewRepo(dbPool).Add(timeoutCtx, users.User{
		Username:     gofakeit.Username() + uuid.NewString()[:8],
		PasswordHash: passwordHash,
	})
	require.NoError(t, err)

	return NewRepo(dbPool), user.ID, func() {
		dbPool.Close()
	}
}

func TestRepo_AddGoal_GetGoal(t *testing.T) {
	ctx := context.Background()
	repo, userID, shutdown := testRepoSetup(t)
	defer shutdown()

	now := time.Now().UTC().Add(-time.Minute)

	added, err := repo.AddGoal(ctx, Goal{
		UserID:    userID,
		Name:      gofakeit.Name(),
		Metric:    MetricCount,
		Target:    30,
		Frequency: FrequencyDaily,
		IsWorkout: true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, added.ID)
	assert.True(t, added.Active)
	assert.True(t, now.Before(added.CreatedAt), "%v should be before %v", now, added.CreatedAt)

	got, err := repo.GetGoal(ctx, userID, added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, got.ID)
	assert.Equal(t, added.Name, got.Name)

	// goals belong to their owner
	_, err = repo.GetGoal(ctx, uuid.New(), added.ID)
	assert.ErrorIs(t, err, ErrGoalNotFound)

	require.NoError(t, repo.DeactivateGoal(ctx, userID, added.ID))
	deactivated, err := repo.GetGoal(ctx, userID, added.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	activeOnly, err := repo.ListGoals(ctx, userID, true)
	require.NoError(t, err)
	assert.Empty(t, activeOnly)
}

func TestRepo_AddLog_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo, userID, shutdown := testRepoSetup(t)
	defer shutdown()

	goal, err := repo.AddGoal(ctx, Goal{
		UserID:    userID,
		Name:      "pushups",
		Metric:    MetricCount,
		Target:    50,
		Frequency: FrequencyDaily,
	})
	require.NoError(t, err)

	day := DayOf(time.Now().UTC())

	first, err := repo.AddLog(ctx, LogEntry{
		UserID:   userID,
		GoalID:   goal.ID,
		Value:    20,
		Calories: 120,
		Minutes:  10,
		LoggedAt: day.Add(8 * time.Hour),
	})
	require.NoError(t, err)
	second, err := repo.AddLog(ctx, LogEntry{
		UserID:   userID,
		GoalID:   goal.ID,
		Value:    30,
		LoggedAt: day.Add(19 * time.Hour),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	dayLogs, err := repo.ListLogsForDay(ctx, userID, day)
	require.NoError(t, err)
	require.Len(t, dayLogs, 2)

	firstDay, err := repo.FirstLogDay(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, day, DayOf(firstDay))

	allLogs, err := repo.ListLogs(ctx, ListLogsParams{UserID: userID})
	require.NoError(t, err)
	assert.Len(t, allLogs, 2)

	deleted, err := repo.DeleteLog(ctx, userID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, deleted.ID)
	_, err = repo.DeleteLog(ctx, userID, first.ID)
	assert.ErrorIs(t, err, ErrLogNotFound)

	allLogs, err = repo.ListLogs(ctx, ListLogsParams{UserID: userID})
	require.NoError(t, err)
	assert.Len(t, allLogs, 1)
}
