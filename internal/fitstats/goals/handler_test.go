package goals

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/auth"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoal_DailyTarget(t *testing.T) {
	daily := Goal{Target: 50, Frequency: FrequencyDaily}
	assert.InDelta(t, 50, daily.DailyTarget(), 0.001)

	weekly := Goal{Target: 70, Frequency: FrequencyWeekly}
	assert.InDelta(t, 10, weekly.DailyTarget(), 0.001)

	monthly := Goal{Target: 90, Frequency: FrequencyMonthly}
	assert.InDelta(t, 3, monthly.DailyTarget(), 0.001)
}

func TestHandler_HandleAddGoal(t *testing.T) {
	repo := newRepoMock()
	evaluator := &evalTriggerMock{}
	h := NewHandler(repo, evaluator, metrics.NewTestManager())

	userID := uuid.New()
	goal := Goal{
		Name:      "run distance",
		Metric:    MetricDistance,
		Target:    5,
		Frequency: FrequencyDaily,
		IsWorkout: true,
	}
	goalJson, err := json.Marshal(goal)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/goals", bytes.NewReader(goalJson))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()

	h.HandleAddGoal(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var added Goal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	assert.NotEqual(t, uuid.Nil, added.ID)
	assert.Equal(t, userID, added.UserID)
	assert.True(t, added.Active)
	assert.Len(t, repo.Goals, 1)

	// creating a goal kicks off an evaluation for today
	require.Len(t, evaluator.Enqueued, 1)
	assert.Equal(t, DayOf(time.Now()), evaluator.Enqueued[0])
}

func TestHandler_HandleAddGoal_invalid(t *testing.T) {
	repo := newRepoMock()
	evaluator := &evalTriggerMock{}
	h := NewHandler(repo, evaluator, metrics.NewTestManager())
	userID := uuid.New()

	for name, goal := range map[string]Goal{
		"empty name":        {Metric: MetricCount, Target: 10, Frequency: FrequencyDaily},
		"invalid metric":    {Name: "g", Metric: "steps", Target: 10, Frequency: FrequencyDaily},
		"invalid frequency": {Name: "g", Metric: MetricCount, Target: 10, Frequency: "yearly"},
		"zero target":       {Name: "g", Metric: MetricCount, Frequency: FrequencyDaily},
	} {
		t.Run(name, func(t *testing.T) {
			goalJson, err := json.Marshal(goal)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/goals", bytes.NewReader(goalJson))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
			rec := httptest.NewRecorder()

			h.HandleAddGoal(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, repo.Goals)
			assert.Empty(t, evaluator.Enqueued)
		})
	}
}

func TestHandler_HandleAddLog(t *testing.T) {
	repo := newRepoMock()
	evaluator := &evalTriggerMock{}
	h := NewHandler(repo, evaluator, metrics.NewTestManager())

	userID := uuid.New()
	goal, err := repo.AddGoal(context.Background(), Goal{
		UserID:    userID,
		Name:      "pushups",
		Metric:    MetricCount,
		Target:    50,
		Frequency: FrequencyDaily,
	})
	require.NoError(t, err)

	loggedAt := time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)
	entry := LogEntry{
		GoalID:   goal.ID,
		Value:    55,
		Calories: 120,
		Minutes:  15,
		LoggedAt: loggedAt,
	}
	entryJson, err := json.Marshal(entry)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/goals/log", bytes.NewReader(entryJson))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()

	h.HandleAddLog(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var added LogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	assert.Equal(t, userID, added.UserID)
	assert.Equal(t, goal.ID, added.GoalID)

	require.Len(t, evaluator.Enqueued, 1)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), evaluator.Enqueued[0])
}

func TestHandler_HandleAddLog_goalNotFound(t *testing.T) {
	repo := newRepoMock()
	evaluator := &evalTriggerMock{}
	h := NewHandler(repo, evaluator, metrics.NewTestManager())

	entry := LogEntry{GoalID: uuid.New(), Value: 10}
	entryJson, err := json.Marshal(entry)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/goals/log", bytes.NewReader(entryJson))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.ContextWithUserID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()

	h.HandleAddLog(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, evaluator.Enqueued)
}

func TestHandler_HandleAddLog_invalidValue(t *testing.T) {
	repo := newRepoMock()
	evaluator := &evalTriggerMock{}
	h := NewHandler(repo, evaluator, metrics.NewTestManager())

	entry := LogEntry{GoalID: uuid.New(), Value: 0}
	entryJson, err := json.Marshal(entry)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/goals/log", bytes.NewReader(entryJson))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.ContextWithUserID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()

	h.HandleAddLog(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, evaluator.Enqueued)
}

func TestHandler_HandleListGoals(t *testing.T) {
	repo := newRepoMock()
	evaluator := &evalTriggerMock{}
	h := NewHandler(repo, evaluator, metrics.NewTestManager())

	userID := uuid.New()
	otherUserID := uuid.New()
	_, err := repo.AddGoal(context.Background(), Goal{UserID: userID, Name: "g1", Metric: MetricCount, Target: 10, Frequency: FrequencyDaily})
	require.NoError(t, err)
	inactive, err := repo.AddGoal(context.Background(), Goal{UserID: userID, Name: "g2", Metric: MetricCount, Target: 10, Frequency: FrequencyDaily})
	require.NoError(t, err)
	require.NoError(t, repo.DeactivateGoal(context.Background(), userID, inactive.ID))
	_, err = repo.AddGoal(context.Background(), Goal{UserID: otherUserID, Name: "g3", Metric: MetricCount, Target: 10, Frequency: FrequencyDaily})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/goals", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()

	h.HandleListGoals(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp GoalsListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Equal(t, 1, listResp.Total)

	// with ?all= set, inactive goals come back too
	req = httptest.NewRequest(http.MethodGet, "/goals?all=true", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	rec = httptest.NewRecorder()

	h.HandleListGoals(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Equal(t, 2, listResp.Total)
}

func TestHandler_HandleDeleteLog(t *testing.T) {
	repo := newRepoMock()
	evaluator := &evalTriggerMock{}
	h := NewHandler(repo, evaluator, metrics.NewTestManager())

	userID := uuid.New()
	loggedAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	entry, err := repo.AddLog(context.Background(), LogEntry{
		UserID:   userID,
		GoalID:   uuid.New(),
		Value:    5,
		LoggedAt: loggedAt,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/goals/log/"+entry.ID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": entry.ID.String()})
	req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()

	h.HandleDeleteLog(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, repo.Logs)

	// the touched day gets re-evaluated
	require.Len(t, evaluator.Enqueued, 1)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), evaluator.Enqueued[0])
}

func TestHandler_HandleDeleteGoal(t *testing.T) {
	repo := newRepoMock()
	evaluator := &evalTriggerMock{}
	h := NewHandler(repo, evaluator, metrics.NewTestManager())

	userID := uuid.New()
	goal, err := repo.AddGoal(context.Background(), Goal{UserID: userID, Name: "g", Metric: MetricCount, Target: 10, Frequency: FrequencyDaily})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/goals/"+goal.ID.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": goal.ID.String()})
	req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()

	h.HandleDeleteGoal(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// goal row survives, only deactivated
	assert.False(t, repo.Goals[goal.ID].Active)

	// today's aggregate no longer counts the goal, re-evaluate it
	require.Len(t, evaluator.Enqueued, 1)
	assert.Equal(t, DayOf(time.Now()), evaluator.Enqueued[0])
}

func TestHandler_HandleUpdateGoal(t *testing.T) {
	repo := newRepoMock()
	evaluator := &evalTriggerMock{}
	h := NewHandler(repo, evaluator, metrics.NewTestManager())

	userID := uuid.New()
	goal, err := repo.AddGoal(context.Background(), Goal{UserID: userID, Name: "g", Metric: MetricCount, Target: 10, Frequency: FrequencyDaily})
	require.NoError(t, err)

	goal.Target = 20
	goalJson, err := json.Marshal(goal)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/goals", bytes.NewReader(goalJson))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()

	h.HandleUpdateGoal(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 20, repo.Goals[goal.ID].Target, 0.001)

	// the new target changes how today scores
	require.Len(t, evaluator.Enqueued, 1)
	assert.Equal(t, DayOf(time.Now()), evaluator.Enqueued[0])
}

func TestHandler_HandleUpdateGoal_notFound(t *testing.T) {
	repo := newRepoMock()
	evaluator := &evalTriggerMock{}
	h := NewHandler(repo, evaluator, metrics.NewTestManager())

	goal := Goal{ID: uuid.New(), Name: "g", Metric: MetricCount, Target: 10, Frequency: FrequencyDaily}
	goalJson, err := json.Marshal(goal)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/goals", bytes.NewReader(goalJson))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.ContextWithUserID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()

	h.HandleUpdateGoal(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, evaluator.Enqueued)
}
