package goals

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ goalsRepo = (*repoMock)(nil)

type repoMock struct {
	Goals map[uuid.UUID]Goal
	Logs  map[uuid.UUID]LogEntry
	mutex sync.Mutex
}

func newRepoMock() *repoMock {
	return &repoMock{
		Goals: make(map[uuid.UUID]Goal),
		Logs:  make(map[uuid.UUID]LogEntry),
	}
}

func (r *repoMock) AddGoal(_ context.Context, goal Goal) (Goal, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	goal.Active = true
	r.Goals[goal.ID] = goal
	return goal, nil
}

func (r *repoMock) GetGoal(_ context.Context, userID, goalID uuid.UUID) (Goal, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	goal, ok := r.Goals[goalID]
	if !ok || goal.UserID != userID {
		return Goal{}, ErrGoalNotFound
	}
	return goal, nil
}

func (r *repoMock) ListGoals(_ context.Context, userID uuid.UUID, onlyActive bool) ([]Goal, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var goals []Goal
	for _, goal := range r.Goals {
		if goal.UserID != userID {
			continue
		}
		if onlyActive && !goal.Active {
			continue
		}
		goals = append(goals, goal)
	}
	return goals, nil
}

func (r *repoMock) UpdateGoal(_ context.Context, goal Goal) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, ok := r.Goals[goal.ID]
	if !ok || existing.UserID != goal.UserID {
		return ErrGoalNotFound
	}
	r.Goals[goal.ID] = goal
	return nil
}

func (r *repoMock) DeactivateGoal(_ context.Context, userID, goalID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	goal, ok := r.Goals[goalID]
	if !ok || goal.UserID != userID {
		return ErrGoalNotFound
	}
	goal.Active = false
	r.Goals[goalID] = goal
	return nil
}

func (r *repoMock) AddLog(_ context.Context, entry LogEntry) (LogEntry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().UTC()
	}
	r.Logs[entry.ID] = entry
	return entry, nil
}

func (r *repoMock) ListLogs(_ context.Context, params ListLogsParams) ([]LogEntry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var entries []LogEntry
	for _, entry := range r.Logs {
		if entry.UserID != params.UserID {
			continue
		}
		if params.GoalID != uuid.Nil && entry.GoalID != params.GoalID {
			continue
		}
		if !params.From.IsZero() && entry.LoggedAt.Before(params.From) {
			continue
		}
		if !params.To.IsZero() && !entry.LoggedAt.Before(params.To) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *repoMock) DeleteLog(_ context.Context, userID, logID uuid.UUID) (LogEntry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, ok := r.Logs[logID]
	if !ok || entry.UserID != userID {
		return LogEntry{}, ErrLogNotFound
	}
	delete(r.Logs, logID)
	return entry, nil
}

var _ evalTrigger = (*evalTriggerMock)(nil)

type evalTriggerMock struct {
	Enqueued []time.Time
	mutex    sync.Mutex
}

func (e *evalTriggerMock) Enqueue(_ uuid.UUID, day time.Time) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.Enqueued = append(e.Enqueued, day)
}
