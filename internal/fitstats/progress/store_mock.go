package progress

import (
	"context"
	"sync"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"

	"github.com/google/uuid"
)

var _ progressStore = (*storeMock)(nil)

type dayKey struct {
	userID uuid.UUID
	day    time.Time
}

type storeMock struct {
	Records map[dayKey]DailyRecord
	GetErr  error
	mutex   sync.Mutex
}

func newStoreMock() *storeMock {
	return &storeMock{
		Records: make(map[dayKey]DailyRecord),
	}
}

func (s *storeMock) Upsert(_ context.Context, record DailyRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Records[dayKey{record.UserID, goals.DayOf(record.Day)}] = record
	return nil
}

func (s *storeMock) Get(_ context.Context, userID uuid.UUID, day time.Time) (DailyRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.GetErr != nil {
		return DailyRecord{}, s.GetErr
	}

	record, ok := s.Records[dayKey{userID, goals.DayOf(day)}]
	if !ok {
		return DailyRecord{}, ErrNoProgress
	}
	return record, nil
}

var _ goalsSource = (*goalsSourceMock)(nil)

type goalsSourceMock struct {
	Goals []goals.Goal
	Logs  []goals.LogEntry
	mutex sync.Mutex
}

func (g *goalsSourceMock) ListGoals(_ context.Context, userID uuid.UUID, onlyActive bool) ([]goals.Goal, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	var out []goals.Goal
	for _, goal := range g.Goals {
		if goal.UserID != userID {
			continue
		}
		if onlyActive && !goal.Active {
			continue
		}
		out = append(out, goal)
	}
	return out, nil
}

func (g *goalsSourceMock) ListLogsForDay(_ context.Context, userID uuid.UUID, day time.Time) ([]goals.LogEntry, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	day = goals.DayOf(day)
	var out []goals.LogEntry
	for _, entry := range g.Logs {
		if entry.UserID != userID {
			continue
		}
		if !entry.Day().Equal(day) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
