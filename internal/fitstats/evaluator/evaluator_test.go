package evaluator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/auth"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/achievements"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/progress"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/weekly"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/metrics"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type pipelineMock struct {
	mutex     sync.Mutex
	stages    []string
	processed chan struct{}
	awarded   []achievements.AchievementEvent
}

func newPipelineMock() *pipelineMock {
	return &pipelineMock{
		processed: make(chan struct{}, 16),
	}
}

func (p *pipelineMock) AggregateDay(_ context.Context, _ uuid.UUID, _ time.Time) (progress.DailyRecord, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stages = append(p.stages, "aggregate")
	return progress.DailyRecord{}, nil
}

func (p *pipelineMock) ComposeWeek(_ context.Context, _ uuid.UUID, _ time.Time) (weekly.Record, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stages = append(p.stages, "week")
	return weekly.Record{}, nil
}

func (p *pipelineMock) CheckAndAward(_ context.Context, _ uuid.UUID, _ time.Time) ([]achievements.AchievementEvent, error) {
	p.mutex.Lock()
	p.stages = append(p.stages, "badges")
	awarded := p.awarded
	p.mutex.Unlock()
	p.processed <- struct{}{}
	return awarded, nil
}

func (p *pipelineMock) stagesSeen() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]string{}, p.stages...)
}

func newTestEvaluator(t *testing.T, pipeline *pipelineMock, workers, queueSize int) *Evaluator {
	return NewEvaluator(NewEvaluatorParams{
		Aggregator:     pipeline,
		WeeklyComposer: pipeline,
		BadgeEngine:    pipeline,
		Metrics:        metrics.NewTestManager(),
		Workers:        workers,
		QueueSize:      queueSize,
	})
}

func TestEvaluator_pipelineOrder(t *testing.T) {
	pipeline := newPipelineMock()
	evaluator := newTestEvaluator(t, pipeline, 1, 8)
	evaluator.Start()
	defer evaluator.Stop()

	evaluator.Enqueue(uuid.New(), time.Now())

	select {
	case <-pipeline.processed:
	case <-time.After(2 * time.Second):
		t.Fatal("evaluation not processed in time")
	}

	assert.Equal(t, []string{"aggregate", "week", "badges"}, pipeline.stagesSeen())
}

func TestEvaluator_fullQueueDrops(t *testing.T) {
	pipeline := newPipelineMock()
	// workers never started, nothing drains the queue
	evaluator := newTestEvaluator(t, pipeline, 1, 2)

	userID := uuid.New()
	evaluator.Enqueue(userID, time.Now())
	evaluator.Enqueue(userID, time.Now())
	// queue is full now, this one gets dropped instead of blocking
	enqueueDone := make(chan struct{})
	go func() {
		evaluator.Enqueue(userID, time.Now())
		close(enqueueDone)
	}()

	select {
	case <-enqueueDone:
	case <-time.After(time.Second):
		t.Fatal("enqueue on a full queue blocked")
	}

	assert.Len(t, evaluator.tasks, 2)
	assert.Empty(t, pipeline.stagesSeen())
}

func TestEvaluator_stopIsIdempotent(t *testing.T) {
	pipeline := newPipelineMock()
	evaluator := newTestEvaluator(t, pipeline, 3, 8)
	evaluator.Start()

	evaluator.Stop()
	evaluator.Stop()

	// enqueue after stop is a no-op
	evaluator.Enqueue(uuid.New(), time.Now())
	assert.Empty(t, evaluator.tasks)
}

func TestEvaluator_manyTasksAllProcessed(t *testing.T) {
	pipeline := newPipelineMock()
	evaluator := newTestEvaluator(t, pipeline, 2, 16)
	evaluator.Start()
	defer evaluator.Stop()

	userID := uuid.New()
	for i := 0; i < 10; i++ {
		evaluator.Enqueue(userID, time.Now().AddDate(0, 0, -i))
	}

	for i := 0; i < 10; i++ {
		select {
		case <-pipeline.processed:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 10 evaluations processed in time", i)
		}
	}
}

func TestHandler_HandleEvaluate(t *testing.T) {
	pipeline := newPipelineMock()
	badge, ok := achievements.BadgeByID("first-goal")
	require.True(t, ok)
	pipeline.awarded = []achievements.AchievementEvent{
		{Badge: badge, EarnedAt: time.Now().UTC()},
	}
	h := NewHandler(pipeline, pipeline, pipeline)

	req := httptest.NewRequest(http.MethodPost, "/evaluate?date=2025-03-14", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()

	h.HandleEvaluate(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.NewAchievements, 1)
	assert.Equal(t, "first-goal", resp.NewAchievements[0].Badge.ID)
	<-pipeline.processed
}

func TestHandler_HandleEvaluate_noUser(t *testing.T) {
	pipeline := newPipelineMock()
	h := NewHandler(pipeline, pipeline, pipeline)

	req := httptest.NewRequest(http.MethodPost, "/evaluate", nil)
	rec := httptest.NewRecorder()

	h.HandleEvaluate(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
