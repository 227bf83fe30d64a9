// Package evaluator runs deferred progress evaluations. A goal or
// log mutation enqueues a (user, day) task, worker goroutines
// rebuild the daily aggregate, recompose the week and check the
// badge catalog. Callers never wait for the result, the next read
// picks up whatever was computed.
package evaluator

import (
	"context"
	"sync"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/fitstats/achievements"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/progress"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/weekly"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/metrics"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const evalTimeout = time.Minute

type aggregator interface {
	AggregateDay(ctx context.Context, userID uuid.UUID, day time.Time) (progress.DailyRecord, error)
}

type weeklyComposer interface {
	ComposeWeek(ctx context.Context, userID uuid.UUID, dayInWeek time.Time) (weekly.Record, error)
}

type badgeEngine interface {
	CheckAndAward(ctx context.Context, userID uuid.UUID, today time.Time) ([]achievements.AchievementEvent, error)
}

type task struct {
	userID uuid.UUID
	day    time.Time
}

type Evaluator struct {
	aggregator aggregator
	weekly     weeklyComposer
	badges     badgeEngine
	metrics    *metrics.Manager

	workers  int
	tasks    chan task
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

type NewEvaluatorParams struct {
	Aggregator     aggregator
	WeeklyComposer weeklyComposer
	BadgeEngine    badgeEngine
	Metrics        *metrics.Manager
	Workers        int
	QueueSize      int
}

func NewEvaluator(params NewEvaluatorParams) *Evaluator {
	if params.Workers <= 0 {
		params.Workers = 1
	}
	return &Evaluator{
		aggregator: params.Aggregator,
		weekly:     params.WeeklyComposer,
		badges:     params.BadgeEngine,
		metrics:    params.Metrics,
		workers:    params.Workers,
		tasks:      make(chan task, params.QueueSize),
		done:       make(chan struct{}),
	}
}

// Start spins up the worker goroutines
func (e *Evaluator) Start() {
	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
	log.Debugf("evaluator started with %d workers", e.workers)
}

// Enqueue schedules an evaluation for the user and day. Never
// blocks, a full queue drops the task. That is safe, a dropped
// evaluation is redone by the next mutation touching the user.
func (e *Evaluator) Enqueue(userID uuid.UUID, day time.Time) {
	select {
	case <-e.done:
		return
	default:
	}

	select {
	case e.tasks <- task{userID: userID, day: goals.DayOf(day)}:
		e.metrics.GaugeEvaluationQueue.Set(float64(len(e.tasks)))
	default:
		e.metrics.CounterEvaluationsDropped.Inc()
		log.Warnf("evaluation queue full, dropping task for user %s", userID)
	}
}

// Stop tells the workers to finish their current task and exit.
// Tasks still queued are dropped.
func (e *Evaluator) Stop() {
	e.stopOnce.Do(func() {
		close(e.done)
	})
	e.wg.Wait()
}

func (e *Evaluator) worker() {
	defer e.wg.Done()
	for {
		select {
		case <-e.done:
			return
		case t := <-e.tasks:
			e.metrics.GaugeEvaluationQueue.Set(float64(len(e.tasks)))
			e.process(t)
		}
	}
}

// process runs the full evaluation pipeline for one task. A
// failure is logged and counted, never surfaced to a user, the
// next trigger simply retries the whole thing.
func (e *Evaluator) process(t task) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	ctx, span := tracing.GlobalTracer.Start(ctx, "evaluator.process")
	defer span.End()

	if _, err := e.aggregator.AggregateDay(ctx, t.userID, t.day); err != nil {
		e.fail(t, "aggregate day", err)
		return
	}
	if _, err := e.weekly.ComposeWeek(ctx, t.userID, t.day); err != nil {
		e.fail(t, "compose week", err)
		return
	}
	events, err := e.badges.CheckAndAward(ctx, t.userID, t.day)
	if err != nil {
		e.fail(t, "check badges", err)
		return
	}

	if len(events) > 0 {
		log.Infof("evaluation for user %s awarded %d badge(s)", t.userID, len(events))
	}

	e.metrics.CounterEvaluationsRun.Inc()
	e.metrics.HistEvaluationDuration.Observe(time.Since(start).Seconds())
}

func (e *Evaluator) fail(t task, stage string, err error) {
	e.metrics.CounterEvaluationFailures.Inc()
	log.Errorf("evaluation for user %s day %s: %s: %s",
		t.userID, t.day.Format(time.DateOnly), stage, err)
}
