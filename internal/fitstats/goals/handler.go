package goals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/auth"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/metrics"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"
	"github.com/BUPE-NONDO/fitstats/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type goalsRepo interface {
	AddGoal(ctx context.Context, goal Goal) (Goal, error)
	GetGoal(ctx context.Context, userID, goalID uuid.UUID) (Goal, error)
	ListGoals(ctx context.Context, userID uuid.UUID, onlyActive bool) ([]Goal, error)
	UpdateGoal(ctx context.Context, goal Goal) error
	DeactivateGoal(ctx context.Context, userID, goalID uuid.UUID) error
	AddLog(ctx context.Context, entry LogEntry) (LogEntry, error)
	ListLogs(ctx context.Context, params ListLogsParams) ([]LogEntry, error)
	DeleteLog(ctx context.Context, userID, logID uuid.UUID) (LogEntry, error)
}

// evalTrigger schedules a deferred progress evaluation for the
// user and day touched by a goal or log mutation
type evalTrigger interface {
	Enqueue(userID uuid.UUID, day time.Time)
}

type DeleteGoalResponse struct {
	DeactivatedID uuid.UUID `json:"deactivatedId"`
}

type UpdateGoalResponse struct {
	UpdatedID uuid.UUID `json:"updatedId"`
}

type GoalsListResponse struct {
	Goals []Goal `json:"goals"`
	Total int    `json:"total"`
}

type LogsListResponse struct {
	Logs  []LogEntry `json:"logs"`
	Total int        `json:"total"`
}

type DeleteLogResponse struct {
	DeletedID uuid.UUID `json:"deletedId"`
}

type Handler struct {
	repo      goalsRepo
	evaluator evalTrigger
	metrics   *metrics.Manager
}

func NewHandler(repo goalsRepo, evaluator evalTrigger, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:      repo,
		evaluator: evaluator,
		metrics:   metricsManager,
	}
}

func (handler *Handler) HandleAddGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	var goal Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		log.Errorf("new goal, unmarshal json params: %s", err)
		http.Error(w, "add goal failed", http.StatusBadRequest)
		return
	}

	if goal.Name == "" {
		http.Error(w, "error, goal name empty", http.StatusBadRequest)
		return
	}
	if !goal.Metric.Valid() {
		http.Error(w, "error, invalid metric", http.StatusBadRequest)
		return
	}
	if !goal.Frequency.Valid() {
		http.Error(w, "error, invalid frequency", http.StatusBadRequest)
		return
	}
	if goal.Target <= 0 {
		http.Error(w, "error, target must be positive", http.StatusBadRequest)
		return
	}

	goal.UserID = userID
	addedGoal, err := handler.repo.AddGoal(ctx, goal)
	if err != nil {
		log.Errorf("failed to add new goal [%s] for user %s: %s", goal.Name, userID, err)
		http.Error(w, "error, failed to add new goal", http.StatusInternalServerError)
		return
	}

	// a fresh goal can award badges right away, first-goal in particular
	handler.evaluator.Enqueue(userID, DayOf(time.Now()))

	log.Debugf("new goal added: [%s]: %s", addedGoal.Name, addedGoal.ID)

	addedGoalJson, err := json.Marshal(addedGoal)
	if err != nil {
		log.Errorf("failed to marshal new goal: %s", err)
		http.Error(w, "error, failed to add new goal", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedGoalJson, http.StatusCreated)
}

func (handler *Handler) HandleGetGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.get")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	goalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, invalid goal id", http.StatusBadRequest)
		return
	}

	goal, err := handler.repo.GetGoal(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get goal %s: %s", goalID, err)
		http.Error(w, "failed to get goal", http.StatusInternalServerError)
		return
	}

	goalJson, err := json.Marshal(goal)
	if err != nil {
		log.Errorf("failed to marshal goal: %s", err)
		http.Error(w, "failed to marshal goal", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalJson, http.StatusOK)
}

func (handler *Handler) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	onlyActive := r.URL.Query().Get("all") == ""

	goals, err := handler.repo.ListGoals(ctx, userID, onlyActive)
	if err != nil {
		log.Errorf("list goals error: %s", err)
		http.Error(w, "failed to get goals", http.StatusInternalServerError)
		return
	}

	listRespJson, err := json.Marshal(GoalsListResponse{
		Goals: goals,
		Total: len(goals),
	})
	if err != nil {
		log.Errorf("marshal goals error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listRespJson, http.StatusOK)
}

func (handler *Handler) HandleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	var goal Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		log.Errorf("update goal, unmarshal json params: %s", err)
		http.Error(w, "update goal failed", http.StatusBadRequest)
		return
	}

	if goal.ID == uuid.Nil {
		http.Error(w, "error, goal id empty", http.StatusBadRequest)
		return
	}
	if goal.Name == "" || !goal.Metric.Valid() || !goal.Frequency.Valid() || goal.Target <= 0 {
		http.Error(w, "error, invalid goal", http.StatusBadRequest)
		return
	}

	goal.UserID = userID
	if err := handler.repo.UpdateGoal(ctx, goal); err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update goal [%s]: %s", goal.ID, err)
		http.Error(w, "error, failed to update goal", http.StatusInternalServerError)
		return
	}

	// new target or metric changes how today scores, re-evaluate it
	handler.evaluator.Enqueue(userID, DayOf(time.Now()))

	updateRespJson, err := json.Marshal(UpdateGoalResponse{
		UpdatedID: goal.ID,
	})
	if err != nil {
		log.Errorf("failed to marshal update response: %s", err)
		http.Error(w, "failed to marshal update response", http.StatusInternalServerError)
		return
	}

	log.Debugf("goal updated: [%s]: %s", goal.Name, goal.ID)
	pkg.WriteJSONResponseOK(w, string(updateRespJson))
}

func (handler *Handler) HandleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	goalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, invalid goal id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.DeactivateGoal(ctx, userID, goalID); err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to deactivate goal %s: %s", goalID, err)
		http.Error(w, "goal not deactivated", http.StatusInternalServerError)
		return
	}

	// the deactivated goal no longer counts towards today's aggregate
	handler.evaluator.Enqueue(userID, DayOf(time.Now()))

	deleteRespJson, err := json.Marshal(DeleteGoalResponse{
		DeactivatedID: goalID,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func (handler *Handler) HandleAddLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.newlog")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	var entry LogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		log.Errorf("new log entry, unmarshal json params: %s", err)
		http.Error(w, "add log entry failed", http.StatusBadRequest)
		return
	}

	if entry.GoalID == uuid.Nil {
		http.Error(w, "error, goal id empty", http.StatusBadRequest)
		return
	}
	if entry.Value <= 0 {
		http.Error(w, "error, value must be positive", http.StatusBadRequest)
		return
	}
	if entry.Calories < 0 || entry.Minutes < 0 {
		http.Error(w, "error, calories and minutes must not be negative", http.StatusBadRequest)
		return
	}

	// the goal must belong to the logging user
	if _, err := handler.repo.GetGoal(ctx, userID, entry.GoalID); err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to check goal %s: %s", entry.GoalID, err)
		http.Error(w, "error, failed to add log entry", http.StatusInternalServerError)
		return
	}

	entry.UserID = userID
	addedEntry, err := handler.repo.AddLog(ctx, entry)
	if err != nil {
		log.Errorf("failed to add log entry for goal %s: %s", entry.GoalID, err)
		http.Error(w, "error, failed to add log entry", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterLogEntries.Inc()
	handler.evaluator.Enqueue(userID, addedEntry.Day())

	log.Debugf("new log entry added for goal %s: %s", addedEntry.GoalID, addedEntry.ID)

	addedEntryJson, err := json.Marshal(addedEntry)
	if err != nil {
		log.Errorf("failed to marshal new log entry: %s", err)
		http.Error(w, "error, failed to add log entry", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedEntryJson, http.StatusCreated)
}

func (handler *Handler) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.listlogs")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	params := ListLogsParams{UserID: userID}
	if goalIDStr := r.URL.Query().Get("goal_id"); goalIDStr != "" {
		goalID, err := uuid.Parse(goalIDStr)
		if err != nil {
			http.Error(w, "error, invalid goal id", http.StatusBadRequest)
			return
		}
		params.GoalID = goalID
	}
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := time.Parse(time.DateOnly, fromStr)
		if err != nil {
			http.Error(w, "error, invalid <from> date", http.StatusBadRequest)
			return
		}
		params.From = from
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err := time.Parse(time.DateOnly, toStr)
		if err != nil {
			http.Error(w, "error, invalid <to> date", http.StatusBadRequest)
			return
		}
		// <to> is inclusive on the API, the repo range is half open
		params.To = to.AddDate(0, 0, 1)
	}

	logs, err := handler.repo.ListLogs(ctx, params)
	if err != nil {
		log.Errorf("list log entries error: %s", err)
		http.Error(w, "failed to get log entries", http.StatusInternalServerError)
		return
	}

	logsRespJson, err := json.Marshal(LogsListResponse{
		Logs:  logs,
		Total: len(logs),
	})
	if err != nil {
		log.Errorf("marshal log entries error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, logsRespJson, http.StatusOK)
}

func (handler *Handler) HandleDeleteLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.deletelog")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	logID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, invalid log id", http.StatusBadRequest)
		return
	}

	deletedEntry, err := handler.repo.DeleteLog(ctx, userID, logID)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			http.Error(w, "log entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete log entry %s: %s", logID, err)
		http.Error(w, "log entry not deleted", http.StatusInternalServerError)
		return
	}

	// the deleted entry changes that day's history, re-evaluate it
	handler.evaluator.Enqueue(userID, deletedEntry.Day())

	deleteRespJson, err := json.Marshal(DeleteLogResponse{
		DeletedID: logID,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}
