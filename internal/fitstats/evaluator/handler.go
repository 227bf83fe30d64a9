package evaluator

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/auth"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/achievements"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"
	"github.com/BUPE-NONDO/fitstats/pkg"

	log "github.com/sirupsen/logrus"
)

type EvaluateResponse struct {
	NewAchievements []achievements.AchievementEvent `json:"newAchievements"`
}

// Handler exposes the manual refresh endpoint. Unlike the queued
// path it runs the pipeline synchronously and hands back any
// newly earned achievements.
type Handler struct {
	aggregator aggregator
	weekly     weeklyComposer
	badges     badgeEngine
}

func NewHandler(aggregator aggregator, weeklyComposer weeklyComposer, badges badgeEngine) *Handler {
	return &Handler{
		aggregator: aggregator,
		weekly:     weeklyComposer,
		badges:     badges,
	}
}

func (handler *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.evaluator.evaluate")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	day := time.Now().UTC()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			http.Error(w, "error, invalid <date> param", http.StatusBadRequest)
			return
		}
		day = parsed
	}
	day = goals.DayOf(day)

	if _, err := handler.aggregator.AggregateDay(ctx, userID, day); err != nil {
		log.Errorf("manual evaluation, aggregate day for user %s: %s", userID, err)
		http.Error(w, "evaluation failed", http.StatusInternalServerError)
		return
	}
	if _, err := handler.weekly.ComposeWeek(ctx, userID, day); err != nil {
		log.Errorf("manual evaluation, compose week for user %s: %s", userID, err)
		http.Error(w, "evaluation failed", http.StatusInternalServerError)
		return
	}
	events, err := handler.badges.CheckAndAward(ctx, userID, day)
	if err != nil {
		log.Errorf("manual evaluation, check badges for user %s: %s", userID, err)
		http.Error(w, "evaluation failed", http.StatusInternalServerError)
		return
	}

	resp := EvaluateResponse{NewAchievements: events}
	if resp.NewAchievements == nil {
		resp.NewAchievements = []achievements.AchievementEvent{}
	}
	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("failed to marshal evaluate response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
