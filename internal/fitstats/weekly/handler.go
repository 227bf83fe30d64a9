package weekly

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/BUPE-NONDO/fitstats/internal/auth"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"
	"github.com/BUPE-NONDO/fitstats/pkg"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const defaultWeeksLimit = 12

type recentReader interface {
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]Record, error)
}

type WeeksResponse struct {
	Weeks []Record `json:"weeks"`
	Total int      `json:"total"`
}

type Handler struct {
	repo recentReader
}

func NewHandler(repo recentReader) *Handler {
	return &Handler{repo: repo}
}

func (handler *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weekly.recent")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	limit := defaultWeeksLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			http.Error(w, "error, invalid <limit> param", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	weeks, err := handler.repo.Recent(ctx, userID, limit)
	if err != nil {
		log.Errorf("recent weekly milestones for user %s: %s", userID, err)
		http.Error(w, "failed to get weekly milestones", http.StatusInternalServerError)
		return
	}
	if weeks == nil {
		weeks = []Record{}
	}

	respJson, err := json.Marshal(WeeksResponse{Weeks: weeks, Total: len(weeks)})
	if err != nil {
		log.Errorf("failed to marshal weekly milestones: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
