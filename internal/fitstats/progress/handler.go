package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/auth"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"
	"github.com/BUPE-NONDO/fitstats/pkg"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type historyReader interface {
	History(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]DailyRecord, error)
}

type HistoryResponse struct {
	Days  []DailyRecord `json:"days"`
	Total int           `json:"total"`
}

type Handler struct {
	repo historyReader
}

func NewHandler(repo historyReader) *Handler {
	return &Handler{repo: repo}
}

// HandleHistory serves the user's daily records for a date range,
// defaulting to the last 30 days
func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.history")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -29)
	to := now.AddDate(0, 0, 1)
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		parsed, err := time.Parse(time.DateOnly, fromStr)
		if err != nil {
			http.Error(w, "error, invalid <from> date", http.StatusBadRequest)
			return
		}
		from = parsed
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		parsed, err := time.Parse(time.DateOnly, toStr)
		if err != nil {
			http.Error(w, "error, invalid <to> date", http.StatusBadRequest)
			return
		}
		// inclusive on the API, half open towards the repo
		to = parsed.AddDate(0, 0, 1)
	}

	days, err := handler.repo.History(ctx, userID, from, to)
	if err != nil {
		log.Errorf("progress history for user %s: %s", userID, err)
		http.Error(w, "failed to get progress history", http.StatusInternalServerError)
		return
	}
	if days == nil {
		days = []DailyRecord{}
	}

	respJson, err := json.Marshal(HistoryResponse{Days: days, Total: len(days)})
	if err != nil {
		log.Errorf("failed to marshal progress history: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
