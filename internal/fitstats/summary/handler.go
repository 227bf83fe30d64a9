package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/auth"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"
	"github.com/BUPE-NONDO/fitstats/pkg"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type statsComposer interface {
	Compose(ctx context.Context, userID uuid.UUID, today time.Time) (ProgressStats, error)
}

type Handler struct {
	composer    statsComposer
	cache       *freecache.Cache
	cacheExpire int
}

func NewHandler(composer statsComposer, cacheSize, cacheExpireSeconds int) *Handler {
	return &Handler{
		composer:    composer,
		cache:       freecache.NewCache(cacheSize),
		cacheExpire: cacheExpireSeconds,
	}
}

// HandleGetStats serves the user's progress stats. The stats view
// is recomputed from derived records, a short lived cache absorbs
// rapid successive reads. An optional ?date=YYYY-MM-DD query
// pins "today" for the computation.
func (handler *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.summary.stats")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	today := time.Now().UTC()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			http.Error(w, "error, invalid <date> param", http.StatusBadRequest)
			return
		}
		today = parsed
	}
	today = goals.DayOf(today)

	cacheKey := []byte(fmt.Sprintf("stats::%s::%s", userID, today.Format(time.DateOnly)))
	if cachedStats, err := handler.cache.Get(cacheKey); err == nil {
		log.Tracef("found progress stats for %s in cache", userID)
		pkg.WriteResponseBytes(w, pkg.ContentType.JSON, cachedStats, http.StatusOK)
		return
	}

	stats, err := handler.composer.Compose(ctx, userID, today)
	if err != nil {
		log.Errorf("compose progress stats for user %s: %s", userID, err)
		http.Error(w, "failed to get progress stats", http.StatusInternalServerError)
		return
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("failed to marshal progress stats: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set(cacheKey, statsJson, handler.cacheExpire); err != nil {
		log.Errorf("failed to cache progress stats for user %s: %s", userID, err)
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statsJson, http.StatusOK)
}
