package achievements

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

type awardsReader interface {
	ListAwards(ctx context.Context, userID uuid.UUID) ([]Award, error)
}

type EarnedBadge struct {
	Badge    Badge  `json:"badge"`
	EarnedAt string `json:"earnedAt"`
}

type BadgesResponse struct {
	Badges      []EarnedBadge `json:"badges"`
	TotalPoints int           `json:"totalPoints"`
}

type Handler struct {
	awards awardsReader
}

func NewHandler(awards awardsReader) *Handler {
	return &Handler{awards: awards}
}

// HandleCatalog serves the fixed badge catalog, no auth needed
func (handler *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.achievements.catalog")
	defer span.End()

	catalogJson, err := json.Marshal(Catalog)
	if err != nil {
		log.Errorf("failed to marshal badge catalog: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, catalogJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.achievements.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no user", http.StatusUnauthorized)
		return
	}

	awards, err := handler.awards.ListAwards(ctx, userID)
	if err != nil {
		log.Errorf("list badge awards for user %s: %s", userID, err)
		http.Error(w, "failed to get badges", http.StatusInternalServerError)
		return
	}

	resp := BadgesResponse{
		Badges: []EarnedBadge{},
	}
	for _, award := range awards {
		badge, ok := BadgeByID(award.BadgeID)
		if !ok {
			log.Warnf("user %s holds unknown badge %q, skipping", userID, award.BadgeID)
			continue
		}
		resp.Badges = append(resp.Badges, EarnedBadge{
			Badge:    badge,
			EarnedAt: award.EarnedAt.Format(time.RFC3339),
		})
		resp.TotalPoints += badge.Points
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("failed to marshal badges response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
