package achievements

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHandler_HandleCatalog(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewHandler(NewMockawardsStore(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/badges/catalog", nil)
	rec := httptest.NewRecorder()

	h.HandleCatalog(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var catalog []Badge
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	require.Len(t, catalog, len(Catalog))

	for i, badge := range catalog {
		assert.Equal(t, Catalog[i].ID, badge.ID)
		assert.Equal(t, Catalog[i].Rarity, badge.Rarity)
		assert.Equal(t, Catalog[i].Category, badge.Category)
	}
}

func TestHandler_HandleList(t *testing.T) {
	ctrl := gomock.NewController(t)
	awards := NewMockawardsStore(ctrl)
	h := NewHandler(awards)

	userID := uuid.New()
	earnedAt := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	awards.EXPECT().ListAwards(gomock.Any(), userID).Return([]Award{
		{UserID: userID, BadgeID: "first-goal", EarnedAt: earnedAt},
		{UserID: userID, BadgeID: "streak-7", EarnedAt: earnedAt},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/badges", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()

	h.HandleList(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BadgesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Badges, 2)
	assert.Equal(t, 35, resp.TotalPoints)

	first := resp.Badges[0]
	assert.Equal(t, "first-goal", first.Badge.ID)
	assert.Equal(t, RarityCommon, first.Badge.Rarity)
	assert.Equal(t, CategoryMilestone, first.Badge.Category)
	assert.Equal(t, "2025-03-14T10:00:00Z", first.EarnedAt)

	second := resp.Badges[1]
	assert.Equal(t, RarityRare, second.Badge.Rarity)
	assert.Equal(t, CategoryStreak, second.Badge.Category)
}

func TestHandler_HandleList_noUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewHandler(NewMockawardsStore(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/badges", nil)
	rec := httptest.NewRecorder()

	h.HandleList(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
