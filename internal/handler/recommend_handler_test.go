package handler

import (
	"net/http"
	"testing"

	"gamestore/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRecommendations(t *testing.T) {
	env := newTestEnv(t, nil)
	dev, _ := env.user("dev", models.RoleDeveloper)
	alice, token := env.user("alice", "")
	rpg := env.tag("RPG")
	action := env.tag("Action")

	gameA := env.game(dev, "GameA", 1500, nil, rpg)
	gameB := env.game(dev, "GameB", 2500, nil, action)
	gameC := env.game(dev, "GameC", 0, nil)

	require.NoError(t, env.db.Create(&models.WishlistEntry{UserID: alice.ID, GameID: gameB.ID}).Error)
	require.NoError(t, env.db.Create(&models.FavoriteTag{UserID: alice.ID, TagID: rpg.ID}).Error)

	w := env.do(http.MethodGet, path("/recommendations"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	recs := decode[[]RecommendationResponse](t, w)
	require.Len(t, recs, 3)
	assert.Equal(t, gameB.ID, recs[0].GameID)
	assert.InDelta(t, 0.30, recs[0].Score, 1e-9)
	assert.Equal(t, gameA.ID, recs[1].GameID)
	assert.InDelta(t, 0.25, recs[1].Score, 1e-9)
	assert.Equal(t, gameC.ID, recs[2].GameID)
	assert.Zero(t, recs[2].Score)

	limited := decode[[]RecommendationResponse](t, env.do(http.MethodGet, path("/recommendations?limit=1"), token, nil))
	require.Len(t, limited, 1)
	assert.Equal(t, "GameB", limited[0].Title)

	assert.Contains(t, w.Body.String(), `"gameId"`)
}

func TestGetRecommendationsAnonymous(t *testing.T) {
	env := newTestEnv(t, nil)
	dev, _ := env.user("dev", models.RoleDeveloper)
	for _, title := range []string{"G1", "G2", "G3", "G4", "G5", "G6"} {
		env.game(dev, title, 999, nil)
	}

	recs := decode[[]RecommendationResponse](t, env.do(http.MethodGet, path("/recommendations"), "", nil))
	require.Len(t, recs, DefaultRecommendationLimit)
	for i, r := range recs {
		assert.Zero(t, r.Score)
		assert.Equal(t, []string{"G1", "G2", "G3", "G4", "G5"}[i], r.Title)
	}
}

func TestGetRecommendationCategories(t *testing.T) {
	env := newTestEnv(t, nil)
	dev, _ := env.user("dev", models.RoleDeveloper)
	alice, token := env.user("alice", "")
	rpg := env.tag("RPG")

	free := env.game(dev, "Free Quest", 0, nil, rpg)
	sale := env.game(dev, "Sale Saga", 2000, int64Ptr(1000))
	env.game(dev, "Full Price", 3000, nil)
	require.NoError(t, env.db.Create(&models.FavoriteTag{UserID: alice.ID, TagID: rpg.ID}).Error)

	w := env.do(http.MethodGet, path("/recommendations/categories"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	buckets := decode[[]CategoryResponse](t, w)
	require.Len(t, buckets, 3)
	assert.Equal(t, "Free to Play", buckets[0].Name)
	require.Len(t, buckets[0].Games, 1)
	assert.Equal(t, free.ID, buckets[0].Games[0].GameID)

	assert.Equal(t, "Discounts", buckets[1].Name)
	require.Len(t, buckets[1].Games, 1)
	assert.Equal(t, sale.ID, buckets[1].Games[0].GameID)

	assert.Equal(t, "RPG", buckets[2].Name)
	require.Len(t, buckets[2].Games, 1)
	assert.InDelta(t, 0.25, buckets[2].Games[0].Score, 1e-9)
}

func TestGetRecommendationCategoriesEmptyCatalog(t *testing.T) {
	env := newTestEnv(t, nil)

	buckets := decode[[]CategoryResponse](t, env.do(http.MethodGet, path("/recommendations/categories"), "", nil))
	require.Len(t, buckets, 2)
	for _, b := range buckets {
		assert.Empty(t, b.Games)
	}
}
