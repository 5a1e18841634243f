package handler

import (
	"fmt"
	"net/http"
	"testing"

	"gamestore/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetGamesFilters(t *testing.T) {
	env := newTestEnv(t, nil)
	dev, _ := env.user("dev", models.RoleDeveloper)
	rpg := env.tag("RPG")
	coop := env.tag("Co-op")

	env.game(dev, "Dragon Quest", 0, nil, rpg)
	env.game(dev, "Dungeon Crawl", 2000, int64Ptr(999), rpg, coop)
	env.game(dev, "Space Trucker", 1500, nil, coop)

	titles := func(query string) []string {
		t.Helper()
		w := env.do(http.MethodGet, path("/games%s", query), "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		page := decode[PaginatedGameResponse](t, w)
		out := []string{}
		for _, g := range page.Data {
			out = append(out, g.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Dragon Quest", "Dungeon Crawl", "Space Trucker"}, titles(""))
	assert.Equal(t, []string{"Dragon Quest", "Dungeon Crawl"}, titles("?q=d"))
	assert.Equal(t, []string{"Dungeon Crawl"}, titles("?q=DUNGEON"))
	assert.Equal(t, []string{"Dragon Quest"}, titles("?free_only=true"))
	assert.Equal(t, []string{"Dungeon Crawl"}, titles("?discounted_only=true"))
	assert.Equal(t, []string{"Dungeon Crawl", "Space Trucker"}, titles(fmt.Sprintf("?tag_ids=%d", coop.ID)))
	assert.Equal(t, []string{"Dragon Quest", "Dungeon Crawl", "Space Trucker"}, titles(fmt.Sprintf("?tag_ids=%d,%d", rpg.ID, coop.ID)))

	w := env.do(http.MethodGet, path("/games?limit=2&page=2"), "", nil)
	page := decode[PaginatedGameResponse](t, w)
	assert.Equal(t, PaginationMeta{TotalItems: 3, TotalPages: 2, CurrentPage: 2, PageSize: 2}, page.Meta)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Space Trucker", page.Data[0].Title)
}

func TestGetGameByID(t *testing.T) {
	env := newTestEnv(t, nil)
	dev, _ := env.user("dev", models.RoleDeveloper)
	alice, token := env.user("alice", "")
	game := env.game(dev, "Dungeon Crawl", 2000, int64Ptr(999), env.tag("RPG"))

	require.NoError(t, env.db.Create(&models.WishlistEntry{UserID: alice.ID, GameID: game.ID}).Error)
	require.NoError(t, env.db.Create(&models.Review{GameID: game.ID, AuthorID: dev.ID, Rating: 4}).Error)
	require.NoError(t, env.db.Create(&models.Review{GameID: game.ID, AuthorID: alice.ID, Rating: 5}).Error)

	w := env.do(http.MethodGet, path("/games/%d", game.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[GameResponse](t, w)
	assert.Equal(t, int64(999), resp.EffectivePriceCents)
	assert.True(t, resp.IsDiscounted)
	assert.True(t, resp.IsWishlisted)
	assert.False(t, resp.IsOwned)
	assert.Equal(t, int64(2), resp.ReviewCount)
	assert.InDelta(t, 4.5, resp.AverageRating, 1e-9)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "RPG", resp.Tags[0].Name)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path("/games/999"), "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, path("/games/abc"), "", nil).Code)
}

func TestDeveloperGameLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	_, devToken := env.user("dev", models.RoleDeveloper)
	_, rivalToken := env.user("rival", models.RoleDeveloper)
	_, adminToken := env.user("root", models.RoleAdmin)
	_, playerToken := env.user("player", "")
	rpg := env.tag("RPG")

	input := GameInput{Title: "Star Forge", PriceCents: 1999, TagIDs: []uint{rpg.ID}}

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, path("/developer/games"), "", input).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, path("/developer/games"), playerToken, input).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, path("/developer/games"), devToken, GameInput{PriceCents: 5}).Code)

	w := env.do(http.MethodPost, path("/developer/games"), devToken, input)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[GameResponse](t, w)
	require.Len(t, created.Tags, 1)

	update := GameInput{Title: "Star Forge Deluxe", PriceCents: 2999, DiscountPriceCents: int64Ptr(1999)}
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPut, path("/developer/games/%d", created.ID), rivalToken, update).Code)

	w = env.do(http.MethodPut, path("/developer/games/%d", created.ID), devToken, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[GameResponse](t, w)
	assert.Equal(t, "Star Forge Deluxe", updated.Title)
	assert.Equal(t, int64(1999), updated.EffectivePriceCents)
	assert.Empty(t, updated.Tags)

	// Admins may edit any game.
	update.Title = "Star Forge GOTY"
	assert.Equal(t, http.StatusOK, env.do(http.MethodPut, path("/developer/games/%d", created.ID), adminToken, update).Code)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodDelete, path("/developer/games/%d", created.ID), rivalToken, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, path("/developer/games/%d", created.ID), devToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path("/games/%d", created.ID), "", nil).Code)
}

func TestUpdateGameKeepsLikeCount(t *testing.T) {
	env := newTestEnv(t, nil)
	dev, devToken := env.user("dev", models.RoleDeveloper)
	_, token := env.user("alice", "")
	game := env.game(dev, "Star Forge", 1999, nil)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path("/games/%d/like", game.ID), token, nil).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodPut, path("/developer/games/%d", game.ID), devToken, GameInput{Title: "Renamed", PriceCents: 999}).Code)

	var stored models.Game
	require.NoError(t, env.db.First(&stored, game.ID).Error)
	assert.Equal(t, int64(1), stored.LikeCount)
}

func TestDeveloperAnalytics(t *testing.T) {
	env := newTestEnv(t, nil)
	dev, devToken := env.user("dev", models.RoleDeveloper)
	alice, token := env.user("alice", "")
	bob, _ := env.user("bob", "")
	game := env.game(dev, "Star Forge", 2000, nil)
	other := env.game(dev, "Moon Miner", 500, nil)

	require.NoError(t, env.db.Create(&models.Purchase{UserID: alice.ID, GameID: game.ID, PaidCents: 2000, PaymentReference: "a"}).Error)
	require.NoError(t, env.db.Create(&models.Purchase{UserID: bob.ID, GameID: game.ID, PaidCents: 1500, PaymentReference: "b"}).Error)
	require.NoError(t, env.db.Create(&models.WishlistEntry{UserID: alice.ID, GameID: other.ID}).Error)
	require.NoError(t, env.db.Create(&models.Review{GameID: game.ID, AuthorID: alice.ID, Rating: 3}).Error)
	require.NoError(t, env.db.Create(&models.Review{GameID: game.ID, AuthorID: bob.ID, Rating: 5}).Error)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path("/games/%d/like", game.ID), token, nil).Code)

	w := env.do(http.MethodGet, path("/developer/analytics"), devToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[DeveloperAnalyticsResponse](t, w)
	require.Len(t, resp.Games, 2)
	assert.Equal(t, GameAnalyticsResponse{
		GameID: game.ID, Title: "Star Forge", Likes: 1, Sales: 2, RevenueCents: 3500, Reviews: 2, AverageRating: 4,
	}, resp.Games[0])
	assert.Equal(t, GameAnalyticsResponse{GameID: other.ID, Title: "Moon Miner", Wishlists: 1}, resp.Games[1])
	assert.Equal(t, int64(2), resp.TotalSales)
	assert.Equal(t, int64(3500), resp.TotalRevenueCents)
}
