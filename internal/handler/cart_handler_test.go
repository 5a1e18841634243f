package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"gamestore/backend/internal/models"
	"gamestore/backend/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProcessor struct{}

func (failingProcessor) Charge(ctx context.Context, userID uint, amountCents int64) (string, error) {
	return "", errors.New("card declined")
}

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	dev, _ := env.user("dev", models.RoleDeveloper)
	alice, token := env.user("alice", "")
	full := env.game(dev, "Full Price", 2000, nil)
	sale := env.game(dev, "On Sale", 3000, int64Ptr(1500))

	require.NoError(t, env.db.Create(&models.WishlistEntry{UserID: alice.ID, GameID: sale.ID}).Error)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path("/cart/%d", full.ID), token, nil).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path("/cart/%d", sale.ID), token, nil).Code)
	// Adding twice is a no-op.
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path("/cart/%d", sale.ID), token, nil).Code)

	cart := decode[CartResponse](t, env.do(http.MethodGet, path("/cart"), token, nil))
	require.Len(t, cart.Items, 2)
	assert.Equal(t, int64(3500), cart.TotalCents)

	w := env.do(http.MethodPost, path("/cart/checkout"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	order := decode[CheckoutResponse](t, w)
	assert.Equal(t, int64(3500), order.TotalCents)
	_, err := uuid.Parse(order.PaymentReference)
	assert.NoError(t, err)
	require.Len(t, order.Games, 2)
	for _, g := range order.Games {
		assert.True(t, g.IsOwned)
		assert.False(t, g.IsWishlisted)
	}

	var purchases []models.Purchase
	require.NoError(t, env.db.Where("user_id = ?", alice.ID).Order("game_id").Find(&purchases).Error)
	require.Len(t, purchases, 2)
	assert.Equal(t, int64(2000), purchases[0].PaidCents)
	assert.Equal(t, int64(1500), purchases[1].PaidCents)

	var cartRows, wishlistRows int64
	env.db.Model(&models.CartItem{}).Where("user_id = ?", alice.ID).Count(&cartRows)
	env.db.Model(&models.WishlistEntry{}).Where("user_id = ?", alice.ID).Count(&wishlistRows)
	assert.Zero(t, cartRows)
	assert.Zero(t, wishlistRows)

	library := decode[[]GameResponse](t, env.do(http.MethodGet, path("/users/me/library"), token, nil))
	assert.Len(t, library, 2)

	// Owned games cannot go back into the cart.
	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, path("/cart/%d", full.ID), token, nil).Code)
}

func TestCheckoutFreeOrderSkipsProcessor(t *testing.T) {
	env := newTestEnv(t, failingProcessor{})
	dev, _ := env.user("dev", models.RoleDeveloper)
	_, token := env.user("alice", "")
	free := env.game(dev, "Free Quest", 0, nil)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path("/cart/%d", free.ID), token, nil).Code)

	w := env.do(http.MethodPost, path("/cart/checkout"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, payment.FreeReference, decode[CheckoutResponse](t, w).PaymentReference)
}

func TestCheckoutFailureRollsBack(t *testing.T) {
	env := newTestEnv(t, failingProcessor{})
	dev, _ := env.user("dev", models.RoleDeveloper)
	alice, token := env.user("alice", "")
	game := env.game(dev, "Star Forge", 1999, nil)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path("/cart/%d", game.ID), token, nil).Code)

	w := env.do(http.MethodPost, path("/cart/checkout"), token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())

	var purchases, cartRows int64
	env.db.Model(&models.Purchase{}).Where("user_id = ?", alice.ID).Count(&purchases)
	env.db.Model(&models.CartItem{}).Where("user_id = ?", alice.ID).Count(&cartRows)
	assert.Zero(t, purchases)
	assert.Equal(t, int64(1), cartRows)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.user("alice", "")

	w := env.do(http.MethodPost, path("/cart/checkout"), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Cart is empty"}`, w.Body.String())
}

func TestCartRequiresAuthAndKnownGames(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.user("alice", "")

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, path("/cart"), "", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, path("/cart/42"), token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, path("/cart/42"), token, nil).Code)
}
