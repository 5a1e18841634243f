package handler

import (
	"errors"
	"net/http"

	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/database"
	"gamestore/backend/internal/logging"
	"gamestore/backend/internal/models"
	"gamestore/backend/internal/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// region --- DTOs ---

// CartResponse lists the cart contents and what checkout would charge.
type CartResponse struct {
	Items      []GameResponse `json:"items"`
	TotalCents int64          `json:"total_cents"`
}

// CheckoutResponse describes a completed order.
type CheckoutResponse struct {
	PaymentReference string         `json:"payment_reference"`
	TotalCents       int64          `json:"total_cents"`
	Games            []GameResponse `json:"games"`
}

// endregion

// GetCart godoc
// @Summary      Get my cart
// @Description  Lists the games in the current user's cart with their effective prices and the order total.
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} CartResponse
// @Failure      401 {object} ErrorResponse
// @Router       /cart [get]
func GetCart(c *gin.Context) {
	userID := auth.UserID(c)
	db := database.DB.WithContext(c.Request.Context())

	games, err := cartGames(db, userID)
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	items, err := newGameResponses(db, games, userID)
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, CartResponse{Items: items, TotalCents: totalCents(games)})
}

// AddToCart godoc
// @Summary      Add a game to the cart
// @Description  Puts a game in the cart. Adding a game already in the cart is a no-op; owned games are rejected.
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        gameID path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Added to cart"}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      409 {object} ErrorResponse "Game already owned"
// @Router       /cart/{gameID} [post]
func AddToCart(c *gin.Context) {
	userID := auth.UserID(c)
	gameID, ok := parseID(c, "gameID")
	if !ok {
		return
	}

	db := database.DB.WithContext(c.Request.Context())

	var game models.Game
	if err := db.Select("id").First(&game, gameID).Error; err != nil {
		respondError(c, notFoundOr(err, "Game", gameID))
		return
	}

	var owned int64
	if err := db.Model(&models.Purchase{}).Where("user_id = ? AND game_id = ?", userID, gameID).Count(&owned).Error; err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}
	if owned > 0 {
		respondError(c, models.NewConflictError("Game already owned", nil))
		return
	}

	item := models.CartItem{UserID: userID, GameID: gameID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error; err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Added to cart"})
}

// RemoveFromCart godoc
// @Summary      Remove a game from the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        gameID path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Removed from cart"}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not in cart"
// @Router       /cart/{gameID} [delete]
func RemoveFromCart(c *gin.Context) {
	gameID, ok := parseID(c, "gameID")
	if !ok {
		return
	}

	result := database.DB.WithContext(c.Request.Context()).
		Where("user_id = ? AND game_id = ?", auth.UserID(c), gameID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		respondError(c, models.NewInternalError(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from cart"})
}

// Checkout godoc
// @Summary      Check out the cart
// @Description  Charges the cart total, records a purchase per game, clears the cart and removes the purchased games from the wishlist. Free orders skip the payment processor.
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} CheckoutResponse
// @Failure      400 {object} ErrorResponse "Cart is empty"
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Game already owned"
// @Router       /cart/checkout [post]
func Checkout(processor payment.Processor) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := auth.UserID(c)

		var (
			games     []models.Game
			reference string
			total     int64
		)
		err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			if games, err = cartGames(tx, userID); err != nil {
				return err
			}
			if len(games) == 0 {
				return models.NewInvalidArgumentError("Cart is empty")
			}

			gameIDs := make([]uint, len(games))
			for i, g := range games {
				gameIDs[i] = g.ID
			}

			var owned int64
			if err := tx.Model(&models.Purchase{}).Where("user_id = ? AND game_id IN ?", userID, gameIDs).Count(&owned).Error; err != nil {
				return err
			}
			if owned > 0 {
				return models.NewConflictError("Cart contains a game you already own", nil)
			}

			total = totalCents(games)
			if reference, err = payment.ChargeTotal(ctx, processor, userID, total); err != nil {
				return models.NewInternalError(err)
			}

			purchases := make([]models.Purchase, len(games))
			for i, g := range games {
				purchases[i] = models.Purchase{
					UserID:           userID,
					GameID:           g.ID,
					PaidCents:        g.EffectivePriceCents(),
					PaymentReference: reference,
				}
			}
			if err := tx.Create(&purchases).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return models.NewConflictError("Cart contains a game you already own", err)
				}
				return err
			}

			if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Where("user_id = ? AND game_id IN ?", userID, gameIDs).Delete(&models.WishlistEntry{}).Error
		})
		if err != nil {
			respondError(c, err)
			return
		}

		logging.Ctx(ctx).Info().
			Uint("user_id", userID).
			Int("games", len(games)).
			Int64("total_cents", total).
			Str("payment_reference", reference).
			Msg("checkout completed")

		response, err := newGameResponses(database.DB.WithContext(ctx), games, userID)
		if err != nil {
			respondError(c, models.NewInternalError(err))
			return
		}

		c.JSON(http.StatusOK, CheckoutResponse{
			PaymentReference: reference,
			TotalCents:       total,
			Games:            response,
		})
	}
}

// cartGames returns the listed games in userID's cart in the order they were added.
func cartGames(db *gorm.DB, userID uint) ([]models.Game, error) {
	var games []models.Game
	err := db.Preload("Tags").
		Joins("JOIN cart_items ci ON ci.game_id = games.id").
		Where("ci.user_id = ?", userID).
		Order("ci.created_at").
		Order("games.id").
		Find(&games).Error
	return games, err
}

func totalCents(games []models.Game) int64 {
	var total int64
	for _, g := range games {
		total += g.EffectivePriceCents()
	}
	return total
}
