package handler

import (
	"net/http"

	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/database"
	"gamestore/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ToggleWishlist godoc
// @Summary      Toggle a game in the wishlist
// @Description  Adds or removes a game from the user's wishlist.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]bool "{"is_wishlisted": true}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/wishlist [post]
func ToggleWishlist(c *gin.Context) {
	userID := auth.UserID(c)
	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var isWishlisted bool
	err := database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.Select("id").First(&game, gameID).Error; err != nil {
			return notFoundOr(err, "Game", gameID)
		}

		result := tx.Where("user_id = ? AND game_id = ?", userID, gameID).Delete(&models.WishlistEntry{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		isWishlisted = true
		return tx.Create(&models.WishlistEntry{UserID: userID, GameID: gameID}).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_wishlisted": isWishlisted})
}

// GetWishlist godoc
// @Summary      Get my wishlist
// @Description  Lists the games on the current user's wishlist, most recently added first.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} GameResponse
// @Failure      401 {object} ErrorResponse
// @Router       /users/me/wishlist [get]
func GetWishlist(c *gin.Context) {
	listUserGames(c, "wishlist_entries")
}

// GetLibrary godoc
// @Summary      Get my library
// @Description  Lists the games the current user owns, most recently purchased first.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} GameResponse
// @Failure      401 {object} ErrorResponse
// @Router       /users/me/library [get]
func GetLibrary(c *gin.Context) {
	listUserGames(c, "purchases")
}

// listUserGames responds with the games linked to the current user through
// table, a (user_id, game_id, created_at) table.
func listUserGames(c *gin.Context, table string) {
	userID := auth.UserID(c)
	db := database.DB.WithContext(c.Request.Context())

	var games []models.Game
	err := db.Preload("Tags").
		Joins("JOIN "+table+" ug ON ug.game_id = games.id").
		Where("ug.user_id = ?", userID).
		Order("ug.created_at DESC").
		Order("games.id").
		Find(&games).Error
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	response, err := newGameResponses(db, games, userID)
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, response)
}
