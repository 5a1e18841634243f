package handler

import (
	"net/http"
	"strconv"

	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/metrics"
	"gamestore/backend/internal/models"
	"gamestore/backend/internal/recommend"

	"github.com/gin-gonic/gin"
)

// DefaultRecommendationLimit is the size of the top list when no limit is given.
const DefaultRecommendationLimit = 5

// RecommendationResponse is one ranked game.
type RecommendationResponse struct {
	GameID uint    `json:"gameId" example:"42"`
	Title  string  `json:"title" example:"Star Forge"`
	Score  float64 `json:"score" example:"0.55"`
}

// CategoryResponse is a named bucket of ranked games.
type CategoryResponse struct {
	Name  string                   `json:"name" example:"Free to Play"`
	Games []RecommendationResponse `json:"games"`
}

func newRecommendationResponses(scored []recommend.Scored) []RecommendationResponse {
	response := make([]RecommendationResponse, 0, len(scored))
	for _, s := range scored {
		response = append(response, RecommendationResponse{GameID: s.ID, Title: s.Title, Score: s.Score})
	}
	return response
}

// queryLimit reads ?limit=, falling back to def when absent or malformed.
// Zero or a negative value means no limit.
func queryLimit(c *gin.Context, def int) int {
	raw, ok := c.GetQuery("limit")
	if !ok {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return limit
}

// GetRecommendations godoc
// @Summary      Top recommended games
// @Description  Ranks the catalog for the caller by wishlist membership and favorite tag overlap. Anonymous callers get catalog order.
// @Tags         recommendations
// @Produce      json
// @Param        limit query int false "Number of games, 0 for all" default(5)
// @Success      200 {array} RecommendationResponse
// @Failure      500 {object} ErrorResponse
// @Router       /recommendations [get]
func GetRecommendations(svc *recommend.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer metrics.ObserveRecommendation("top")()

		scored, err := svc.Top(c.Request.Context(), auth.UserID(c), queryLimit(c, DefaultRecommendationLimit))
		if err != nil {
			respondError(c, models.NewInternalError(err))
			return
		}
		c.JSON(http.StatusOK, newRecommendationResponses(scored))
	}
}

// GetRecommendationCategories godoc
// @Summary      Recommended categories
// @Description  Returns the Free to Play and Discounts buckets followed by one bucket per favorite tag, each ranked for the caller.
// @Tags         recommendations
// @Produce      json
// @Param        limit query int false "Games per bucket, 0 for all" default(20)
// @Success      200 {array} CategoryResponse
// @Failure      500 {object} ErrorResponse
// @Router       /recommendations/categories [get]
func GetRecommendationCategories(svc *recommend.Service, defaultLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer metrics.ObserveRecommendation("categories")()

		buckets, err := svc.Categories(c.Request.Context(), auth.UserID(c), queryLimit(c, defaultLimit))
		if err != nil {
			respondError(c, models.NewInternalError(err))
			return
		}

		response := make([]CategoryResponse, 0, len(buckets))
		for _, b := range buckets {
			response = append(response, CategoryResponse{Name: b.Name, Games: newRecommendationResponses(b.Games)})
		}
		c.JSON(http.StatusOK, response)
	}
}
