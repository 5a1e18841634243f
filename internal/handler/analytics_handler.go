package handler

import (
	"net/http"

	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/database"
	"gamestore/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GameAnalyticsResponse summarizes how one published game performs.
type GameAnalyticsResponse struct {
	GameID        uint    `json:"game_id"`
	Title         string  `json:"title"`
	Likes         int64   `json:"likes"`
	Wishlists     int64   `json:"wishlists"`
	Sales         int64   `json:"sales"`
	RevenueCents  int64   `json:"revenue_cents"`
	Reviews       int64   `json:"reviews"`
	AverageRating float64 `json:"average_rating"`
}

// DeveloperAnalyticsResponse holds per-game figures and their totals.
type DeveloperAnalyticsResponse struct {
	Games             []GameAnalyticsResponse `json:"games"`
	TotalSales        int64                   `json:"total_sales"`
	TotalRevenueCents int64                   `json:"total_revenue_cents"`
}

type gameAggregate struct {
	GameID  uint
	Count   int64
	Sum     int64
	Average float64
}

// aggregateByGame runs one grouped query over model for gameIDs. sumColumn
// and avgColumn may be empty.
func aggregateByGame(db *gorm.DB, model interface{}, gameIDs []uint, sumColumn, avgColumn string) (map[uint]gameAggregate, error) {
	selects := "game_id, COUNT(*) AS count"
	if sumColumn != "" {
		selects += ", COALESCE(SUM(" + sumColumn + "), 0) AS sum"
	}
	if avgColumn != "" {
		selects += ", AVG(" + avgColumn + ") AS average"
	}

	var rows []gameAggregate
	if err := db.Model(model).Select(selects).Where("game_id IN ?", gameIDs).Group("game_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	byGame := make(map[uint]gameAggregate, len(rows))
	for _, r := range rows {
		byGame[r.GameID] = r
	}
	return byGame, nil
}

// GetDeveloperAnalytics godoc
// @Summary      Developer analytics
// @Description  Likes, wishlists, sales, revenue and review figures for every game the caller published.
// @Tags         developer
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} DeveloperAnalyticsResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Developer access required"
// @Router       /developer/analytics [get]
func GetDeveloperAnalytics(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())

	var games []models.Game
	if err := db.Where("developer_id = ?", auth.UserID(c)).Order("id").Find(&games).Error; err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	response := DeveloperAnalyticsResponse{Games: []GameAnalyticsResponse{}}
	if len(games) == 0 {
		c.JSON(http.StatusOK, response)
		return
	}

	ids := make([]uint, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}

	wishlists, err := aggregateByGame(db, &models.WishlistEntry{}, ids, "", "")
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}
	sales, err := aggregateByGame(db, &models.Purchase{}, ids, "paid_cents", "")
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}
	reviews, err := aggregateByGame(db, &models.Review{}, ids, "", "rating")
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	for _, g := range games {
		row := GameAnalyticsResponse{
			GameID:        g.ID,
			Title:         g.Title,
			Likes:         g.LikeCount,
			Wishlists:     wishlists[g.ID].Count,
			Sales:         sales[g.ID].Count,
			RevenueCents:  sales[g.ID].Sum,
			Reviews:       reviews[g.ID].Count,
			AverageRating: reviews[g.ID].Average,
		}
		response.TotalSales += row.Sales
		response.TotalRevenueCents += row.RevenueCents
		response.Games = append(response.Games, row)
	}

	c.JSON(http.StatusOK, response)
}
