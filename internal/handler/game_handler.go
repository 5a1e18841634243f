package handler

import (
	"net/http"
	"strconv"
	"strings"

	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/database"
	"gamestore/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

type GameInput struct {
	Title              string `json:"title" binding:"required" example:"Star Forge"`
	Description        string `json:"description"`
	PriceCents         int64  `json:"price_cents" binding:"gte=0" example:"1999"`
	DiscountPriceCents *int64 `json:"discount_price_cents" binding:"omitempty,gte=0"`
	TagIDs             []uint `json:"tag_ids"` // IDs of the tags to associate with the game
}

type GameResponse struct {
	ID                  uint          `json:"id"`
	DeveloperID         uint          `json:"developer_id"`
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	PriceCents          int64         `json:"price_cents"`
	DiscountPriceCents  *int64        `json:"discount_price_cents,omitempty"`
	EffectivePriceCents int64         `json:"effective_price_cents"`
	IsFree              bool          `json:"is_free"`
	IsDiscounted        bool          `json:"is_discounted"`
	LikeCount           int64         `json:"like_count"`
	ReviewCount         int64         `json:"review_count"`
	AverageRating       float64       `json:"average_rating"`
	IsWishlisted        bool          `json:"is_wishlisted"`
	IsLiked             bool          `json:"is_liked"`
	IsOwned             bool          `json:"is_owned"`
	Tags                []TagResponse `json:"tags"`
}

// PaginatedGameResponse defines the structure for a paginated list of games.
type PaginatedGameResponse struct {
	Data []GameResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// gameView is the viewer-dependent state attached to a page of games.
type gameView struct {
	wishlisted map[uint]bool
	liked      map[uint]bool
	owned      map[uint]bool
	reviews    map[uint]reviewStats
}

type reviewStats struct {
	GameID  uint
	Count   int64
	Average float64
}

func newGameResponse(game models.Game, view *gameView) GameResponse {
	tagResponses := []TagResponse{}
	for _, tag := range game.Tags {
		if tag != nil {
			tagResponses = append(tagResponses, newTagResponse(*tag))
		}
	}

	resp := GameResponse{
		ID:                  game.ID,
		DeveloperID:         game.DeveloperID,
		Title:               game.Title,
		Description:         game.Description,
		PriceCents:          game.PriceCents,
		DiscountPriceCents:  game.DiscountPriceCents,
		EffectivePriceCents: game.EffectivePriceCents(),
		IsFree:              game.IsFree(),
		IsDiscounted:        game.IsDiscounted(),
		LikeCount:           game.LikeCount,
		Tags:                tagResponses,
	}
	if view != nil {
		resp.IsWishlisted = view.wishlisted[game.ID]
		resp.IsLiked = view.liked[game.ID]
		resp.IsOwned = view.owned[game.ID]
		stats := view.reviews[game.ID]
		resp.ReviewCount = stats.Count
		resp.AverageRating = stats.Average
	}
	return resp
}

func newGameResponses(db *gorm.DB, games []models.Game, userID uint) ([]GameResponse, error) {
	ids := make([]uint, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	view, err := loadGameView(db, userID, ids)
	if err != nil {
		return nil, err
	}

	response := make([]GameResponse, 0, len(games))
	for _, game := range games {
		response = append(response, newGameResponse(game, view))
	}
	return response, nil
}

// loadGameView loads the viewer's wishlist, like and ownership flags plus
// review aggregates for the given games in a fixed number of queries.
func loadGameView(db *gorm.DB, userID uint, gameIDs []uint) (*gameView, error) {
	view := &gameView{reviews: make(map[uint]reviewStats)}
	if len(gameIDs) == 0 {
		return view, nil
	}

	var err error
	if view.wishlisted, err = viewerGameIDs(db, &models.WishlistEntry{}, userID, gameIDs); err != nil {
		return nil, err
	}
	if view.liked, err = viewerGameIDs(db, &models.GameLike{}, userID, gameIDs); err != nil {
		return nil, err
	}
	if view.owned, err = viewerGameIDs(db, &models.Purchase{}, userID, gameIDs); err != nil {
		return nil, err
	}

	var stats []reviewStats
	err = db.Model(&models.Review{}).
		Select("game_id, COUNT(*) AS count, AVG(rating) AS average").
		Where("game_id IN ?", gameIDs).
		Group("game_id").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	for _, s := range stats {
		view.reviews[s.GameID] = s
	}
	return view, nil
}

// viewerGameIDs returns which of gameIDs have a row of model for userID.
func viewerGameIDs(db *gorm.DB, model interface{}, userID uint, gameIDs []uint) (map[uint]bool, error) {
	return likedTargets(db, model, "game_id", userID, gameIDs)
}

// endregion

// region --- Developer Handlers ---

// CreateGame godoc
// @Summary      Publish a new game
// @Description  Creates a game owned by the calling developer and associates it with given tags.
// @Tags         developer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  GameResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Developer access required"
// @Router       /developer/games [post]
func CreateGame(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Find tags by IDs
	var tags []*models.Tag
	if len(input.TagIDs) > 0 {
		if err := database.DB.Find(&tags, input.TagIDs).Error; err != nil {
			respondError(c, models.NewInternalError(err))
			return
		}
	}

	game := models.Game{
		DeveloperID:        user.ID,
		Title:              input.Title,
		Description:        input.Description,
		PriceCents:         input.PriceCents,
		DiscountPriceCents: input.DiscountPriceCents,
		Tags:               tags,
	}

	if err := database.DB.Create(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}

	c.JSON(http.StatusCreated, newGameResponse(game, nil))
}

// UpdateGame godoc
// @Summary      Update a game
// @Description  Updates a game's details and replaces its tags. Developers may edit their own games, admins any game.
// @Tags         developer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int       true  "Game ID"
// @Param        input body      GameInput true  "New Game Info"
// @Success      200   {object}  GameResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Not the owner of this game"
// @Failure      404   {object}  ErrorResponse "Game not found"
// @Router       /developer/games/{id} [put]
func UpdateGame(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	game, ok := ownedGame(c, id)
	if !ok {
		return
	}

	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Find new tags
	var tags []*models.Tag
	if len(input.TagIDs) > 0 {
		if err := database.DB.Find(&tags, input.TagIDs).Error; err != nil {
			respondError(c, models.NewInternalError(err))
			return
		}
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// like_count is owned by the like toggle and is never written here.
		if err := tx.Model(&game).Select("title", "description", "price_cents", "discount_price_cents").Updates(models.Game{
			Title:              input.Title,
			Description:        input.Description,
			PriceCents:         input.PriceCents,
			DiscountPriceCents: input.DiscountPriceCents,
		}).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return tx.Model(&game).Association("Tags").Clear()
		}
		return tx.Model(&game).Association("Tags").Replace(tags)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update game"})
		return
	}

	// Preload tags for the response
	database.DB.Preload("Tags").First(&game, id)

	c.JSON(http.StatusOK, newGameResponse(game, nil))
}

// DeleteGame godoc
// @Summary      Delete a game
// @Description  Unlists a game owned by the caller.
// @Tags         developer
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game deleted"}"
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not the owner of this game"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /developer/games/{id} [delete]
func DeleteGame(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	game, ok := ownedGame(c, id)
	if !ok {
		return
	}

	if err := database.DB.Select("Tags").Delete(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete game"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
}

// ownedGame loads a game the current developer may manage.
func ownedGame(c *gin.Context, id uint) (models.Game, bool) {
	user, _ := auth.CurrentUser(c)

	var game models.Game
	if err := database.DB.First(&game, id).Error; err != nil {
		respondError(c, notFoundOr(err, "Game", id))
		return game, false
	}
	if game.DeveloperID != user.ID && user.Role != models.RoleAdmin {
		respondError(c, models.NewForbiddenError("You do not own this game"))
		return game, false
	}
	return game, true
}

// endregion

// region --- Public Handlers ---

// GetGameByID godoc
// @Summary      Get a single game by ID
// @Description  Retrieves details for a single game, including its tags, review aggregate and the viewer's wishlist, like and ownership state.
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} GameResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func GetGameByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	db := database.DB.WithContext(c.Request.Context())

	var game models.Game
	if err := db.Preload("Tags").First(&game, id).Error; err != nil {
		respondError(c, notFoundOr(err, "Game", id))
		return
	}

	response, err := newGameResponses(db, []models.Game{game}, auth.UserID(c))
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, response[0])
}

// GetGames godoc
// @Summary      Get a list of games
// @Description  Retrieves a paginated list of games, with optional filtering by title, tags, free and discounted games.
// @Tags         games
// @Produce      json
// @Param        q       query     string  false  "Search query for game title"
// @Param        tag_ids query     string  false  "Comma-separated list of Tag IDs"
// @Param        free_only query bool false "Return only free games"
// @Param        discounted_only query bool false "Return only discounted games"
// @Param        page    query     int     false  "Page number" default(1)
// @Param        limit   query     int     false  "Items per page" default(10)
// @Success      200 {object} PaginatedGameResponse
// @Router       /games [get]
func GetGames(c *gin.Context) {
	page, limit := pageParams(c)
	offset := (page - 1) * limit

	searchQuery := c.Query("q")
	freeOnly, _ := strconv.ParseBool(c.Query("free_only"))
	discountedOnly, _ := strconv.ParseBool(c.Query("discounted_only"))

	var tagIDs []uint
	for _, s := range splitCommaSeparated(c.Query("tag_ids")) {
		if id, parseErr := strconv.ParseUint(s, 10, 32); parseErr == nil {
			tagIDs = append(tagIDs, uint(id))
		}
	}

	db := database.DB.WithContext(c.Request.Context())
	dbQuery := db.Model(&models.Game{})

	// Filter by title
	if searchQuery != "" {
		dbQuery = dbQuery.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(searchQuery)+"%")
	}
	if freeOnly {
		dbQuery = dbQuery.Where("price_cents <= 0")
	}
	if discountedOnly {
		dbQuery = dbQuery.Where("price_cents > 0 AND discount_price_cents IS NOT NULL AND discount_price_cents < price_cents")
	}
	// Filter by tags. A subquery keeps the count free of GROUP BY.
	if len(tagIDs) > 0 {
		dbQuery = dbQuery.Where("id IN (?)", db.Table("game_tags").Select("game_id").Where("tag_id IN ?", tagIDs))
	}

	dbQuery = dbQuery.Session(&gorm.Session{})

	var totalItems int64
	if err := dbQuery.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count games"})
		return
	}

	var games []models.Game
	if err := dbQuery.Preload("Tags").Order("id").Offset(offset).Limit(limit).Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}

	response, err := newGameResponses(db, games, auth.UserID(c))
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}

// Helper to split comma-separated strings
func splitCommaSeparated(s string) []string {
	var result []string
	parts := strings.Split(s, ",")
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// endregion
