package handler

import (
	"errors"
	"net/http"
	"time"

	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/database"
	"gamestore/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

type PostInput struct {
	Title string `json:"title" binding:"required,max=300" example:"Best co-op games this year?"`
	Body  string `json:"body" binding:"required"`
}

type CommentInput struct {
	Body string `json:"body" binding:"required"`
}

type ReviewInput struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5" example:"4"`
	Body   string `json:"body"`
}

// AuthorResponse is the public identity shown next to community content.
type AuthorResponse struct {
	ID       uint   `json:"id"`
	Nickname string `json:"nickname"`
}

type PostResponse struct {
	ID            uint           `json:"id"`
	Title         string         `json:"title"`
	Body          string         `json:"body"`
	Author        AuthorResponse `json:"author"`
	LikeCount     int64          `json:"like_count"`
	CommentsCount int64          `json:"comments_count"`
	IsLiked       bool           `json:"is_liked"`
	CreatedAt     time.Time      `json:"created_at"`
}

type CommentResponse struct {
	ID        uint           `json:"id"`
	PostID    uint           `json:"post_id"`
	Body      string         `json:"body"`
	Author    AuthorResponse `json:"author"`
	LikeCount int64          `json:"like_count"`
	IsLiked   bool           `json:"is_liked"`
	CreatedAt time.Time      `json:"created_at"`
}

type ReviewResponse struct {
	ID        uint           `json:"id"`
	GameID    uint           `json:"game_id"`
	Rating    int            `json:"rating"`
	Body      string         `json:"body"`
	Author    AuthorResponse `json:"author"`
	LikeCount int64          `json:"like_count"`
	IsLiked   bool           `json:"is_liked"`
	CreatedAt time.Time      `json:"created_at"`
}

// GameReviewsResponse lists a game's reviews with their aggregate.
type GameReviewsResponse struct {
	GameID        uint             `json:"game_id"`
	ReviewCount   int64            `json:"review_count"`
	AverageRating float64          `json:"average_rating"`
	Reviews       []ReviewResponse `json:"reviews"`
}

// PaginatedPostResponse defines the structure for a paginated list of posts.
type PaginatedPostResponse struct {
	Data []PostResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

func newAuthorResponse(u models.User) AuthorResponse {
	return AuthorResponse{ID: u.ID, Nickname: u.Nickname}
}

func newPostResponse(p models.Post, commentsCount int64, liked bool) PostResponse {
	return PostResponse{
		ID:            p.ID,
		Title:         p.Title,
		Body:          p.Body,
		Author:        newAuthorResponse(p.Author),
		LikeCount:     p.LikeCount,
		CommentsCount: commentsCount,
		IsLiked:       liked,
		CreatedAt:     p.CreatedAt,
	}
}

func newCommentResponse(cm models.Comment, liked bool) CommentResponse {
	return CommentResponse{
		ID:        cm.ID,
		PostID:    cm.PostID,
		Body:      cm.Body,
		Author:    newAuthorResponse(cm.Author),
		LikeCount: cm.LikeCount,
		IsLiked:   liked,
		CreatedAt: cm.CreatedAt,
	}
}

func newReviewResponse(r models.Review, liked bool) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		GameID:    r.GameID,
		Rating:    r.Rating,
		Body:      r.Body,
		Author:    newAuthorResponse(r.Author),
		LikeCount: r.LikeCount,
		IsLiked:   liked,
		CreatedAt: r.CreatedAt,
	}
}

// likedTargets returns which targets of a like join model userID has liked.
func likedTargets(db *gorm.DB, model interface{}, column string, userID uint, ids []uint) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if userID == 0 || len(ids) == 0 {
		return set, nil
	}
	var liked []uint
	if err := db.Model(model).Where("user_id = ? AND "+column+" IN ?", userID, ids).Pluck(column, &liked).Error; err != nil {
		return nil, err
	}
	for _, id := range liked {
		set[id] = true
	}
	return set, nil
}

// endregion

// region --- Posts ---

// CreatePost godoc
// @Summary      Create a post
// @Tags         community
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body PostInput true "Post"
// @Success      201 {object} PostResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /posts [post]
func CreatePost(c *gin.Context) {
	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{AuthorID: auth.UserID(c), Title: input.Title, Body: input.Body}
	if err := database.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}
	database.DB.Preload("Author").First(&post, post.ID)

	c.JSON(http.StatusCreated, newPostResponse(post, 0, false))
}

// GetPosts godoc
// @Summary      List posts
// @Description  Retrieves posts newest first.
// @Tags         community
// @Produce      json
// @Param        page  query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Success      200 {object} PaginatedPostResponse
// @Router       /posts [get]
func GetPosts(c *gin.Context) {
	page, limit := pageParams(c)
	db := database.DB.WithContext(c.Request.Context())

	var totalItems int64
	if err := db.Model(&models.Post{}).Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count posts"})
		return
	}

	var posts []models.Post
	err := db.Preload("Author").
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posts"})
		return
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	liked, err := likedTargets(db, &models.PostLike{}, "post_id", auth.UserID(c), ids)
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	type commentCount struct {
		PostID uint
		Count  int64
	}
	var counts []commentCount
	if len(ids) > 0 {
		if err := db.Model(&models.Comment{}).Select("post_id, COUNT(*) AS count").Where("post_id IN ?", ids).Group("post_id").Scan(&counts).Error; err != nil {
			respondError(c, models.NewInternalError(err))
			return
		}
	}
	byPost := make(map[uint]int64, len(counts))
	for _, cc := range counts {
		byPost[cc.PostID] = cc.Count
	}

	data := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		data = append(data, newPostResponse(p, byPost[p.ID], liked[p.ID]))
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(data, totalItems, page, limit))
}

// GetPostByID godoc
// @Summary      Get a post
// @Tags         community
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      200 {object} PostResponse
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id} [get]
func GetPostByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	db := database.DB.WithContext(c.Request.Context())

	var post models.Post
	if err := db.Preload("Author").First(&post, id).Error; err != nil {
		respondError(c, notFoundOr(err, "Post", id))
		return
	}

	var comments int64
	db.Model(&models.Comment{}).Where("post_id = ?", id).Count(&comments)

	liked, err := likedTargets(db, &models.PostLike{}, "post_id", auth.UserID(c), []uint{id})
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, newPostResponse(post, comments, liked[id]))
}

// endregion

// region --- Comments ---

// CreateComment godoc
// @Summary      Comment on a post
// @Tags         community
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int          true "Post ID"
// @Param        input body CommentInput true "Comment"
// @Success      201 {object} CommentResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id}/comments [post]
func CreateComment(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := database.DB.Select("id").First(&post, postID).Error; err != nil {
		respondError(c, notFoundOr(err, "Post", postID))
		return
	}

	comment := models.Comment{PostID: postID, AuthorID: auth.UserID(c), Body: input.Body}
	if err := database.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}
	database.DB.Preload("Author").First(&comment, comment.ID)

	c.JSON(http.StatusCreated, newCommentResponse(comment, false))
}

// GetComments godoc
// @Summary      List a post's comments
// @Description  Retrieves comments oldest first.
// @Tags         community
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      200 {array} CommentResponse
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id}/comments [get]
func GetComments(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	db := database.DB.WithContext(c.Request.Context())

	var post models.Post
	if err := db.Select("id").First(&post, postID).Error; err != nil {
		respondError(c, notFoundOr(err, "Post", postID))
		return
	}

	var comments []models.Comment
	if err := db.Preload("Author").Where("post_id = ?", postID).Order("created_at").Order("id").Find(&comments).Error; err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	ids := make([]uint, len(comments))
	for i, cm := range comments {
		ids[i] = cm.ID
	}
	liked, err := likedTargets(db, &models.CommentLike{}, "comment_id", auth.UserID(c), ids)
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	response := make([]CommentResponse, 0, len(comments))
	for _, cm := range comments {
		response = append(response, newCommentResponse(cm, liked[cm.ID]))
	}
	c.JSON(http.StatusOK, response)
}

// endregion

// region --- Reviews ---

// CreateReview godoc
// @Summary      Review a game
// @Description  Rates an owned game from 1 to 5. Each buyer reviews a game once.
// @Tags         community
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int         true "Game ID"
// @Param        input body ReviewInput true "Review"
// @Success      201 {object} ReviewResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Only buyers can review"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      409 {object} ErrorResponse "Already reviewed"
// @Router       /games/{id}/reviews [post]
func CreateReview(c *gin.Context) {
	userID := auth.UserID(c)
	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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
	if owned == 0 {
		respondError(c, models.NewForbiddenError("Only buyers can review this game"))
		return
	}

	review := models.Review{GameID: gameID, AuthorID: userID, Rating: input.Rating, Body: input.Body}
	if err := db.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, models.NewConflictError("You have already reviewed this game", err))
			return
		}
		respondError(c, models.NewInternalError(err))
		return
	}
	db.Preload("Author").First(&review, review.ID)

	c.JSON(http.StatusCreated, newReviewResponse(review, false))
}

// GetGameReviews godoc
// @Summary      List a game's reviews
// @Description  Retrieves a game's reviews, most liked first, with the review count and average rating.
// @Tags         community
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} GameReviewsResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/reviews [get]
func GetGameReviews(c *gin.Context) {
	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}
	db := database.DB.WithContext(c.Request.Context())

	var game models.Game
	if err := db.Select("id").First(&game, gameID).Error; err != nil {
		respondError(c, notFoundOr(err, "Game", gameID))
		return
	}

	var reviews []models.Review
	if err := db.Preload("Author").Where("game_id = ?", gameID).Order("like_count DESC").Order("id").Find(&reviews).Error; err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	ids := make([]uint, len(reviews))
	var sum int
	for i, r := range reviews {
		ids[i] = r.ID
		sum += r.Rating
	}
	liked, err := likedTargets(db, &models.ReviewLike{}, "review_id", auth.UserID(c), ids)
	if err != nil {
		respondError(c, models.NewInternalError(err))
		return
	}

	response := GameReviewsResponse{
		GameID:      gameID,
		ReviewCount: int64(len(reviews)),
		Reviews:     make([]ReviewResponse, 0, len(reviews)),
	}
	if len(reviews) > 0 {
		response.AverageRating = float64(sum) / float64(len(reviews))
	}
	for _, r := range reviews {
		response.Reviews = append(response.Reviews, newReviewResponse(r, liked[r.ID]))
	}
	c.JSON(http.StatusOK, response)
}

// endregion
