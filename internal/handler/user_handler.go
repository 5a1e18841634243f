package handler

import (
	"errors"
	"net/http"
	"strings"

	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/database"
	"gamestore/backend/internal/models"
	"gamestore/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Nickname  string `json:"nickname" binding:"required" example:"testuser"`
	Email     string `json:"email" binding:"required,email" example:"test@example.com"`
	Password  string `json:"password" binding:"required,min=8" example:"password123"`
	Developer bool   `json:"developer" example:"false"` // register a publishing account
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"testuser"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// PublicUserResponse defines the structure for a user's public profile.
type PublicUserResponse struct {
	ID             uint   `json:"id" example:"1"`
	Nickname       string `json:"nickname" example:"testuser"`
	Role           string `json:"role" example:"developer"`
	PublishedGames int64  `json:"published_games"`
	ReviewsCount   int64  `json:"reviews_count"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID            uint   `json:"id" example:"1"`
	Nickname      string `json:"nickname" example:"testuser"`
	Email         string `json:"email" example:"test@example.com"`
	Role          string `json:"role" example:"user"`
	OwnedGames    int64  `json:"owned_games"`
	WishlistCount int64  `json:"wishlist_count"`
	CartCount     int64  `json:"cart_count"`
}

// PaginatedUserResponse defines the structure for a paginated list of users.
type PaginatedUserResponse struct {
	Data []PublicUserResponse `json:"data"`
	Meta PaginationMeta       `json:"meta"`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token. Set developer to open a publishing account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("nickname = ? OR email = ?", input.Nickname, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Nickname or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	role := models.RoleUser
	if input.Developer {
		role = models.RoleDeveloper
	}

	user := models.User{
		Nickname:     input.Nickname,
		Email:        strings.ToLower(input.Email),
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Nickname or email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with nickname/email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("nickname = ? OR email = ?", input.Login, strings.ToLower(input.Login)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// endregion

// region --- User Handlers ---

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for users by nickname with pagination. The caller is left out of the results.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for nickname"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedUserResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users [get]
func SearchUsers(c *gin.Context) {
	viewerID := auth.UserID(c)
	page, limit := pageParams(c)

	query := database.DB.Model(&models.User{}).Where("id <> ?", viewerID)
	if q := c.Query("q"); q != "" {
		query = query.Where("LOWER(nickname) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	users, err := Paginate[models.User](query.Order("id"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	data := make([]PublicUserResponse, 0, len(users.Data))
	for _, user := range users.Data {
		data = append(data, buildPublicUserResponse(user))
	}

	c.JSON(http.StatusOK, PaginatedUserResponse{Data: data, Meta: users.Meta})
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Description  Retrieves the public profile for a specific user by their ID.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func GetUserByID(c *gin.Context) {
	targetUserID, ok := parseID(c, "id")
	if !ok {
		return
	}

	// If target is the same as viewer, redirect to /me
	if auth.UserID(c) == targetUserID {
		GetMe(c)
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, targetUserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildPublicUserResponse(targetUser))
}

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	var user models.User
	if err := database.DB.First(&user, auth.UserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// endregion

// region --- Helpers ---

func buildPublicUserResponse(user models.User) PublicUserResponse {
	// These counts can be optimized later if performance is an issue
	var publishedGames, reviewsCount int64
	database.DB.Model(&models.Game{}).Where("developer_id = ?", user.ID).Count(&publishedGames)
	database.DB.Model(&models.Review{}).Where("author_id = ?", user.ID).Count(&reviewsCount)

	return PublicUserResponse{
		ID:             user.ID,
		Nickname:       user.Nickname,
		Role:           user.Role,
		PublishedGames: publishedGames,
		ReviewsCount:   reviewsCount,
	}
}

func buildPrivateUserResponse(user models.User) PrivateUserResponse {
	var ownedGames, wishlistCount, cartCount int64
	database.DB.Model(&models.Purchase{}).Where("user_id = ?", user.ID).Count(&ownedGames)
	database.DB.Model(&models.WishlistEntry{}).Where("user_id = ?", user.ID).Count(&wishlistCount)
	database.DB.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount)

	return PrivateUserResponse{
		ID:            user.ID,
		Nickname:      user.Nickname,
		Email:         user.Email,
		Role:          user.Role,
		OwnedGames:    ownedGames,
		WishlistCount: wishlistCount,
		CartCount:     cartCount,
	}
}

// endregion
