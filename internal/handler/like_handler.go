package handler

import (
	"net/http"
	"strconv"

	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/likes"
	"gamestore/backend/internal/logging"
	"gamestore/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// LikeResponse is returned by every like toggle endpoint.
type LikeResponse struct {
	Success   bool  `json:"success" example:"true"`
	Liked     bool  `json:"liked" example:"true"`
	LikeCount int64 `json:"likeCount" example:"12"`
}

// LikeErrorResponse is returned when a toggle fails.
type LikeErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"You must be logged in to like"`
}

// ToggleLike godoc
// @Summary      Like or unlike content
// @Description  Flips the caller's like on a post, comment, review or game and returns the new like state and count.
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        kind path string true "Target kind" Enums(posts, comments, reviews, games)
// @Param        id   path int    true "Target ID"
// @Success      200 {object} LikeResponse
// @Failure      400 {object} LikeErrorResponse
// @Failure      401 {object} LikeErrorResponse
// @Failure      404 {object} LikeErrorResponse
// @Failure      409 {object} LikeErrorResponse
// @Failure      500 {object} LikeErrorResponse
// @Router       /{kind}/{id}/like [post]
func ToggleLike(svc *likes.Service, kind likes.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			respondLikeError(c, models.NewInvalidArgumentError("Invalid ID"))
			return
		}

		result, err := svc.Toggle(c.Request.Context(), kind, id, auth.UserID(c))
		if err != nil {
			respondLikeError(c, err)
			return
		}

		c.JSON(http.StatusOK, LikeResponse{Success: true, Liked: result.Liked, LikeCount: result.LikeCount})
	}
}

func respondLikeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("like toggle failed")
	}
	c.JSON(status, LikeErrorResponse{Success: false, Message: errorMessage(err)})
}
