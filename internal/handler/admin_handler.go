package handler

import (
	"net/http"

	"gamestore/backend/internal/likes"
	"gamestore/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ReconcileLikes godoc
// @Summary      Repair like counters
// @Description  Recomputes like counters from like rows for one kind, or every kind when none is given, and reports how many targets were repaired.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        kind query string false "Target kind" Enums(post, comment, review, game)
// @Success      200 {array}  likes.Repair
// @Failure      400 {object} ErrorResponse "Unknown kind"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Router       /admin/likes/reconcile [post]
func ReconcileLikes(svc *likes.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		raw := c.Query("kind")
		if raw == "" {
			repairs, err := svc.ReconcileAll(ctx)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, repairs)
			return
		}

		kind, ok := likes.ParseKind(raw)
		if !ok {
			respondError(c, models.NewInvalidArgumentError("Unknown like target "+raw))
			return
		}
		repair, err := svc.Reconcile(ctx, kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, []likes.Repair{repair})
	}
}
