package handler

import (
	"gamestore/backend/internal/auth"
	"gamestore/backend/internal/likes"
	"gamestore/backend/internal/payment"
	"gamestore/backend/internal/recommend"

	"github.com/gin-gonic/gin"
)

// Services are the collaborators the route handlers close over.
type Services struct {
	Likes         *likes.Service
	Recommend     *recommend.Service
	Payments      payment.Processor
	CategoryLimit int
}

// RegisterRoutes mounts the /api/v1 routes on router.
func RegisterRoutes(router *gin.Engine, s Services) {
	if s.Payments == nil {
		s.Payments = payment.Simulated{}
	}
	requireAuth := auth.AuthMiddleware()

	// Every API route sees the caller when a token is sent.
	apiV1 := router.Group("/api/v1", auth.OptionalAuthMiddleware())
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", RegisterUser)
			authRoutes.POST("/login", LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users", requireAuth)
		{
			userRoutes.GET("", SearchUsers) // Must be before /:id
			userRoutes.GET("/me", GetMe)
			userRoutes.GET("/me/wishlist", GetWishlist)
			userRoutes.GET("/me/library", GetLibrary)
			userRoutes.GET("/me/favorite-tags", GetFavoriteTags)
			userRoutes.GET("/:id", GetUserByID)
		}

		// Catalog routes (public)
		gameRoutes := apiV1.Group("/games")
		{
			gameRoutes.GET("", GetGames)
			gameRoutes.GET("/:id", GetGameByID)
			gameRoutes.GET("/:id/events", StreamGameEvents)
			gameRoutes.GET("/:id/reviews", GetGameReviews)
			gameRoutes.POST("/:id/reviews", requireAuth, CreateReview)
			gameRoutes.POST("/:id/wishlist", requireAuth, ToggleWishlist)
			gameRoutes.POST("/:id/like", ToggleLike(s.Likes, likes.KindGame))
		}

		tagRoutes := apiV1.Group("/tags")
		{
			tagRoutes.GET("", GetTags)
			tagRoutes.POST("/:id/favorite", requireAuth, ToggleFavoriteTag)
		}

		// Cart routes (protected)
		cartRoutes := apiV1.Group("/cart", requireAuth)
		{
			cartRoutes.GET("", GetCart)
			cartRoutes.POST("/checkout", Checkout(s.Payments))
			cartRoutes.POST("/:gameID", AddToCart)
			cartRoutes.DELETE("/:gameID", RemoveFromCart)
		}

		// Community routes. Like toggles stay on optional auth so an
		// anonymous like is reported by the toggle itself.
		postRoutes := apiV1.Group("/posts")
		{
			postRoutes.GET("", GetPosts)
			postRoutes.POST("", requireAuth, CreatePost)
			postRoutes.GET("/:id", GetPostByID)
			postRoutes.GET("/:id/comments", GetComments)
			postRoutes.POST("/:id/comments", requireAuth, CreateComment)
			postRoutes.POST("/:id/like", ToggleLike(s.Likes, likes.KindPost))
		}
		apiV1.POST("/comments/:id/like", ToggleLike(s.Likes, likes.KindComment))
		apiV1.POST("/reviews/:id/like", ToggleLike(s.Likes, likes.KindReview))

		// Recommendation routes
		recommendRoutes := apiV1.Group("/recommendations")
		{
			recommendRoutes.GET("", GetRecommendations(s.Recommend))
			recommendRoutes.GET("/categories", GetRecommendationCategories(s.Recommend, s.CategoryLimit))
		}

		// Developer routes (protected by auth and role check)
		developerRoutes := apiV1.Group("/developer", requireAuth, auth.DeveloperMiddleware())
		{
			developerRoutes.POST("/games", CreateGame)
			developerRoutes.PUT("/games/:id", UpdateGame)
			developerRoutes.DELETE("/games/:id", DeleteGame)
			developerRoutes.GET("/analytics", GetDeveloperAnalytics)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin", requireAuth, auth.AdminMiddleware())
		{
			// Tags CRUD
			tags := adminRoutes.Group("/tags")
			{
				tags.POST("", CreateTag)
				tags.GET("", GetTags)
				tags.PUT("/:id", UpdateTag)
				tags.DELETE("/:id", DeleteTag)
			}

			adminRoutes.POST("/likes/reconcile", ReconcileLikes(s.Likes))
		}
	}
}
