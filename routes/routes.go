package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mymind/config"
	"mymind/handlers"
	"mymind/middleware"
)

func Setup(h *handlers.Handler, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Blog API is running successfully",
			"endpoints": gin.H{
				"user": gin.H{
					"signup": "POST /api/v1/signup",
					"login":  "POST /api/v1/login",
				},
				"posts": gin.H{
					"create":     "POST /api/v1/create-post",
					"getAll":     "GET /api/v1/get-all-post",
					"getOne":     "GET /api/v1/get-post/:id",
					"getMyPosts": "GET /api/v1/get-my-post",
					"edit":       "PUT /api/v1/edit-my-post/:id",
					"delete":     "DELETE /api/v1/delete-my-post/:id",
					"comment":    "PUT /api/v1/comment-post",
					"like":       "PUT /api/v1/like-post",
					"trending":   "GET /api/v1/trending-post",
				},
			},
		})
	})

	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to mymind")
	})

	api := router.Group("/api/v1")

	api.POST("/signup", h.Signup)
	api.POST("/login", h.Login)
	api.GET("/get-all-post", h.GetAllPosts)
	api.GET("/get-post/:id", h.GetPost)
	api.GET("/trending-post", h.TrendingPosts)

	auth := api.Group("")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	auth.POST("/create-post", h.CreatePost)
	auth.GET("/get-my-post", h.GetMyPosts)
	auth.PUT("/edit-my-post/:id", h.EditMyPost)
	auth.DELETE("/delete-my-post/:id", h.DeleteMyPost)
	auth.PUT("/comment-post", h.CommentPost)
	auth.PUT("/like-post", h.LikePost)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Route " + c.Request.URL.Path + " not found",
		})
	})

	return router
}
