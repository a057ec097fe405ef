package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/internal/handlers"
	"github.com/taskforge-dev/taskforge/internal/middleware"
	"github.com/taskforge-dev/taskforge/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/projects/:id", middleware.AuthMiddleware(), handlers.ProjectFeed)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", middleware.AuthMiddleware(), handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		// Signup is the only entity endpoint open without a token.
		api.POST("/users", handlers.CreateUser)

		users := api.Group("/users", middleware.AuthMiddleware())
		{
			users.GET("", handlers.ListUsers)
			users.GET("/:id", handlers.GetUser)
			users.PATCH("/:id", handlers.UpdateUser)
			users.PUT("/:id", handlers.UpdateUser)
			users.DELETE("/:id", handlers.DeleteUser)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:id", handlers.GetProject)
			projects.PATCH("/:id", handlers.UpdateProject)
			projects.PUT("/:id", handlers.UpdateProject)
			projects.DELETE("/:id", handlers.DeleteProject)
		}

		contributors := api.Group("/contributors", middleware.AuthMiddleware())
		{
			contributors.POST("", handlers.CreateContributor)
			contributors.GET("", handlers.ListContributors)
			contributors.DELETE("/:id", handlers.DeleteContributor)
		}

		issues := api.Group("/issues", middleware.AuthMiddleware())
		{
			issues.POST("", handlers.CreateIssue)
			issues.GET("", handlers.ListIssues)
			issues.GET("/:id", handlers.GetIssue)
			issues.PATCH("/:id", handlers.UpdateIssue)
			issues.PUT("/:id", handlers.UpdateIssue)
			issues.DELETE("/:id", handlers.DeleteIssue)
		}

		comments := api.Group("/comments", middleware.AuthMiddleware())
		{
			comments.POST("", handlers.CreateComment)
			comments.GET("", handlers.ListComments)
			comments.GET("/:id", handlers.GetComment)
			comments.PATCH("/:id", handlers.UpdateComment)
			comments.PUT("/:id", handlers.UpdateComment)
			comments.DELETE("/:id", handlers.DeleteComment)
		}
	}

	return r
}
