package router

import (
	"net/http"

	"contentdesk/internal/handlers"
	"contentdesk/internal/middleware"
	"contentdesk/internal/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Posts     *services.PostService
	Analytics *services.AnalyticsService
	DB        handlers.Pinger
}

// New builds the engine with the standard middleware chain and all routes.
// RequestLogger wraps Recovery so a panicking request is still logged.
func New(d Deps, corsOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Recovery(), middleware.CORS(corsOrigin))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.NoRoute(func(c *gin.Context) {
		handlers.RenderError(c, http.StatusNotFound, "route not found")
	})
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	postHandler := handlers.NewPostHandler(d.Posts)
	dashboardHandler := handlers.NewDashboardHandler(d.Analytics)
	healthHandler := handlers.NewHealthHandler(d.DB)

	r.GET("/healthz", healthHandler.Check)

	posts := r.Group("/api/posts")
	{
		// listing and queries
		posts.GET("", postHandler.ListPublished)
		posts.GET("/drafts", postHandler.ListDrafts)
		posts.GET("/review", postHandler.ListForReview)
		posts.GET("/search", postHandler.Search)
		posts.GET("/by-author", postHandler.ByAuthor)
		posts.GET("/by-status", postHandler.ByStatus)
		// single post and status transitions
		posts.POST("/create", postHandler.Create)
		posts.GET("/:id", postHandler.Detail)
		posts.PUT("/:id", postHandler.Update)
		posts.DELETE("/:id", postHandler.Delete)
		posts.PUT("/:id/publish", postHandler.Publish)
		posts.PUT("/:id/review", postHandler.SubmitForReview)
		// likes, comments and feedback
		posts.PUT("/:id/like", postHandler.Like)
		posts.POST("/:id/comment", postHandler.AddComment)
		posts.GET("/:id/comments", postHandler.Comments)
		posts.POST("/:id/feedback", postHandler.AddFeedback)
		posts.GET("/:id/feedback", postHandler.Feedback)
		posts.GET("/:id/preview", postHandler.Preview)
	}

	dashboard := r.Group("/api/dashboard")
	{
		dashboard.GET("/analytics", dashboardHandler.Analytics)
		dashboard.GET("/latest", dashboardHandler.Latest)
		dashboard.POST("/snapshot", dashboardHandler.Snapshot)
	}
}
