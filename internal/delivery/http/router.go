package http

import (
	"time"

	"LiqLearns/internal/delivery/http/controllers"
	"LiqLearns/internal/delivery/http/controllers/middleware"
	"LiqLearns/internal/delivery/http/controllers/presentation"
	"LiqLearns/internal/models"
	"LiqLearns/internal/service"
	"LiqLearns/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{"http://localhost:5173"}

func InitRoutes(l logger.Log, u service.Collection, origins []string, checks map[string]controllers.HealthCheck) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if len(origins) == 0 {
		origins = defaultOrigins
	}
	config := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(config))

	statusController := controllers.NewStatusHandler(checks)
	authMiddleware := middleware.NewAuthMiddlewareProvider(l, u.AuthService)
	uploadController := presentation.NewUploadHandler(l, u.UploadService)
	queryController := presentation.NewQueryHandler(l, u.QueryService)
	authoringController := presentation.NewAuthoringHandler(l, u.AuthoringService)
	playbackController := presentation.NewPlaybackHandler(l, u.PlaybackService, origins)

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)
		v1.GET("/media/:key", queryController.Media)

		presentations := v1.Group("/presentations")
		{
			presentations.GET("/search", queryController.Search)
			presentations.GET("/:presentation_id", queryController.PresentationByID)
			presentations.GET("/:presentation_id/slides/:index/render", queryController.RenderSlide)
			presentations.GET("/:presentation_id/resources", authoringController.Resources)

			author := presentations.Group("", authMiddleware.AuthMiddleware, middleware.RequireRoles(models.AuthorRole))
			{
				author.POST("", uploadController.UploadPresentation)
				author.GET("/mine", queryController.MyPresentations)
				author.POST("/:presentation_id/resources", authoringController.AddResource)
				author.DELETE("/:presentation_id/resources/:resource_id", authoringController.DeleteResource)
				author.POST("/:presentation_id/lesson-breaks", authoringController.AddLessonBreak)
				author.DELETE("/:presentation_id/lesson-breaks/:break_id", authoringController.DeleteLessonBreak)
			}

			learner := presentations.Group("", authMiddleware.AuthMiddleware, middleware.RequireRoles(models.LearnerRole, models.AuthorRole))
			{
				learner.GET("/:presentation_id/progress", queryController.Progress)
				learner.GET("/:presentation_id/play", playbackController.Play)
			}
		}
	}
	return r
}
