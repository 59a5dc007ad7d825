package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hrscreen/resume-screener/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, corsOrigins []string) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(corsOrigins))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "resume-screener-api",
		})
	})

	screeningHandler := handler.NewScreeningHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		screenings := v1.Group("/screenings")
		{
			// POST /api/v1/screenings - Submit a JD plus resume batch
			screenings.POST("", screeningHandler.CreateScreening)

			// GET /api/v1/screenings - List screening jobs with pagination
			screenings.GET("", screeningHandler.ListScreenings)

			// GET /api/v1/screenings/:job_id - Poll status and results
			screenings.GET("/:job_id", screeningHandler.GetScreening)
		}
	}

	return r
}
