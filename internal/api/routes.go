package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atleta/training-diary/internal/domain"
	"atleta/training-diary/internal/service"
)

// SetupRoutes wires every handler into the gin engine.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	periodService service.PeriodService,
	sessionService service.SessionService,
	workloadService service.WorkloadService,
	exportService service.ExportService,
	coachService service.CoachService,
) {
	authHandler := NewAuthHandler(authService)
	periodHandler := NewPeriodHandler(periodService)
	sessionHandler := NewSessionHandler(sessionService)
	workloadHandler := NewWorkloadHandler(workloadService, exportService)
	coachHandler := NewCoachHandler(coachService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
		})

		// --- Periodization planning (athletes only) ---
		periodGroup := protected.Group("/periods")
		periodGroup.Use(RoleMiddleware(domain.RoleAthlete))
		{
			periodGroup.POST("", periodHandler.CreatePeriod)
			periodGroup.GET("", periodHandler.ListPeriods)
			periodGroup.PATCH("/:id", periodHandler.UpdatePeriod)
			periodGroup.DELETE("/:id", periodHandler.DeletePeriod)
			periodGroup.POST("/:id/generate-weeks", periodHandler.GenerateWeeks)
			periodGroup.POST("/assign-tag", periodHandler.AssignTag)
		}

		// --- Diary entries (athletes only) ---
		sessionGroup := protected.Group("/sessions")
		sessionGroup.Use(RoleMiddleware(domain.RoleAthlete))
		{
			sessionGroup.POST("", sessionHandler.LogSession)
			sessionGroup.GET("", sessionHandler.ListSessions)
			sessionGroup.DELETE("/:id", sessionHandler.DeleteSession)
		}

		// --- Workload monitoring (athletes only) ---
		workloadGroup := protected.Group("/workload")
		workloadGroup.Use(RoleMiddleware(domain.RoleAthlete))
		{
			workloadGroup.GET("", workloadHandler.GetMetrics)
			workloadGroup.GET("/weekly", workloadHandler.GetWeeklyTotals)
			workloadGroup.POST("/export", workloadHandler.ExportReport)
		}

		// --- Coach views (coaches only) ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachGroup.POST("/athletes", coachHandler.LinkAthlete)
			coachGroup.GET("/athletes", coachHandler.GetLinkedAthletes)
			coachGroup.GET("/athletes/:id/workload", coachHandler.GetAthleteWorkload)
		}
	}
}
