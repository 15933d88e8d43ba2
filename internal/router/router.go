// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chainacademy/coursegate/internal/config"
	"github.com/chainacademy/coursegate/internal/handlers"
	"github.com/chainacademy/coursegate/internal/middleware"
	"github.com/chainacademy/coursegate/internal/services"
	"github.com/chainacademy/coursegate/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	clock := services.SystemClock()

	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	identityService := services.NewIdentityService(db)
	ownershipService := services.NewOwnershipService(db, clock)
	delegationService := services.NewDelegationService(db, clock)
	requestService := services.NewRequestService(db, identityService, ownershipService,
		delegationService, notificationService, clock)
	accessService := services.NewAccessService(db, clock)
	authService := services.NewAuthService(db, cfg, identityService)
	courseService := services.NewCourseService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	courseHandler := handlers.NewCourseHandler(courseService)
	ownershipHandler := handlers.NewOwnershipHandler(ownershipService)
	delegationHandler := handlers.NewDelegationHandler(delegationService, ownershipService, clock)
	requestHandler := handlers.NewRequestHandler(requestService)
	accessHandler := handlers.NewAccessHandler(accessService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/wallet", authHandler.ConnectWallet)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Course routes
		courses := v1.Group("/courses")
		{
			courses.GET("", courseHandler.GetCourses)
			courses.GET("/mine", middleware.AuthRequired(), courseHandler.GetMyCourses)
			courses.GET("/:id", courseHandler.GetCourse)
			courses.GET("/:id/access", middleware.OptionalAuth(), accessHandler.CheckAccess)

			// Authenticated routes
			protected := courses.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", middleware.CreatorRequired(), courseHandler.CreateCourse)
				protected.PUT("/:id", courseHandler.UpdateCourse)
				protected.PUT("/:id/publish", courseHandler.SetPublished)
				protected.POST("/:id/mint", middleware.MintRateLimit(), ownershipHandler.MintOwnership)
			}
		}

		// Ownership routes
		ownerships := v1.Group("/ownerships")
		ownerships.Use(middleware.AuthRequired())
		{
			ownerships.GET("", ownershipHandler.GetMyOwnerships)
		}

		// Delegated access routes
		access := v1.Group("/access")
		access.Use(middleware.AuthRequired())
		{
			access.POST("/share", delegationHandler.ShareAccess)
			access.PUT("/:id/revoke", delegationHandler.RevokeAccess)
			access.GET("/mine", delegationHandler.GetMyAccess)
		}

		// Access request routes
		requests := v1.Group("/requests")
		requests.Use(middleware.AuthRequired())
		{
			requests.POST("", requestHandler.SubmitRequest)
			requests.GET("/sent", requestHandler.GetSentRequests)
			requests.GET("/received", requestHandler.GetReceivedRequests)
			requests.GET("/course/:id", requestHandler.GetRequestsByCourse)
			requests.PUT("/:id/approve", requestHandler.ApproveRequest)
			requests.PUT("/:id/reject", requestHandler.RejectRequest)
		}
	}

	return r
}
