// routes/routes.go
package routes

import (
	"lifeline/config"
	"lifeline/controllers"
	"lifeline/middleware"
	"lifeline/services"
	"lifeline/utils"
	"lifeline/websocket"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Cases     *services.CaseService
	Places    *services.PlacesService
	Hospitals *services.HospitalService
	Profiles  *services.ProfileService
	SMS       *services.SMSService
	Symptoms  *services.SymptomService
}

// Controllers initialization
type Controllers struct {
	Emergency *controllers.EmergencyController
	Place     *controllers.PlaceController
	Hospital  *controllers.HospitalController
	Message   *controllers.MessageController
	Profile   *controllers.ProfileController
	Symptom   *controllers.SymptomController
	WebSocket *controllers.WebSocketController
	Health    *controllers.HealthController
}

// SetupRoutes initializes all application routes
func SetupRoutes(cfg *config.Config, svcs *Services, hub *websocket.Hub, redisClient *redis.Client, checks map[string]controllers.HealthCheck) *gin.Engine {
	router := gin.New()

	ctrls := initializeControllers(svcs, hub, checks)

	var jwtService *utils.JWTService
	if cfg.AdminJWTSecret != "" {
		jwtService = utils.NewJWTService(cfg.AdminJWTSecret)
	}
	guard := middleware.NewAdminGuard(jwtService)

	setupGlobalMiddleware(router, cfg, redisClient)

	router.GET("/health", ctrls.Health.Health)

	// Paths the web client already calls.
	SetupEmergencyRoutes(router.Group(""), ctrls.Emergency, guard)
	SetupMessageRoutes(router.Group(""), ctrls.Message)
	SetupPlaceRoutes(router.Group("/places"), ctrls.Place)
	SetupHospitalRoutes(router.Group("/hospital"), ctrls.Hospital)

	api := router.Group("/api")
	{
		SetupPlaceRoutes(api.Group("/places"), ctrls.Place)
		SetupHospitalRoutes(api.Group("/hospitals"), ctrls.Hospital)
		SetupProfileRoutes(api.Group("/profile"), ctrls.Profile)
		SetupSymptomRoutes(api.Group("/symptoms"), ctrls.Symptom)
	}

	SetupWebSocketRoutes(router.Group("/ws"), ctrls.WebSocket, guard)

	router.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, "Route")
	})

	return router
}

func initializeControllers(svcs *Services, hub *websocket.Hub, checks map[string]controllers.HealthCheck) *Controllers {
	return &Controllers{
		Emergency: controllers.NewEmergencyController(svcs.Cases),
		Place:     controllers.NewPlaceController(svcs.Places),
		Hospital:  controllers.NewHospitalController(svcs.Hospitals),
		Message:   controllers.NewMessageController(svcs.SMS),
		Profile:   controllers.NewProfileController(svcs.Profiles),
		Symptom:   controllers.NewSymptomController(svcs.Symptoms),
		WebSocket: controllers.NewWebSocketController(hub),
		Health:    controllers.NewHealthController(Version, checks),
	}
}

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Global middleware setup
func setupGlobalMiddleware(router *gin.Engine, cfg *config.Config, redisClient *redis.Client) {
	router.Use(middleware.DefaultLoggerMiddleware(cfg.Environment))
	router.Use(middleware.NewErrorHandler(cfg.Environment, logrus.StandardLogger()).Handle())

	router.Use(middleware.CORS(middleware.NewCORSConfig(cfg.AllowedOrigins)))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimitRequest, time.Duration(cfg.RateLimitWindow)*time.Minute))
}
