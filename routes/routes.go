package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/vnkhanh/roompush/controllers"
	"github.com/vnkhanh/roompush/docs"
	"github.com/vnkhanh/roompush/middleware"
	"github.com/vnkhanh/roompush/utils"
)

// Deps is what the router needs beyond the handlers themselves.
type Deps struct {
	Handler     *controllers.Handler
	AuthLimiter *middleware.IPRateLimiter
	CORSOrigins []string
}

// NewRouter builds the engine with the global middleware and every route.
func NewRouter(d Deps) *gin.Engine {
	utils.UseJSONFieldNames()

	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Recovery())
	r.Use(cors.New(corsConfig(d.CORSOrigins)))
	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	SetupRoutes(r, d)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	cfg.AllowWildcard = true
	return cfg
}

func SetupRoutes(r *gin.Engine, d Deps) {
	h := d.Handler
	auth := middleware.AuthJWT(h.Tokens)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/health", h.HealthCheck)

	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			limited := users.Group("")
			if d.AuthLimiter != nil {
				limited.Use(middleware.RateLimitByIP(d.AuthLimiter))
			}
			limited.POST("/register", h.Register)
			limited.POST("/login", h.Login)

			users.GET("/vapid-public-key", h.PublicKey)
			users.GET("/validate-token", auth, h.ValidateToken)
			users.POST("/subscribe", auth, h.Subscribe)
			users.DELETE("/subscribe", auth, h.Unsubscribe)
		}

		rooms := api.Group("/rooms")
		rooms.Use(auth)
		{
			rooms.POST("/create", h.CreateRoom)
			rooms.POST("/join/:roomId", h.JoinRoom)
			rooms.GET("", h.ListRooms)
			rooms.GET("/user/:userId", h.ListUserRooms)
			rooms.POST("/send-notification/:roomId", h.SendRoomNotification)
		}

		notifications := api.Group("/notifications")
		{
			notifications.POST("/send/:roomId", auth, h.SendNotification)
			notifications.GET("/stream", middleware.AuthJWTQuery(h.Tokens), h.Stream)
		}
	}
}
