package server

import (
	"net/http"
	"strings"
	"time"

	"anoa.com/confessionwall/internal/config"
	"anoa.com/confessionwall/internal/handler"
	"anoa.com/confessionwall/internal/middleware"
	"anoa.com/confessionwall/internal/repository"
	"anoa.com/confessionwall/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	limiter     *service.RateLimiter
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	confessionRepo := repository.NewConfessionRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	contentValidator := service.NewContentValidator()
	limiter := service.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)

	confessionSvc := service.NewConfessionService(confessionRepo, reactionRepo, contentValidator, redisClient)
	confessionHandler := handler.NewConfessionHandler(confessionSvc, cfg.FeedLimit)

	reactionSvc := service.NewReactionService(reactionRepo)
	reactionHandler := handler.NewReactionHandler(reactionSvc)

	feedHandler := handler.NewFeedHandler(redisClient)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		// Only anonymous submissions are rate limited; reaction toggles
		// must stay fast for repeated clicks.
		api.POST("/confessions", middleware.RateLimit(limiter), confessionHandler.CreateConfession)
		api.GET("/confessions", confessionHandler.GetConfessions)
		api.GET("/confessions/ws", feedHandler.HandleWebSocket)

		api.POST("/reactions", reactionHandler.ToggleReaction)
		api.DELETE("/reactions", reactionHandler.RemoveReaction)
		api.GET("/reactions", reactionHandler.GetReactions)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		limiter:     limiter,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
