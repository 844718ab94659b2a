package server

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/selera-app/backend/config"
	"github.com/selera-app/backend/internal/api"
	"github.com/selera-app/backend/internal/cache"
	"github.com/selera-app/backend/internal/database"
	"github.com/selera-app/backend/internal/middleware"
	"github.com/selera-app/backend/internal/service"
)

// Server wires services, middleware and routes into one HTTP server.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
	chat   *service.ChatService
}

// New builds the full application. redisClient and s3cfg may be nil; the
// app then runs without caching, rate limits and image uploads.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3cfg *config.S3Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:" + cfg.ServerPort},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.CSRFHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		// Instructions are sanitized with bluemonday before they reach a
		// template, so their markup renders instead of escaping.
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	})
	router.LoadHTMLGlob("templates/*.html")
	router.Static("/static", "./static")

	// Services
	c := cache.New(redisClient)
	hub := service.NewChatHub()

	authService := service.NewAuthService(db, cfg.SessionSecret)
	catalogService := service.NewCatalogService(cfg, c)
	weatherService := service.NewWeatherService(cfg, c)
	llmService := service.NewLLMService(cfg)
	recipeService := service.NewRecipeService(db, catalogService)
	recommendService := service.NewRecommendService(catalogService, recipeService, llmService)
	searchService := service.NewSearchService(db)
	interactionService := service.NewInteractionService(db)
	commentService := service.NewCommentService(db)
	chatService := service.NewChatService(db, hub, time.Duration(cfg.ChatRetentionHours)*time.Hour)
	imageService := service.NewImageService(s3cfg)

	// Handlers
	pageHandler := api.NewPageHandler(cfg, catalogService, weatherService, recommendService,
		searchService, recipeService, interactionService, commentService, chatService, imageService)
	authHandler := api.NewAuthHandler(authService)
	interactHandler := api.NewInteractHandler(interactionService, commentService)
	weatherHandler := api.NewWeatherHandler(weatherService, recommendService, searchService)
	chatHandler := api.NewChatHandler(chatService)

	var interactLimiter *middleware.RateLimiter
	if redisClient != nil {
		router.Use(middleware.NewIPRateLimiter(redisClient).Middleware())
		interactLimiter = middleware.NewInteractionRateLimiter(redisClient)
	}

	root := router.Group("", middleware.CSRF(), middleware.OptionalAuth(authService))
	pageHandler.RegisterRoutes(root, authService)
	authHandler.RegisterRoutes(root)
	interactHandler.RegisterRoutes(root, authService, interactLimiter)
	weatherHandler.RegisterRoutes(root)
	chatHandler.RegisterRoutes(router.Group(""), authService)

	s := &Server{
		cfg:    cfg,
		router: router,
		db:     db,
		redis:  redisClient,
		chat:   chatService,
	}
	router.GET("/healthz", s.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Chat exposes the chat service so main can run the retention sweeper.
func (s *Server) Chat() *service.ChatService {
	return s.chat
}

// Start begins serving and blocks until the listener fails or is closed.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("addr", s.http.Addr).Msg("server listening")

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	dbStatus := "ok"
	if err := database.HealthCheck(ctx, s.db); err != nil {
		dbStatus = err.Error()
		status = http.StatusServiceUnavailable
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "ok"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"database": dbStatus,
		"redis":    redisStatus,
	})
}

// requestLogger emits one structured line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("request")
	}
}
