package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"pomtime/internal/api"
	"pomtime/internal/gacha"
	"pomtime/internal/repository"
	"pomtime/internal/service"
	"pomtime/pkg/auth"
	"pomtime/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	var sessions auth.SessionStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sessions = auth.NewRedisSessionStore(rdb)
		zapLogger.Info("Using redis session store", zap.String("addr", cfg.Redis.Addr))
	} else {
		sessions = auth.NewMemorySessionStore()
		zapLogger.Warn("Using in-memory session store; sessions will not survive restarts")
	}

	verifier := auth.NewGoogleVerifier(cfg.Auth.GoogleClientID, cfg.Auth.DebugMode)
	sessionAuth := auth.NewSessionAuth(sessions)

	userService := service.NewUserService(repo, verifier, sessions)
	taskService := service.NewTaskService(repo)
	economyService := service.NewEconomyService(repo, gacha.NewEngine())

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, userService, sessionAuth)
	api.NewTaskRoutes(a, taskService, economyService, sessionAuth)
	api.NewEconomyRoutes(a, economyService, sessionAuth)
	api.NewTimerRoutes(a, economyService, sessionAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
