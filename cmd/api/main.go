package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"civicauth/internal/config"
	"civicauth/internal/database"
	"civicauth/internal/middleware"
	"civicauth/internal/modules/auth"
	jwtpkg "civicauth/internal/pkg/jwt"
	"civicauth/internal/pkg/response"
	"civicauth/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRevokedTokenRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTxManager(db)

	codec := jwtpkg.NewCodec(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	authService := auth.NewService(userRepo, tokenRepo, auditRepo, txManager, codec)
	authHandler := auth.NewHandler(authService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := auth.NewSweeper(tokenRepo, cfg.CleanupInterval)
	go sweeper.Run(ctx)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.BearerAuth(codec, authService))
		{
			protected.GET("/users/me", func(c *gin.Context) {
				response.Success(c, http.StatusOK, gin.H{
					"user_id": c.GetInt64("user_id"),
					"email":   c.GetString("email"),
					"roles":   c.GetStringSlice("roles"),
				})
			})
		}
	}

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
