package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"astrocat/internal/config"
	"astrocat/internal/database"
	"astrocat/internal/middleware"
	"astrocat/internal/modules/auth"
	"astrocat/internal/modules/catalog"
	"astrocat/internal/modules/upload"
	jwtsvc "astrocat/internal/pkg/jwt"
	"astrocat/internal/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	store := storage.New(cfg.UploadBaseDir)

	authService := auth.NewService(auth.NewRepository(db), j)
	authHandler := auth.NewHandler(authService)

	registry := upload.NewRegistry()
	uploadService := upload.NewService(registry, store)
	uploadService.ScheduleSweep(context.Background(), cfg.SweepInterval, cfg.SessionTTL)

	writer := catalog.NewWriter(db)
	uploadHandler := upload.NewHandler(uploadService, upload.NewFinalizer(store), writer)
	catalogHandler := catalog.NewHandler(db)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		auth.RegisterRoutes(v1, authHandler)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			upload.RegisterRoutes(protected, uploadHandler)
			catalog.RegisterRoutes(protected, catalogHandler)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
