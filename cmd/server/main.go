package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	galleryapp "github.com/kibrisacil/classifieds/gallery/application"
	gallerydomain "github.com/kibrisacil/classifieds/gallery/domain"
	gallerypersistence "github.com/kibrisacil/classifieds/gallery/persistence"
	"github.com/kibrisacil/classifieds/internal/config"
	"github.com/kibrisacil/classifieds/internal/middleware"
	"github.com/kibrisacil/classifieds/internal/rest"
	"github.com/kibrisacil/classifieds/listing/application"
	"github.com/kibrisacil/classifieds/listing/persistence"
	"github.com/kibrisacil/classifieds/shared/db/sqlite"
	"github.com/kibrisacil/classifieds/shared/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("Invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	database := sqlite.NewSQLiteDB(cfg.SQLite.Path)
	if err := database.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))

	blobs, err := buildBlobStore(context.Background(), cfg.Blob, router)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize blob store")
	}

	sqlDB := database.DB()

	galleryService := galleryapp.NewGalleryService(gallerypersistence.NewImageRepository(sqlDB), blobs)

	propertyService := application.NewPropertyService(persistence.NewPropertyRepository(sqlDB), galleryService)
	carService := application.NewCarService(persistence.NewCarRepository(sqlDB), galleryService)
	offerService := application.NewOfferService(persistence.NewOfferRepository(sqlDB), galleryService)

	rest.NewApi(router, propertyService, carService, offerService)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.HTTP.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}

// buildBlobStore picks the image backend. The fs backend serves blobs from
// this process, so it also mounts a static route on the router.
func buildBlobStore(ctx context.Context, cfg config.BlobConfig, router *gin.Engine) (gallerydomain.BlobStore, error) {
	switch cfg.Backend {
	case "minio":
		return storage.NewMinIOStore(ctx, storage.MinIOConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
			PublicURL: cfg.PublicURL,
		})
	case "fs":
		baseURL := cfg.PublicURL
		if baseURL == "" {
			baseURL = "/images"
		}
		router.Static("/images", cfg.Dir)
		return storage.NewFSStore(cfg.Dir, baseURL), nil
	default:
		return nil, errors.New("unknown blob backend: " + cfg.Backend)
	}
}
