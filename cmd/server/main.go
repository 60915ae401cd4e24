package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/folio/blog/application"
	"github.com/dfryer1193/folio/blog/domain"
	"github.com/dfryer1193/folio/blog/persistence"
	"github.com/dfryer1193/folio/internal/config"
	"github.com/dfryer1193/folio/internal/logger"
	"github.com/dfryer1193/folio/internal/middleware"
	"github.com/dfryer1193/folio/internal/rest"
	"github.com/dfryer1193/folio/shared/db/sqlite"
	"github.com/dfryer1193/folio/shared/mongodb"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := logger.Init(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	warnings, err := cfg.Validate()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	cacheDB := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.CacheDBPath})
	if err := cacheDB.Connect(); err != nil {
		log.Fatal().Err(err).Str("path", cfg.CacheDBPath).Msg("Failed to open local cache")
	}
	defer cacheDB.Close()
	cache := persistence.NewCache(cacheDB.DB())

	var remote domain.RemotePostStore
	remoteDB := mongodb.NewMongoDB(mongodb.MongoConfig{
		URI:        cfg.MongoURI,
		Database:   cfg.MongoDatabase,
		Collection: cfg.MongoCollection,
		Timeout:    cfg.MongoTimeout,
	})
	if cfg.RemoteEnabled() {
		if err := remoteDB.Connect(context.Background()); err != nil {
			// keep serving from the local cache
			log.Error().Err(err).Msg("Remote store unreachable")
		} else {
			store := persistence.NewMongoPostStore(remoteDB.Collection())
			if err := store.EnsureIndexes(context.Background()); err != nil {
				log.Warn().Err(err).Msg("Failed to ensure remote indexes")
			}
			remote = store
		}
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := remoteDB.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from remote store")
		}
	}()

	gateway := persistence.NewGateway(remote, cache)
	contentStore := application.NewContentStore(gateway, cache)
	if err := contentStore.Restore(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Starting without a session snapshot")
	}
	contentStore.Load(context.Background())

	auth := application.NewAdminAuthenticator(application.AuthConfig{
		Secret:     cfg.AdminSecret,
		SecretHash: cfg.AdminSecretHash,
		JWTSecret:  []byte(cfg.JWTSecret),
		SessionTTL: cfg.SessionTTL,
	}, cache)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	r.Use(gin.CustomRecovery(middleware.HandlePanics()))

	rest.NewApi(r, rest.Deps{
		Store:    contentStore,
		Switcher: application.NewLanguageSwitcher(contentStore, application.NewWordTranslator()),
		Renderer: application.NewPreviewRenderer(cfg.SiteURL),
		Auth:     auth,
		Author:   domain.Author{Name: cfg.AuthorName, Avatar: cfg.AuthorAvatar},
	})

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsMiddleware.Handler(r),
	}

	go func() {
		log.Info().Msg("Starting server on port :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}
