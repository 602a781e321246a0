package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"simpleblog/api/internal/activitypub"
	"simpleblog/api/internal/app"
	"simpleblog/api/internal/config"
	"simpleblog/api/internal/export"
	"simpleblog/api/internal/gitrepo"
	"simpleblog/api/internal/imagegen"
	"simpleblog/api/internal/media"
	"simpleblog/api/internal/search"
	"simpleblog/api/internal/session"
	"simpleblog/api/internal/store"
)

const (
	blogName    = "SimpleBlog"
	blogSummary = "A personal blog about code and everything around it."
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	if err := os.MkdirAll(cfg.ReposDir, 0o755); err != nil {
		log.Fatalf("failed to create repos dir: %v", err)
	}

	dataStore := store.NewSQLiteStore(db)
	gitService := gitrepo.New(cfg.ReposDir)

	fallback := search.NewStoreFallback(dataStore)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, fallback)

	redisStore, err := session.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisStore.Close()

	actorKey, err := activitypub.LoadOrGenerateKey(cfg.DataDir)
	if err != nil {
		log.Fatalf("actor key failed: %v", err)
	}
	fediverse := activitypub.NewService(cfg.BaseURL, blogName, blogSummary, dataStore, actorKey)

	exportService := export.NewService(dataStore, blogName, cfg.AdminName)

	var (
		mediaStore interface {
			Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
		}
		mediaDir string
	)
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		minioStore, err := media.NewStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("media store failed: %v", err)
		}
		mediaStore = minioStore
	} else {
		localStore, err := media.NewLocalStore(cfg.DataDir+"/media", cfg.BaseURL)
		if err != nil {
			log.Fatalf("local media store failed: %v", err)
		}
		mediaStore = localStore
		mediaDir = localStore.Dir()
	}

	imageGen := imagegen.NewClient(cfg.ImageGenURL, cfg.ImageGenKey)

	service := app.New(cfg, app.Deps{
		Store:     dataStore,
		Sessions:  redisStore,
		Git:       gitService,
		Search:    searchService,
		Fediverse: fediverse,
		Exporter:  exportService,
		Media:     mediaStore,
		ImageGen:  imageGen,
	})
	service.Bootstrap(ctx)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, mediaDir)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("SimpleBlog API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
