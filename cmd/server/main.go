package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elearning-backend-go/internal/config"
	"elearning-backend-go/internal/db"
	httpapi "elearning-backend-go/internal/http"
	"elearning-backend-go/internal/logging"
	"elearning-backend-go/internal/migrations"
	"elearning-backend-go/internal/services"
	"elearning-backend-go/internal/store"
	"elearning-backend-go/internal/store/memstore"
	"elearning-backend-go/internal/store/sqlstore"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	rotator, err := logging.Setup(cfg.LogDir, cfg.LogRetentionDays)
	if err != nil {
		log.Printf("logger setup failed: %v", err)
	} else {
		defer rotator.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, pinger, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()

	server := httpapi.NewServer(st, pinger, cfg, newUploader(cfg))
	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (store=%s media=%s)", addr, cfg.DatabaseDriver, cfg.MediaBackend)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
	log.Printf("shutdown complete")
}

// openStore returns the configured store. The pinger is nil for the in-memory
// store, which has nothing to ping.
func openStore(ctx context.Context, cfg config.Config) (store.Store, services.Pinger, func(), error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		log.Printf("using in-memory store; data is lost on exit")
		return memstore.New(), nil, func() {}, nil
	}
	database, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := migrations.Apply(ctx, database); err != nil {
		_ = database.Close()
		return nil, nil, nil, err
	}
	return sqlstore.New(database), database, func() { _ = database.Close() }, nil
}

func newUploader(cfg config.Config) services.Uploader {
	switch cfg.MediaBackend {
	case config.MediaCloudinary:
		return services.NewCloudinaryUploader(cfg.CloudinaryAPIBase, cfg.CloudinaryCloudName, cfg.CloudinaryUploadPreset)
	case config.MediaSupabase:
		return services.SupabaseUploader{URL: cfg.SupabaseURL, Key: cfg.SupabaseKey, Bucket: cfg.SupabaseBucket}
	default:
		return services.LocalUploader{BasePath: cfg.MediaStoragePath, PublicBaseURL: cfg.MediaPublicBaseURL}
	}
}
