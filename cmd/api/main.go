package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/config"
	"taskboard/internal/auth"
	"taskboard/internal/handler"
	"taskboard/internal/store"
	"taskboard/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opener, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Storage setup failed: %v", err)
	}
	defer closeStore()

	hasher := auth.NewHasher(cfg.Hash.Cost)
	tokens := auth.NewTokenManager([]byte(cfg.Session.Secret), cfg.Session.TTL, cfg.Session.CookieName)

	h, err := handler.NewHandler(opener, hasher, tokens)
	if err != nil {
		log.Fatalf("Handler setup failed: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Routes(cfg.Server.StaticDir),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server listening on http://localhost:%s (%s, storage: %s)",
		cfg.Server.Port, cfg.Server.Env, cfg.Database.Driver)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Opener, func(), error) {
	if cfg.Driver == "memory" {
		log.Println("Using in-memory storage, data is lost on restart")
		return store.NewMemory(), func() {}, nil
	}

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return store.NewPostgres(db), func() {
		db.Close()
		log.Println("Database connection closed")
	}, nil
}
