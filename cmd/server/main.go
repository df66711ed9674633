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

	"github.com/HankLeo/21-points/internal/config"
	"github.com/HankLeo/21-points/internal/db"
	"github.com/HankLeo/21-points/internal/handler"
	"github.com/HankLeo/21-points/internal/messaging"
	"github.com/HankLeo/21-points/internal/repository"
	"github.com/HankLeo/21-points/internal/service"
)

func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable must be set")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, database); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	var broker messaging.Broker = messaging.NewMemoryBroker()
	if cfg.RedisAddr != "" {
		rdb, err := messaging.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer rdb.Close()
		broker = messaging.NewRedisBroker(rdb, cfg.MessageTopic)
		log.Printf("publishing %s over redis at %s", cfg.MessageTopic, cfg.RedisAddr)
	}

	hub := messaging.NewHub()
	go func() {
		if err := hub.Run(ctx, broker); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("message hub stopped: %v", err)
		}
	}()

	router := handler.NewRouter(handler.Deps{
		Config: cfg,
		Repos:  repository.New(database),
		Mailer: service.NewEmailService(cfg.MailAPIKey, cfg.MailFrom, cfg.MailEndpoint),
		Broker: broker,
		Hub:    hub,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		log.Printf("server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	stop()
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
