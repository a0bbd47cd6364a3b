package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zinc-warehouse/internal/config"
	"zinc-warehouse/internal/database"
	"zinc-warehouse/internal/lock"
	"zinc-warehouse/internal/logging"
	"zinc-warehouse/internal/server"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}
	if cfg.JWTSecret == "" {
		secret, err := ephemeralSecret()
		if err != nil {
			log.Fatalf("generate jwt secret: %v", err)
		}
		cfg.JWTSecret = secret
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	locker := lock.Noop()
	if cfg.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("redis %s: %v", cfg.RedisAddress, err)
		}
		locker = lock.NewRedis(rdb, log)
		log.Infof("outbound lock backed by redis at %s", cfg.RedisAddress)
	}

	app := server.New(server.Deps{DB: db, Config: cfg, Log: log, Locker: locker})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logging.LogError(log, "main", "main", "shutdown", nil, err)
		}
	}()

	log.Infof("listening on :%s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("listen: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}

func ephemeralSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
