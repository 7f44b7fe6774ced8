package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/firebaseapp"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/store"
	"github.com/gofiber/fiber/v2"
)

func noopClose() error { return nil }

// openStore builds the document store for STORE_BACKEND. The returned func
// releases its client.
func openStore(ctx context.Context, cfg *config.Config, fb *firebaseapp.App) (store.Store, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendGorm:
		return store.NewGormStore(database.DB), noopClose, nil

	case config.BackendFirestore:
		client, err := fb.Firestore(ctx)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewFirestoreStore(client, cfg.FirestoreCollection)
		return s, s.Close, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return store.NewRedisStore(rdb, cfg.RedisPrefix), rdb.Close, nil

	case config.BackendMemory:
		return store.NewMemoryStore(), noopClose, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.StoreBackend)
	}
}

// authMiddleware returns the request authenticator for AUTH_MODE.
func authMiddleware(ctx context.Context, cfg *config.Config, fb *firebaseapp.App) (fiber.Handler, error) {
	switch cfg.AuthMode {
	case config.AuthJWT:
		return middleware.JWTProtected(cfg), nil
	case config.AuthFirebase:
		client, err := fb.Auth(ctx)
		if err != nil {
			return nil, err
		}
		return middleware.FirebaseProtected(client), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.AuthMode)
	}
}
