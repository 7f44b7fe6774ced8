// Package firebaseapp initializes the Firebase Admin SDK app shared by the
// Firestore document store and Firebase ID-token authentication.
package firebaseapp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"google.golang.org/api/option"

	"github.com/ahmetcoskunkizilkaya/pantry-backend/internal/config"
)

// Options turns the Firebase settings into client options. Without a
// credentials file the SDK falls back to application default credentials
// or the emulator environment variables.
func Options(cfg *config.Config) []option.ClientOption {
	if cfg.FirebaseCredentials == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseCredentials)}
}

type App struct {
	app *firebase.App
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, Options(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	return &App{app: app}, nil
}

func (a *App) Firestore(ctx context.Context) (*firestore.Client, error) {
	client, err := a.app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

func (a *App) Auth(ctx context.Context) (*auth.Client, error) {
	client, err := a.app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
	}
	return client, nil
}
