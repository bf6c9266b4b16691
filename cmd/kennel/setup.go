package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kennelhq/kennel"
	"github.com/kennelhq/kennel/config"
	"github.com/kennelhq/kennel/database"
	"github.com/kennelhq/kennel/filesystem"
)

// deps bundles the wired-up services a command needs. close releases the
// database connection and the storage root.
type deps struct {
	repos  database.Repos
	auth   *kennel.AuthService
	images *kennel.ImageService
	tokens *kennel.TokenIssuer
	close  func()
}

// setupDeps connects the database, opens the storage root and builds the
// services from the loaded configuration.
func setupDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	repos, closeDB, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
		closeDB()
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("open storage root: %w", err)
	}

	storage := filesystem.NewStore(root)

	tokens, err := kennel.NewTokenIssuer([]byte(cfg.Auth.Secret), time.Duration(cfg.Auth.TokenTTL)*time.Hour)
	if err != nil {
		closeDB()
		_ = root.Close()
		return nil, fmt.Errorf("create token issuer: %w", err)
	}

	auth := kennel.NewAuthService(repos.Users, tokens)
	images := kennel.NewImageService(repos.Images, storage, kennel.ImageServiceConfig{
		CleanupTimeout: time.Duration(cfg.Service.CleanupTimeout) * time.Second,
	})

	return &deps{
		repos:  repos,
		auth:   auth,
		images: images,
		tokens: tokens,
		close: func() {
			_ = root.Close()
			closeDB()
		},
	}, nil
}
