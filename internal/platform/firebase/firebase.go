package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type Config struct {
	ProjectID       string
	CredentialsPath string
}

// NewFirestore initializes the Firebase app and returns its Firestore client.
func NewFirestore(ctx context.Context, cfg Config, logger *zap.Logger) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app initialization failed: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client initialization failed: %w", err)
	}

	logger.Info("Firestore client initialized", zap.String("project_id", cfg.ProjectID))
	return client, nil
}
