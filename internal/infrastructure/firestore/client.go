// Package firestore is the Cloud Firestore record store. Accounts use the
// email as the document id so that create and transactional promotion can
// rely on document existence.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/go-care-nosql/internal/config"
	"google.golang.org/api/option"
)

// NewClient opens a Firestore client for cfg.FirestoreProjectID. When a
// credentials file is configured it is used instead of application default
// credentials.
func NewClient(ctx context.Context, cfg *config.Config) (*firestore.Client, error) {
	if cfg.FirestoreProjectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore backend")
	}
	var opts []option.ClientOption
	if cfg.FirestoreCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredentialsFile))
	}
	client, err := firestore.NewClient(ctx, cfg.FirestoreProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return client, nil
}
