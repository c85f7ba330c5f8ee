package database

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
)

// NewFirestoreClient connects to Firestore using application default
// credentials, or to the emulator when FIRESTORE_EMULATOR_HOST is set.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, errors.New("firestore project id is required")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return client, nil
}
