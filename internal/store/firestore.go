package store

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// Open connects to Firestore for the given project.
// credentialsFile is a service account JSON path; when empty, application
// default credentials.
func Open(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, errors.New("firestore: empty project id")
	}
	if credentialsFile != "" {
		return firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
	}
	return firestore.NewClient(ctx, projectID)
}
