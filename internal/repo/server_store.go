package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"tropical/internal/models"
)

// ServerStore reads and writes server documents.
type ServerStore struct {
	client *firestore.Client
	col    string
}

func NewServerStore(client *firestore.Client, collection string) *ServerStore {
	return &ServerStore{client: client, col: collection}
}

// GetAll returns every server document. Order is not guaranteed.
func (s *ServerStore) GetAll(ctx context.Context) ([]models.Server, error) {
	iter := s.client.Collection(s.col).Documents(ctx)
	defer iter.Stop()

	var out []models.Server
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scan servers: %w", err)
		}
		var srv models.Server
		if err := doc.DataTo(&srv); err != nil {
			return nil, fmt.Errorf("decode server %s: %w", doc.Ref.ID, err)
		}
		srv.ID = doc.Ref.ID
		out = append(out, srv)
	}
	return out, nil
}

func (s *ServerStore) Get(ctx context.Context, id string) (*models.Server, error) {
	doc, err := s.client.Collection(s.col).Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get server %s: %w", id, mapErr(err))
	}
	var srv models.Server
	if err := doc.DataTo(&srv); err != nil {
		return nil, fmt.Errorf("decode server %s: %w", id, err)
	}
	srv.ID = doc.Ref.ID
	return &srv, nil
}

// Create stores a new server under an auto-assigned id.
func (s *ServerStore) Create(ctx context.Context, f models.ServerFields) (string, error) {
	ref, _, err := s.client.Collection(s.col).Add(ctx, map[string]interface{}{
		"name":       f.Name,
		"dns":        f.DNS,
		"complement": f.Complement,
		"createdAt":  firestore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("create server: %w", err)
	}
	return ref.ID, nil
}

// Update merges the editable fields into an existing server document and
// stamps updatedAt with the store commit time.
func (s *ServerStore) Update(ctx context.Context, id string, f models.ServerFields) error {
	_, err := s.client.Collection(s.col).Doc(id).Update(ctx, []firestore.Update{
		{Path: "name", Value: f.Name},
		{Path: "dns", Value: f.DNS},
		{Path: "complement", Value: f.Complement},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("update server %s: %w", id, mapErr(err))
	}
	return nil
}

// Delete removes the server document only. Referencing list entries are left
// dangling on purpose; readers render them as "server not found".
func (s *ServerStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.Collection(s.col).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("delete server %s: %w", id, mapErr(err))
	}
	return nil
}
