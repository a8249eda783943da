package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"tropical/internal/models"
)

// batchLimit is the store's hard cap on operations per atomic write group.
const batchLimit = 500

// DeviceStore reads and writes device documents. Devices are keyed by the
// operator-chosen subscriber number.
type DeviceStore struct {
	client *firestore.Client
	col    string
}

func NewDeviceStore(client *firestore.Client, collection string) *DeviceStore {
	return &DeviceStore{client: client, col: collection}
}

// GetAll returns every device document in one full scan. The fleet is small
// to moderate; no pagination.
func (s *DeviceStore) GetAll(ctx context.Context) ([]models.Device, error) {
	iter := s.client.Collection(s.col).Documents(ctx)
	defer iter.Stop()

	var out []models.Device
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scan devices: %w", err)
		}
		var dev models.Device
		if err := doc.DataTo(&dev); err != nil {
			return nil, fmt.Errorf("decode device %s: %w", doc.Ref.ID, err)
		}
		dev.ID = doc.Ref.ID
		out = append(out, dev)
	}
	return out, nil
}

func (s *DeviceStore) Get(ctx context.Context, id string) (*models.Device, error) {
	doc, err := s.client.Collection(s.col).Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get device %s: %w", id, mapErr(err))
	}
	var dev models.Device
	if err := doc.DataTo(&dev); err != nil {
		return nil, fmt.Errorf("decode device %s: %w", id, err)
	}
	dev.ID = doc.Ref.ID
	return &dev, nil
}

// Create stores a new device under the given subscriber number. Fails with
// ErrExists if the number is already taken.
func (s *DeviceStore) Create(ctx context.Context, id string, f models.DeviceFields) error {
	_, err := s.client.Collection(s.col).Doc(id).Create(ctx, map[string]interface{}{
		"userNumber":    f.UserNumber,
		"paymentStatus": f.PaymentStatus,
		"lists":         f.Lists,
		"createdAt":     firestore.ServerTimestamp,
		"expiresAt":     firestore.ServerTimestamp,
		"updatedAt":     firestore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("create device %s: %w", id, mapErr(err))
	}
	return nil
}

// Update merges the editable fields into an existing device document.
func (s *DeviceStore) Update(ctx context.Context, id string, f models.DeviceFields) error {
	_, err := s.client.Collection(s.col).Doc(id).Update(ctx, []firestore.Update{
		{Path: "userNumber", Value: f.UserNumber},
		{Path: "paymentStatus", Value: f.PaymentStatus},
		{Path: "lists", Value: f.Lists},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("update device %s: %w", id, mapErr(err))
	}
	return nil
}

// SetPaymentStatus flips the paid/pending flag, touching nothing else.
func (s *DeviceStore) SetPaymentStatus(ctx context.Context, id string, paid bool) error {
	_, err := s.client.Collection(s.col).Doc(id).Update(ctx, []firestore.Update{
		{Path: "paymentStatus", Value: paid},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("set payment status %s: %w", id, mapErr(err))
	}
	return nil
}

func (s *DeviceStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.Collection(s.col).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("delete device %s: %w", id, mapErr(err))
	}
	return nil
}

// BatchUpdateLists replaces the lists field of each named device. Updates
// are partitioned into groups of at most batchLimit operations; each group
// commits atomically and independently of the others. On failure the
// returned count is the number of devices committed by the groups that
// succeeded before it; earlier groups are not rolled back and remaining
// groups are not attempted.
func (s *DeviceStore) BatchUpdateLists(ctx context.Context, updates []models.ListsUpdate) (int, error) {
	updated := 0
	for _, chunk := range chunkUpdates(updates, batchLimit) {
		batch := s.client.Batch()
		for _, u := range chunk {
			batch.Update(s.client.Collection(s.col).Doc(u.ID), []firestore.Update{
				{Path: "lists", Value: u.Lists},
			})
		}
		if _, err := batch.Commit(ctx); err != nil {
			return updated, fmt.Errorf("commit lists batch after %d devices: %w", updated, mapErr(err))
		}
		updated += len(chunk)
	}
	return updated, nil
}

// chunkUpdates splits updates into slices of at most size elements. The
// batch cap lives here so the accessor is the only place that knows it.
func chunkUpdates(updates []models.ListsUpdate, size int) [][]models.ListsUpdate {
	var chunks [][]models.ListsUpdate
	for len(updates) > size {
		chunks = append(chunks, updates[:size])
		updates = updates[size:]
	}
	if len(updates) > 0 {
		chunks = append(chunks, updates)
	}
	return chunks
}
