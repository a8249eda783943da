// Package propagate applies a server edit to every device that references
// the server, recomputing the denormalized list entry name and access URL.
package propagate

import (
	"context"
	"fmt"

	"tropical/internal/listurl"
	"tropical/internal/metrics"
	"tropical/internal/models"
)

// ServerWriter persists edits to a single server document.
type ServerWriter interface {
	Update(ctx context.Context, id string, f models.ServerFields) error
}

// DeviceBatcher scans the device fleet and commits lists rewrites in
// size-limited atomic groups.
type DeviceBatcher interface {
	GetAll(ctx context.Context) ([]models.Device, error)
	BatchUpdateLists(ctx context.Context, updates []models.ListsUpdate) (int, error)
}

// Engine holds no state between calls; every Propagate is an independent
// request/response round.
type Engine struct {
	servers ServerWriter
	devices DeviceBatcher
}

func New(servers ServerWriter, devices DeviceBatcher) *Engine {
	return &Engine{servers: servers, devices: devices}
}

// Propagate writes the new server fields, then rewrites the lists of every
// device holding an entry for serverID: matching entries get the new name
// (keeping the old one when the new name is empty) and a freshly built URL;
// all other entries pass through untouched, stale URLs included. Devices
// with no matching entry are never written.
//
// Returns the number of devices in the write set. The scan-then-write
// sequence is not transactional end-to-end: only each write group is
// atomic, and a concurrent edit to a device's lists between scan and commit
// is overwritten. On a group failure the error carries the number of
// devices already committed; nothing is retried.
func (e *Engine) Propagate(ctx context.Context, serverID string, f models.ServerFields) (int, error) {
	if err := e.servers.Update(ctx, serverID, f); err != nil {
		metrics.PropagationFailures.Inc()
		return 0, fmt.Errorf("propagate: %w", err)
	}

	devices, err := e.devices.GetAll(ctx)
	if err != nil {
		metrics.PropagationFailures.Inc()
		return 0, fmt.Errorf("propagate: %w", err)
	}

	var toUpdate []models.ListsUpdate
	for _, dev := range devices {
		matched := false
		rewritten := make([]models.ListEntry, len(dev.Lists))
		for i, item := range dev.Lists {
			if item.ServerID != serverID {
				rewritten[i] = item
				continue
			}
			matched = true
			if f.Name != "" {
				item.Name = f.Name
			}
			item.URL = listurl.Build(f.DNS, f.Complement, item.Username, item.Password)
			rewritten[i] = item
		}
		if matched {
			toUpdate = append(toUpdate, models.ListsUpdate{ID: dev.ID, Lists: rewritten})
		}
	}

	if len(toUpdate) == 0 {
		metrics.PropagationRuns.Inc()
		return 0, nil
	}

	committed, err := e.devices.BatchUpdateLists(ctx, toUpdate)
	if err != nil {
		metrics.PropagationFailures.Inc()
		return committed, fmt.Errorf("propagate: %w", err)
	}

	metrics.PropagationRuns.Inc()
	metrics.PropagationDevices.Add(float64(committed))
	return len(toUpdate), nil
}
