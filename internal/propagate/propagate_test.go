package propagate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tropical/internal/listurl"
	"tropical/internal/models"
)

// -------- test fakes --------

type fakeServers struct {
	err     error
	updates map[string]models.ServerFields
}

func (f *fakeServers) Update(_ context.Context, id string, fields models.ServerFields) error {
	if f.err != nil {
		return f.err
	}
	if f.updates == nil {
		f.updates = map[string]models.ServerFields{}
	}
	f.updates[id] = fields
	return nil
}

type fakeDevices struct {
	devices []models.Device
	getErr  error

	batchErr       error
	batchCommitted int // returned alongside batchErr

	scanCalls  int
	batchCalls int
	lastBatch  []models.ListsUpdate
}

func (f *fakeDevices) GetAll(_ context.Context) ([]models.Device, error) {
	f.scanCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.devices, nil
}

func (f *fakeDevices) BatchUpdateLists(_ context.Context, updates []models.ListsUpdate) (int, error) {
	f.batchCalls++
	f.lastBatch = updates
	if f.batchErr != nil {
		return f.batchCommitted, f.batchErr
	}
	return len(updates), nil
}

// apply mimics the store committing a batch, for idempotence checks.
func (f *fakeDevices) apply() {
	for _, u := range f.lastBatch {
		for i := range f.devices {
			if f.devices[i].ID == u.ID {
				f.devices[i].Lists = u.Lists
			}
		}
	}
}

// -------- helpers --------

func entry(serverID, name, user, pass, url string) models.ListEntry {
	return models.ListEntry{ServerID: serverID, Name: name, Username: user, Password: pass, URL: url}
}

// -------- tests --------

func TestPropagateRewritesOnlyMatchingEntries(t *testing.T) {
	staleB := entry("srv-b", "Beta", "bu", "bp", "http://old-beta/get.php?username=bu&password=bp")
	devices := &fakeDevices{devices: []models.Device{
		{
			ID: "1001",
			Lists: []models.ListEntry{
				entry("srv-a", "Alpha", "au", "ap", "http://old-alpha/get.php?username=au&password=ap"),
				staleB,
			},
		},
	}}
	eng := New(&fakeServers{}, devices)

	fields := models.ServerFields{Name: "Alpha v2", DNS: "http://new-alpha", Complement: "&type=m3u_plus"}
	n, err := eng.Propagate(context.Background(), "srv-a", fields)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, devices.lastBatch, 1)
	got := devices.lastBatch[0]
	assert.Equal(t, "1001", got.ID)
	require.Len(t, got.Lists, 2)

	a := got.Lists[0]
	assert.Equal(t, "Alpha v2", a.Name)
	assert.Equal(t, listurl.Build("http://new-alpha", "&type=m3u_plus", "au", "ap"), a.URL)
	assert.Equal(t, "au", a.Username)
	assert.Equal(t, "ap", a.Password)
	assert.Equal(t, "srv-a", a.ServerID)

	// the entry for the other server passes through untouched, stale URL included
	assert.Equal(t, staleB, got.Lists[1])
}

func TestPropagateSkipsDevicesWithoutReference(t *testing.T) {
	devices := &fakeDevices{devices: []models.Device{
		{ID: "1", Lists: []models.ListEntry{entry("srv-a", "A", "u", "p", "")}},
		{ID: "2", Lists: []models.ListEntry{entry("srv-b", "B", "u", "p", "")}},
		{ID: "3", Lists: nil},
	}}
	eng := New(&fakeServers{}, devices)

	n, err := eng.Propagate(context.Background(), "srv-a", models.ServerFields{DNS: "http://a"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, devices.lastBatch, 1)
	assert.Equal(t, "1", devices.lastBatch[0].ID)
}

func TestPropagateMultipleEntriesSameServer(t *testing.T) {
	devices := &fakeDevices{devices: []models.Device{
		{ID: "1", Lists: []models.ListEntry{
			entry("srv-a", "A", "first", "p1", ""),
			entry("srv-a", "A", "second", "p2", ""),
		}},
	}}
	eng := New(&fakeServers{}, devices)

	n, err := eng.Propagate(context.Background(), "srv-a", models.ServerFields{Name: "A", DNS: "http://a"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lists := devices.lastBatch[0].Lists
	assert.Equal(t, listurl.Build("http://a", "", "first", "p1"), lists[0].URL)
	assert.Equal(t, listurl.Build("http://a", "", "second", "p2"), lists[1].URL)
}

func TestPropagateEmptyNameKeepsEntryName(t *testing.T) {
	devices := &fakeDevices{devices: []models.Device{
		{ID: "1", Lists: []models.ListEntry{entry("srv-a", "Old Name", "u", "p", "")}},
	}}
	eng := New(&fakeServers{}, devices)

	_, err := eng.Propagate(context.Background(), "srv-a", models.ServerFields{Name: "", DNS: "http://a"})
	require.NoError(t, err)
	assert.Equal(t, "Old Name", devices.lastBatch[0].Lists[0].Name)
}

func TestPropagateFailsFastOnServerWrite(t *testing.T) {
	devices := &fakeDevices{devices: []models.Device{
		{ID: "1", Lists: []models.ListEntry{entry("srv-a", "A", "u", "p", "")}},
	}}
	eng := New(&fakeServers{err: errors.New("permission denied")}, devices)

	n, err := eng.Propagate(context.Background(), "srv-a", models.ServerFields{DNS: "http://a"})
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, devices.scanCalls, "devices must not be scanned after a failed server write")
	assert.Equal(t, 0, devices.batchCalls)
}

func TestPropagateNoReferencingDevicesIsNoOp(t *testing.T) {
	devices := &fakeDevices{devices: []models.Device{
		{ID: "1", Lists: []models.ListEntry{entry("srv-b", "B", "u", "p", "")}},
	}}
	eng := New(&fakeServers{}, devices)

	n, err := eng.Propagate(context.Background(), "srv-a", models.ServerFields{DNS: "http://a"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, devices.batchCalls, "empty write set must not issue a batch")
}

func TestPropagateSurfacesPartialBatchFailure(t *testing.T) {
	var devs []models.Device
	for i := 0; i < 3; i++ {
		devs = append(devs, models.Device{
			ID:    string(rune('a' + i)),
			Lists: []models.ListEntry{entry("srv-a", "A", "u", "p", "")},
		})
	}
	devices := &fakeDevices{devices: devs, batchErr: errors.New("quota exceeded"), batchCommitted: 2}
	eng := New(&fakeServers{}, devices)

	n, err := eng.Propagate(context.Background(), "srv-a", models.ServerFields{DNS: "http://a"})
	require.Error(t, err)
	assert.Equal(t, 2, n, "committed devices before the failing group are reported")
}

func TestPropagateIdempotent(t *testing.T) {
	devices := &fakeDevices{devices: []models.Device{
		{ID: "1", Lists: []models.ListEntry{
			entry("srv-a", "A", "u", "p", "http://stale/get.php?username=u&password=p"),
			entry("srv-b", "B", "x", "y", "http://other/get.php?username=x&password=y"),
		}},
	}}
	eng := New(&fakeServers{}, devices)
	fields := models.ServerFields{Name: "A", DNS: "http://fresh", Complement: "&out=ts"}

	n1, err := eng.Propagate(context.Background(), "srv-a", fields)
	require.NoError(t, err)
	first := devices.lastBatch
	devices.apply()

	n2, err := eng.Propagate(context.Background(), "srv-a", fields)
	require.NoError(t, err)

	assert.Equal(t, n1, n2, "a re-run still writes the same devices")
	assert.Equal(t, first, devices.lastBatch, "second run derives identical state")
}
