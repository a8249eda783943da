package repo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tropical/internal/models"
)

func makeUpdates(n int) []models.ListsUpdate {
	out := make([]models.ListsUpdate, n)
	for i := range out {
		out[i] = models.ListsUpdate{ID: fmt.Sprintf("dev-%d", i)}
	}
	return out
}

func TestChunkUpdates(t *testing.T) {
	tests := []struct {
		total     int
		wantSizes []int
	}{
		{total: 0, wantSizes: nil},
		{total: 1, wantSizes: []int{1}},
		{total: 499, wantSizes: []int{499}},
		{total: 500, wantSizes: []int{500}},
		{total: 501, wantSizes: []int{500, 1}},
		{total: 1200, wantSizes: []int{500, 500, 200}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d updates", tt.total), func(t *testing.T) {
			chunks := chunkUpdates(makeUpdates(tt.total), batchLimit)
			require.Len(t, chunks, len(tt.wantSizes))
			for i, want := range tt.wantSizes {
				assert.Len(t, chunks[i], want)
			}
		})
	}
}

func TestChunkUpdatesPreservesOrder(t *testing.T) {
	chunks := chunkUpdates(makeUpdates(1200), batchLimit)
	require.Len(t, chunks, 3)
	assert.Equal(t, "dev-0", chunks[0][0].ID)
	assert.Equal(t, "dev-500", chunks[1][0].ID)
	assert.Equal(t, "dev-1000", chunks[2][0].ID)
	assert.Equal(t, "dev-1199", chunks[2][199].ID)
}
