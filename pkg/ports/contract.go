package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRequestStoreContract runs a suite of tests to verify that a RequestStore
// implementation adheres to the defined interface contract.
func RunRequestStoreContract(t *testing.T, store RequestStore) {
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405.000000")

	summary := func(id string) *domain.RequestSummary {
		return &domain.RequestSummary{
			RunID:     runID,
			RequestID: id,
			State:     "SUCCESS",
			Valid:     true,
			Lapse:     1.5,
			Threads:   2,
			Joins:     1,
			Hosts:     []string{"h1", "h2"},
			MainPath:  []string{"client.send -> server.recv"},
			Vars:      map[string]string{"tid": "7"},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, summary("r1"))
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID, "r1")
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, summary("r1"), loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, runID, "missing")
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)

		_, err = store.Load(ctx, "other-"+runID, "r1")
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := summary("r1")
		s.State = "FAILURE"
		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, runID, "r1")
		require.NoError(t, err)
		assert.Equal(t, "FAILURE", loaded.State)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, summary("r3")))
		require.NoError(t, store.Save(ctx, summary("r2")))

		ids, err := store.List(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, []string{"r1", "r2", "r3"}, ids)

		ids, err = store.List(ctx, "empty-"+runID)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, runID, "r2"), "Delete should not return error")

		_, err := store.Load(ctx, runID, "r2")
		assert.ErrorIs(t, err, domain.ErrRequestNotFound, "Load after Delete should return ErrRequestNotFound")

		ids, err := store.List(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, []string{"r1", "r3"}, ids)

		assert.NoError(t, store.Delete(ctx, runID, "never-saved"))
	})
}
