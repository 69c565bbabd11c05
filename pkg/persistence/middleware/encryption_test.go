package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch/pkg/adapters/memory"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/persistence/middleware"
	"github.com/aretw0/stitch/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, store ports.RequestStore, cfg middleware.EncryptionConfig) ports.RequestStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(store)
}

func secretSummary(value string) *domain.RequestSummary {
	return &domain.RequestSummary{
		RunID:     "run",
		RequestID: "r1",
		State:     "SUCCESS",
		Valid:     true,
		Hosts:     []string{"h1"},
		Vars:      map[string]string{"secret": value},
	}
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	store := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, secretSummary("my-secret-sauce")))

	envelope, err := underlying.Load(ctx, "run", "r1")
	require.NoError(t, err)
	assert.NotContains(t, envelope.Vars, "secret")
	assert.Contains(t, envelope.Vars, middleware.EnvelopeKey)
	assert.Empty(t, envelope.Hosts)
	assert.Equal(t, "SUCCESS", envelope.State)

	loaded, err := store.Load(ctx, "run", "r1")
	require.NoError(t, err)
	assert.Equal(t, secretSummary("my-secret-sauce"), loaded)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, oldStore.Save(ctx, secretSummary("old")))

	newStore := encrypted(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := newStore.Load(ctx, "run", "r1")
	require.NoError(t, err)
	assert.Equal(t, "old", loaded.Vars["secret"])

	require.NoError(t, newStore.Save(ctx, secretSummary("new")))
	_, err = oldStore.Load(ctx, "run", "r1")
	assert.Error(t, err, "old key alone must not decrypt data saved with the new key")
}

func TestEncryptionMiddleware_PlainSummaryRejected(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, secretSummary("plain")))

	store := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "run", "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "envelope")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunRequestStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestWrap_Order(t *testing.T) {
	underlying := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware([]string{"secret"})
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Wrap(underlying, pii, enc)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, secretSummary("hidden")))

	loaded, err := store.Load(ctx, "run", "r1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Masked, loaded.Vars["secret"])
}
