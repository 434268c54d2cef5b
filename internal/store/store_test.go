package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/gridstash/internal/config"
	"github.com/gravitas-games/gridstash/pkg/inventory"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	grid, reg := inventory.SampleGrid()
	require.NoError(t, SaveGrid(ctx, s, grid))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, grid.ID)

	restored, err := LoadGrid(ctx, s, grid.ID, reg)
	require.NoError(t, err)
	assert.Equal(t, grid.Render(), restored.Render())
	assert.Equal(t, grid.Snapshot(), restored.Snapshot())

	require.NoError(t, s.Delete(ctx, grid.ID))
	assert.ErrorIs(t, s.Delete(ctx, grid.ID), ErrNotFound)
	_, err = LoadGrid(ctx, s, grid.ID, reg)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, s.Save(ctx, "g", data))
	data[0] = 'z'

	got, err := s.Load(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
	assert.Error(t, s.Save(ctx, "", data))
}

func TestCodecRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not zstd"), inventory.SampleRegistry())
	assert.Error(t, err)
}

func TestCodecCompresses(t *testing.T) {
	reg := inventory.SampleRegistry()
	ammo, _ := reg.Lookup("ammo-556")
	grid := inventory.NewGrid("big", 20, 20, inventory.WithRegistry(reg))
	_, err := grid.AddItems(ammo, 300*ammo.MaxStack())
	require.NoError(t, err)

	raw, err := grid.SerializeForStorage()
	require.NoError(t, err)
	packed, err := Encode(grid)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(raw))
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{Backend: config.BackendMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(context.Background(), config.StoreConfig{Backend: "etcd"}, nil)
	assert.Error(t, err)
}

// TestRedisStore needs a disposable Redis; set GRIDSTASH_TEST_REDIS=host:port.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("GRIDSTASH_TEST_REDIS")
	if addr == "" {
		t.Skip("GRIDSTASH_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	prefix := "gridstash-test:" + time.Now().Format("150405.000000") + ":"
	s := NewRedisStoreFromClient(client, prefix, time.Minute, nil)
	defer s.Close()
	exerciseStore(t, s)
}
