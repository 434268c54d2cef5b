package store

import (
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/gravitas-games/gridstash/pkg/inventory"
)

// Snapshots are stored as zstd-compressed storage JSON (numeric registry IDs).
// The shared encoder and decoder are safe for concurrent EncodeAll/DecodeAll.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// Encode compresses a storage snapshot of g.
func Encode(g *inventory.Grid) ([]byte, error) {
	raw, err := g.SerializeForStorage()
	if err != nil {
		return nil, err
	}
	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Decode restores a grid from bytes produced by Encode.
func Decode(data []byte, reg *inventory.Registry, opts ...inventory.Option) (*inventory.Grid, error) {
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("store: decompress snapshot: %w", err)
	}
	return inventory.DeserializeFromStorage(raw, reg, opts...)
}

// SaveGrid encodes g and writes it under g.ID.
func SaveGrid(ctx context.Context, s Store, g *inventory.Grid) error {
	data, err := Encode(g)
	if err != nil {
		return fmt.Errorf("store: encode grid %s: %w", g.ID, err)
	}
	return s.Save(ctx, g.ID, data)
}

// LoadGrid reads and restores the grid stored under id.
func LoadGrid(ctx context.Context, s Store, id string, reg *inventory.Registry, opts ...inventory.Option) (*inventory.Grid, error) {
	data, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := Decode(data, reg, opts...)
	if err != nil {
		return nil, fmt.Errorf("store: restore grid %s: %w", id, err)
	}
	return g, nil
}
