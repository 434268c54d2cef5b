package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gravitas-games/gridstash/internal/config"
	"github.com/gravitas-games/gridstash/internal/session"
	"github.com/gravitas-games/gridstash/internal/store"
	"github.com/gravitas-games/gridstash/pkg/inventory"
)

type line struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func decodeLines(t *testing.T, out string) []line {
	t.Helper()
	var lines []line
	for _, raw := range strings.Split(strings.TrimSpace(out), "\n") {
		var l line
		require.NoError(t, json.Unmarshal([]byte(raw), &l), raw)
		lines = append(lines, l)
	}
	return lines
}

func TestServeAnswersEachLine(t *testing.T) {
	grid := inventory.NewGrid("bag", 4, 3, inventory.WithRegistry(inventory.SampleRegistry()))
	bus := session.NewSimpleEventBus()
	sess, err := session.New(grid, session.WithEventBus(bus))
	require.NoError(t, err)

	var buf bytes.Buffer
	out := newEncoder(&buf)
	bus.Subscribe("out", func(ev session.Event) {
		_ = out.write(session.ServerMessage{Type: session.MsgTypeEvent, Payload: ev})
	})

	input := strings.Join([]string{
		`{"id":"1","type":"add","payload":{"items":[{"item":"grenade","amount":3}]}}`,
		``,
		`not json`,
		`{"id":"2","type":"query","payload":{"what":"count","item":"grenade"}}`,
		`{"id":"3","type":"ping"}`,
	}, "\n")
	require.NoError(t, serve(context.Background(), strings.NewReader(input), out, sess, zap.NewNop()))

	lines := decodeLines(t, buf.String())
	require.Len(t, lines, 5)
	assert.Equal(t, session.MsgTypeEvent, lines[0].Type)
	assert.Contains(t, string(lines[0].Payload), `"StackCreated"`)
	assert.Equal(t, "1", lines[1].ID)
	assert.Equal(t, session.MsgTypeResult, lines[1].Type)
	assert.Equal(t, session.MsgTypeError, lines[2].Type)
	assert.Contains(t, string(lines[2].Payload), "bad_request")
	assert.Equal(t, "2", lines[3].ID)
	assert.JSONEq(t, `{"count":3}`, string(lines[3].Payload))
	assert.Equal(t, session.MsgTypePong, lines[4].Type)
}

func TestOpenGridRestoresOrCreates(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.Parse([]byte("grid: {id: bag, width: 4, height: 3}"))
	require.NoError(t, err)
	reg := inventory.SampleRegistry()
	st := store.NewMemoryStore()

	grid, err := openGrid(ctx, cfg, st, reg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "bag", grid.ID)
	assert.Zero(t, grid.StackCount())

	grenade, _ := reg.Lookup("grenade")
	_, err = grid.AddItems(grenade, 5)
	require.NoError(t, err)
	require.NoError(t, store.SaveGrid(ctx, st, grid))

	again, err := openGrid(ctx, cfg, st, reg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 5, again.CountItems("grenade"))
	assert.Equal(t, 2, again.StackCount())
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "debug"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = newLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
