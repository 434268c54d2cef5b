package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/gravitas-games/gridstash/internal/session"
)

const maxLine = 1 << 20

// encoder writes one JSON message per line. Responses and events share it.
type encoder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{enc: json.NewEncoder(w)}
}

func (e *encoder) write(msg session.ServerMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(msg)
}

// serve reads intents as JSON lines from r and answers each on out. It
// returns nil at end of input.
func serve(ctx context.Context, r io.Reader, out *encoder, sess *session.Session, logger *zap.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg session.ClientMessage
		var resp session.ServerMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			logger.Debug("malformed message", zap.Error(err))
			resp = session.ServerMessage{
				Type: session.MsgTypeError,
				Payload: session.ErrorPayload{
					Code:    "bad_request",
					Message: fmt.Sprintf("malformed message: %v", err),
				},
			}
		} else {
			resp = sess.Handle(msg)
		}
		if err := out.write(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read intents: %w", err)
	}
	return nil
}
