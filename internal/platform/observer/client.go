package observer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/horde/internal/sim"
)

// ErrStopWatching can be returned by a Watch callback to end the stream
// without an error.
var ErrStopWatching = errors.New("observer: stop watching")

// Watch connects to a /ws endpoint and calls fn for every frame until the
// run ends, ctx is cancelled or fn returns an error.
func Watch(ctx context.Context, url string, every int, fn func(sim.Frame) error) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("observer: cannot dial %s: %w", url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	sub := SubscribeMsg{Type: TypeSubscribe, ProtocolVersion: Version, Every: every}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("observer: cannot subscribe: %w", err)
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("observer: read: %w", err)
		}
		var fm FrameMsg
		if err := json.Unmarshal(msg, &fm); err != nil {
			return fmt.Errorf("observer: bad message: %w", err)
		}
		switch fm.Type {
		case TypeEnd:
			return nil
		case TypeFrame:
			if err := fn(fm.Frame); err != nil {
				if errors.Is(err, ErrStopWatching) {
					return nil
				}
				return err
			}
		}
	}
}
