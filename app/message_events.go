package mingle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mingleapp/mingle/core"
)

const (
	// JoinRoomEvent is sent by a client after connecting to join its own
	// identity's channel. The payload is the channel name.
	JoinRoomEvent = "join_room"
)

func (app *App) JoinRoomHandler(ctx context.Context, e *core.Event) error {
	var room string
	if err := json.Unmarshal(e.Payload, &room); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", JoinRoomEvent, err)
	}
	if room == "" {
		return fmt.Errorf("%s: empty room name", JoinRoomEvent)
	}

	app.wsManager.Join(e.ConnID, room)
	return nil
}
