package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Event is the unit of exchange over the notification channel. ConnID
// identifies the connection an inbound event arrived on; it is never
// serialized.
type Event struct {
	ConnID  int             `json:"-"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (e Event) String() string {
	return fmt.Sprintf("Event{ConnID: %d, Type: %s, Payload.Size: %d}", e.ConnID, e.Type, len(e.Payload))
}

func EncodeEvent(w io.Writer, e *Event) error {
	if err := json.NewEncoder(w).Encode(e); err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return nil
}

func DecodeEvent(r io.Reader, e *Event) error {
	if err := json.NewDecoder(r).Decode(e); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	return nil
}

type EventTransport interface {
	Publish(channel string, e *Event)
	Receive() <-chan *Event
}

type EventHandler func(context.Context, *Event) error

// EventRouter dispatches inbound events to their registered handlers and
// emits outbound events through the transport.
type EventRouter struct {
	listeners map[string]EventHandler
	ctx       context.Context
	transport EventTransport
	logger    *slog.Logger
	wg        sync.WaitGroup
}

func NewEventRouter(ctx context.Context, logger *slog.Logger, transport EventTransport) *EventRouter {
	return &EventRouter{
		listeners: make(map[string]EventHandler),
		ctx:       ctx,
		transport: transport,
		logger:    logger,
	}
}

// Listen starts dispatching inbound events until the router's context is
// cancelled. Handler errors are logged and swallowed.
func (em *EventRouter) Listen() {
	em.wg.Add(1)
	go func() {
		defer em.wg.Done()
		for {
			select {
			case e := <-em.transport.Receive():
				em.logger.Debug(fmt.Sprintf("received: %v", e))
				handler, ok := em.listeners[e.Type]
				if !ok {
					em.logger.Debug(fmt.Sprintf("no handler for event: %s", e.Type))
					continue
				}
				em.wg.Add(1)
				go func() {
					defer em.wg.Done()
					if err := handler(em.ctx, e); err != nil {
						em.logger.Error(fmt.Sprintf("%s handler: %s", e.Type, err))
					}
				}()
			case <-em.ctx.Done():
				return
			}
		}
	}()
}

// Close waits for in-flight handlers to finish or ctx to expire.
func (em *EventRouter) Close(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		em.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// On registers the handler for an event type. The last registration wins.
func (em *EventRouter) On(eventType string, handler EventHandler) {
	em.listeners[eventType] = handler
}

// EmitTo marshals payload and publishes it to the channel.
func (em *EventRouter) EmitTo(channel, eventType string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	em.transport.Publish(channel, &Event{
		Type:    eventType,
		Payload: b,
	})
	return nil
}
