package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dpham/unified-inbox/internal/store"
)

// Subscriber consumes the realtime change-event feed over a websocket and
// forwards each frame to a handler. Delivery is at-least-once and
// best-effort: malformed frames are logged and skipped, and the
// connection reconnects with backoff on any error.
type Subscriber struct {
	url       string
	handler   func(store.ChangeEvent)
	reconnect time.Duration
	logger    *slog.Logger
}

// NewSubscriber creates a realtime change-event subscriber.
func NewSubscriber(
	url string,
	handler func(store.ChangeEvent),
	reconnect time.Duration,
	logger *slog.Logger,
) *Subscriber {
	if reconnect <= 0 {
		reconnect = 5 * time.Second
	}
	return &Subscriber{
		url:       url,
		handler:   handler,
		reconnect: reconnect,
		logger:    logger,
	}
}

// Start connects to the change-event feed and processes frames until the
// context is cancelled. It automatically reconnects on transient errors.
func (s *Subscriber) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.subscribe(ctx); err != nil {
				s.logger.Error("change feed connection error, reconnecting",
					"error", err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(s.reconnect):
					// backoff before reconnecting
				}
			}
		}
	}
}

func (s *Subscriber) subscribe(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial change feed: %w", err)
	}
	defer conn.Close()

	s.logger.Info("connected to change feed", "url", s.url)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		ev, err := parseFrame(message)
		if err != nil {
			s.logger.Error("failed to parse change frame", "error", err)
			continue
		}

		s.handler(ev)
	}
}

// parseFrame decodes one change-event frame. Frames without a table name
// carry nothing actionable and are rejected.
func parseFrame(data []byte) (store.ChangeEvent, error) {
	var ev store.ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return store.ChangeEvent{}, fmt.Errorf("unmarshal change event: %w", err)
	}
	if ev.Table == "" {
		return store.ChangeEvent{}, fmt.Errorf("change event missing table")
	}
	return ev, nil
}
