package sink

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"collection-governance/internal/domain"
	"collection-governance/internal/observability"
)

// ErrHubClosed is returned when publishing to a closed hub.
var ErrHubClosed = errors.New("hub closed")

// HubConfig configures a Hub.
type HubConfig struct {
	// SendBuffer is the number of messages queued per subscriber. A subscriber
	// whose queue is full is disconnected.
	SendBuffer int
	// WriteTimeout bounds a single websocket write.
	WriteTimeout time.Duration
}

// DefaultHubConfig returns default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		SendBuffer:   256,
		WriteTimeout: 10 * time.Second,
	}
}

// Hub broadcasts event envelopes to websocket subscribers.
// It is both a Sink and the http.Handler serving the stream.
type Hub struct {
	config   HubConfig
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*subscriber]struct{}
	closed  bool
	wg      sync.WaitGroup
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. config may be nil, logger may be nil.
func NewHub(config *HubConfig, logger *log.Logger) *Hub {
	cfg := DefaultHubConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		config: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request and streams events until the peer leaves
// or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("event stream upgrade: %v", err)
		return
	}

	s := &subscriber{conn: conn, send: make(chan []byte, h.config.SendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[s] = struct{}{}
	observability.UpdateStreamSubscribers(len(h.clients))
	h.wg.Add(2)
	h.mu.Unlock()

	go h.writeLoop(s)
	go h.readLoop(s)
}

// Publish queues events for every subscriber.
func (h *Hub) Publish(_ context.Context, events []*domain.Event) error {
	msgs := make([][]byte, 0, len(events))
	for _, ev := range events {
		data, err := Encode(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, data)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}

	for s := range h.clients {
		for _, msg := range msgs {
			select {
			case s.send <- msg:
			default:
				h.logger.Printf("event stream: subscriber %s too slow, disconnecting", s.conn.RemoteAddr())
				h.removeLocked(s)
			}
			if _, ok := h.clients[s]; !ok {
				break
			}
		}
	}
	return nil
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber and waits for their goroutines.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for s := range h.clients {
		h.removeLocked(s)
	}
	h.mu.Unlock()

	h.wg.Wait()
	return nil
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
}

func (h *Hub) removeLocked(s *subscriber) {
	if _, ok := h.clients[s]; !ok {
		return
	}
	delete(h.clients, s)
	close(s.send)
	observability.UpdateStreamSubscribers(len(h.clients))
}

// writeLoop drains the send queue. A closed queue ends the stream with a
// close frame.
func (h *Hub) writeLoop(s *subscriber) {
	defer h.wg.Done()
	defer s.conn.Close()

	for msg := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(s)
			for range s.send {
			}
			return
		}
	}

	deadline := time.Now().Add(h.config.WriteTimeout)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), deadline)
}

// readLoop discards inbound frames and detects disconnects.
func (h *Hub) readLoop(s *subscriber) {
	defer h.wg.Done()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			h.remove(s)
			return
		}
	}
}
