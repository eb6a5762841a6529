package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
)

const keepAliveInterval = 15 * time.Second

// SSEBroker fans entity change notices out to connected dashboards.
type SSEBroker struct {
	logger  *slog.Logger
	clients map[chan []byte]struct{}
	mu      sync.RWMutex
	notices chan domain.ChangeNotice
}

// NewSSEBroker creates a new SSEBroker and starts its processing loop.
func NewSSEBroker(ctx context.Context, logger *slog.Logger) *SSEBroker {
	broker := &SSEBroker{
		logger:  logger.With("component", "sse_broker"),
		clients: make(map[chan []byte]struct{}),
		notices: make(chan domain.ChangeNotice, 1000),
	}
	go broker.run(ctx)
	return broker
}

// ServeHTTP handles GET /api/events.
func (b *SSEBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	messageChan := make(chan []byte, 16)
	b.addClient(messageChan)
	defer b.removeClient(messageChan)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messageChan:
			if !ok {
				return // Channel was closed
			}
			if msg == nil {
				fmt.Fprint(w, ": keep-alive\n\n")
			} else {
				fmt.Fprintf(w, "event: change\ndata: %s\n\n", msg)
			}
			flusher.Flush()
		}
	}
}

// Notify queues a change notice for broadcast. It never blocks the write path.
func (b *SSEBroker) Notify(notice domain.ChangeNotice) {
	select {
	case b.notices <- notice:
	default:
		b.logger.Warn("SSE notice channel is full, dropping notice", "collection", notice.Collection, "entity_id", notice.EntityID)
	}
}

// Clients returns the number of connected subscribers.
func (b *SSEBroker) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *SSEBroker) addClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
	b.logger.Info("SSE client connected")
}

func (b *SSEBroker) removeClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
		b.logger.Info("SSE client disconnected")
	}
}

func (b *SSEBroker) broadcast(msg []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client <- msg:
		default:
			// Slow client; skip rather than stall everyone else.
		}
	}
}

// run is the main processing loop for the broker. A nil message is a
// keep-alive.
func (b *SSEBroker) run(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case notice := <-b.notices:
			jsonData, err := json.Marshal(notice)
			if err != nil {
				b.logger.Error("Failed to marshal SSE message", "error", err)
				continue
			}
			b.broadcast(jsonData)
		case <-ticker.C:
			b.broadcast(nil)
		}
	}
}
