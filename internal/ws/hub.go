package ws

import (
	"context"
	"sync"

	"number_rush/internal/besttime"
	"number_rush/internal/game"
	"number_rush/internal/logger"
	"number_rush/internal/service"
)

// Deps are shared by every connection of a hub.
type Deps struct {
	Factory *game.Factory
	Results *service.ResultService
	// BestKV returns the personal best storage of a device.
	BestKV func(deviceID string) besttime.KV
}

// Hub tracks live connections so they can be counted and torn down together.
type Hub struct {
	deps Deps

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub(deps Deps) *Hub {
	if deps.Factory == nil {
		deps.Factory = game.NewFactory(game.BoardDistractors)
	}
	if deps.BestKV == nil {
		deps.BestKV = func(string) besttime.KV { return besttime.NewMemoryKV() }
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[string]*Client),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	n := len(h.clients)
	h.mu.Unlock()
	ActiveSessions.Set(float64(n))
	logger.Debug("ws client registered", "conn", c.ID, "device", c.DeviceID, "active", n)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	n := len(h.clients)
	h.mu.Unlock()
	ActiveSessions.Set(float64(n))
	logger.Debug("ws client unregistered", "conn", c.ID, "active", n)
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown stops every session and closes its connection.
func (h *Hub) Shutdown() {
	h.cancel()

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.Conn.Close()
	}
	logger.Info("ws hub stopped", "closed", len(clients))
}
