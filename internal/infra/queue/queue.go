// Package queue delivers background jobs to a handler, either in process or
// through a Valkey list.
package queue

import (
	"context"
	"log/slog"
	"sync"

	"github.com/emersonart/printshop/internal/domain/catalog"
)

// Handler executes one job.
type Handler func(ctx context.Context, name string, payload map[string]any)

// HandlerQueue supports setting a handler for job delivery.
type HandlerQueue interface {
	catalog.JobQueue
	SetHandler(handler Handler)
}

// Mux routes jobs to handlers by name.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewMux constructs an empty router.
func NewMux(logger *slog.Logger) *Mux {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mux{handlers: make(map[string]Handler), logger: logger.With("component", "queue.mux")}
}

// Handle registers h for jobs called name.
func (m *Mux) Handle(name string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[name] = h
}

// Dispatch is a Handler that forwards to the registered handler.
func (m *Mux) Dispatch(ctx context.Context, name string, payload map[string]any) {
	m.mu.RLock()
	h, ok := m.handlers[name]
	m.mu.RUnlock()
	if !ok {
		m.logger.Warn("no handler for job", "job", name)
		return
	}
	h(ctx, name, payload)
}
