package queue

import (
	"context"
	"encoding/json"
	"sync"
)

// ImmediateQueue runs the handler in a goroutine on enqueue. The job outlives
// the enqueuing request, so its context is detached from cancellation.
type ImmediateQueue struct {
	mu      sync.RWMutex
	handler Handler
	wg      sync.WaitGroup
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(handler Handler) *ImmediateQueue {
	return &ImmediateQueue{handler: handler}
}

// SetHandler replaces the handler used for queued jobs.
func (q *ImmediateQueue) SetHandler(handler Handler) {
	q.mu.Lock()
	q.handler = handler
	q.mu.Unlock()
}

// Enqueue invokes the handler asynchronously with a JSON normalized payload,
// matching what a Valkey round trip delivers.
func (q *ImmediateQueue) Enqueue(ctx context.Context, name string, payload any) error {
	typed, err := normalize(payload)
	if err != nil {
		return err
	}
	q.mu.RLock()
	handler := q.handler
	q.mu.RUnlock()
	if handler == nil {
		return nil
	}
	jobCtx := context.WithoutCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		handler(jobCtx, name, typed)
	}()
	return nil
}

// Wait blocks until every enqueued job has returned.
func (q *ImmediateQueue) Wait() {
	q.wg.Wait()
}

func normalize(payload any) (map[string]any, error) {
	if payload == nil {
		return map[string]any{}, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	typed := map[string]any{}
	if err := json.Unmarshal(encoded, &typed); err != nil {
		return map[string]any{}, nil
	}
	return typed, nil
}

var _ HandlerQueue = (*ImmediateQueue)(nil)
