// Package sink holds render.Sink adapters.
package sink

import (
	"context"
	"sort"
	"sync"

	"github.com/emersonart/printshop/internal/domain/render"
)

// MemorySink keeps variants in memory. The caller still holds the bytes, so
// Save reports no location.
type MemorySink struct {
	mu       sync.RWMutex
	variants map[string]render.Variant
}

// NewMemorySink constructs the sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{variants: make(map[string]render.Variant)}
}

// Save stores a copy of the variant under its file name.
func (s *MemorySink) Save(_ context.Context, variant render.Variant) (string, error) {
	stored := variant
	stored.Data = append([]byte(nil), variant.Data...)
	s.mu.Lock()
	s.variants[variant.FileName] = stored
	s.mu.Unlock()
	return "", nil
}

// Get returns a stored variant.
func (s *MemorySink) Get(fileName string) (render.Variant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.variants[fileName]
	return v, ok
}

// Names lists stored file names in order.
func (s *MemorySink) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.variants))
	for name := range s.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ render.Sink = (*MemorySink)(nil)
