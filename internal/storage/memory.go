package storage

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryGateway is an in-process Gateway used by tests and local dry runs.
type MemoryGateway struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{objects: make(map[string][]byte)}
}

func (g *MemoryGateway) Put(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[key] = data
	return nil
}

func (g *MemoryGateway) Exists(ctx context.Context, key string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.objects[key]
	return ok, nil
}

func (g *MemoryGateway) Delete(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.objects, key)
	return nil
}

func (g *MemoryGateway) List(ctx context.Context, prefix string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var keys []string
	for key := range g.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len reports the number of stored objects.
func (g *MemoryGateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.objects)
}

// Get returns the stored bytes for key.
func (g *MemoryGateway) Get(key string) ([]byte, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	data, ok := g.objects[key]
	return data, ok
}
