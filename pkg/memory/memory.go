// Package memory provides the persistent semantic memory layer used by
// AXON's remember/recall statements and memory declarations.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Bemarking/axon-ai/pkg/trace"
)

// Entry is a single value stored in semantic memory.
type Entry struct {
	Key       string
	Value     any
	Metadata  map[string]any
	Score     float64
	Timestamp time.Time
}

// Backend is the storage interface every memory implementation must
// satisfy. Implementations should be safe for I/O-bound work (vector
// databases, external APIs) behind the same blocking-call convention
// the rest of the runtime uses: a context.Context for cancellation.
type Backend interface {
	Store(ctx context.Context, key string, value any, metadata map[string]any) (Entry, error)
	Retrieve(ctx context.Context, query string, topK int, scope string) ([]Entry, error)
	Clear(ctx context.Context, scope string) (int, error)
}

// InMemoryBackend is a map-based memory backend for testing and simple
// use cases. Retrieval uses substring matching on keys and string
// representations of values — no vector embeddings. Production
// deployments should back onto a vector database instead.
type InMemoryBackend struct {
	store  map[string]Entry
	tracer *trace.Tracer
}

// NewInMemoryBackend creates an empty InMemoryBackend.
func NewInMemoryBackend(tracer *trace.Tracer) *InMemoryBackend {
	return &InMemoryBackend{store: make(map[string]Entry), tracer: tracer}
}

// SetTracer rebinds the tracer emitting memory read/write events. The
// executor calls this at the start of each Execute so a long-lived
// memory backend traces against the tracer for the run in progress
// rather than whichever run constructed it.
func (b *InMemoryBackend) SetTracer(tracer *trace.Tracer) {
	b.tracer = tracer
}

// Store saves a value by key, overwriting any existing entry.
func (b *InMemoryBackend) Store(ctx context.Context, key string, value any, metadata map[string]any) (Entry, error) {
	if key == "" {
		return Entry{}, fmt.Errorf("memory key must not be empty")
	}

	entry := Entry{
		Key:       key,
		Value:     value,
		Metadata:  metadata,
		Timestamp: time.Now(),
	}
	b.store[key] = entry

	if b.tracer != nil {
		b.tracer.Emit(trace.MemoryWrite, "", map[string]any{
			"key":        key,
			"value_type": fmt.Sprintf("%T", value),
		}, 0)
	}

	return entry, nil
}

// Retrieve finds entries by substring match on key, scored by match
// quality: exact key match 1.0, key contains query 0.7, value string
// contains query 0.4. Results are sorted by score descending, then by
// timestamp descending, and capped at topK.
func (b *InMemoryBackend) Retrieve(ctx context.Context, query string, topK int, scope string) ([]Entry, error) {
	queryLower := strings.ToLower(query)
	var candidates []Entry

	for _, entry := range b.store {
		if scope != "" {
			entryScope, _ := entry.Metadata["scope"].(string)
			if entryScope != scope {
				continue
			}
		}

		score := 0.0
		switch {
		case strings.ToLower(entry.Key) == queryLower:
			score = 1.0
		case strings.Contains(strings.ToLower(entry.Key), queryLower):
			score = 0.7
		case strings.Contains(strings.ToLower(fmt.Sprintf("%v", entry.Value)), queryLower):
			score = 0.4
		}

		if score > 0 {
			scored := entry
			scored.Score = score
			candidates = append(candidates, scored)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Timestamp.After(candidates[j].Timestamp)
	})

	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}

	if b.tracer != nil {
		b.tracer.Emit(trace.MemoryRead, "", map[string]any{
			"query":         query,
			"results_count": len(candidates),
			"top_k":         topK,
		}, 0)
	}

	return candidates, nil
}

// Clear removes entries, optionally filtered by scope, returning the
// number of entries removed.
func (b *InMemoryBackend) Clear(ctx context.Context, scope string) (int, error) {
	if scope == "" {
		count := len(b.store)
		b.store = make(map[string]Entry)
		return count, nil
	}

	var keysToRemove []string
	for k, v := range b.store {
		entryScope, _ := v.Metadata["scope"].(string)
		if entryScope == scope {
			keysToRemove = append(keysToRemove, k)
		}
	}
	for _, k := range keysToRemove {
		delete(b.store, k)
	}
	return len(keysToRemove), nil
}

// EntryCount reports the number of entries currently stored.
func (b *InMemoryBackend) EntryCount() int {
	return len(b.store)
}

// AllEntries returns all stored entries, for testing/debugging.
func (b *InMemoryBackend) AllEntries() []Entry {
	out := make([]Entry, 0, len(b.store))
	for _, e := range b.store {
		out = append(out, e)
	}
	return out
}
