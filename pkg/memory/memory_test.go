package memory

import (
	"context"
	"fmt"
	"testing"
)

func TestStoreRequiresNonEmptyKey(t *testing.T) {
	b := NewInMemoryBackend(nil)
	if _, err := b.Store(context.Background(), "", "x", nil); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestStoreOverwritesExistingKey(t *testing.T) {
	b := NewInMemoryBackend(nil)
	b.Store(context.Background(), "contract_type", "NDA", nil)
	b.Store(context.Background(), "contract_type", "MSA", nil)

	if b.EntryCount() != 1 {
		t.Fatalf("entry count = %d, want 1", b.EntryCount())
	}
	entries := b.AllEntries()
	if entries[0].Value != "MSA" {
		t.Errorf("value = %v, want MSA (overwritten)", entries[0].Value)
	}
}

func TestRetrieveScoresExactKeyMatchHighest(t *testing.T) {
	b := NewInMemoryBackend(nil)
	b.Store(context.Background(), "contract", "a non-disclosure agreement", nil)
	b.Store(context.Background(), "contract_summary", "short", nil)
	b.Store(context.Background(), "unrelated", "mentions a contract in passing", nil)

	results, err := b.Retrieve(context.Background(), "contract", 5, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Key != "contract" || results[0].Score != 1.0 {
		t.Errorf("top result = %+v, want exact match scored 1.0", results[0])
	}
	if results[1].Key != "contract_summary" || results[1].Score != 0.7 {
		t.Errorf("second result = %+v, want key-contains match scored 0.7", results[1])
	}
	if results[2].Key != "unrelated" || results[2].Score != 0.4 {
		t.Errorf("third result = %+v, want value-contains match scored 0.4", results[2])
	}
}

func TestRetrieveCapsAtTopK(t *testing.T) {
	b := NewInMemoryBackend(nil)
	for i := 0; i < 10; i++ {
		b.Store(context.Background(), fmt.Sprintf("key%d", i), "contract", nil)
	}
	results, err := b.Retrieve(context.Background(), "contract", 3, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 (top_k cap)", len(results))
	}
}

func TestRetrieveFiltersByScope(t *testing.T) {
	b := NewInMemoryBackend(nil)
	b.Store(context.Background(), "a", "contract", map[string]any{"scope": "legal"})
	b.Store(context.Background(), "b", "contract", map[string]any{"scope": "finance"})

	results, err := b.Retrieve(context.Background(), "contract", 5, "legal")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 || results[0].Key != "a" {
		t.Errorf("expected only scope=legal entry, got %+v", results)
	}
}

func TestClearAllAndByScope(t *testing.T) {
	b := NewInMemoryBackend(nil)
	b.Store(context.Background(), "a", "x", map[string]any{"scope": "legal"})
	b.Store(context.Background(), "b", "x", map[string]any{"scope": "finance"})

	n, err := b.Clear(context.Background(), "legal")
	if err != nil || n != 1 {
		t.Fatalf("Clear(legal) = %d, %v", n, err)
	}
	if b.EntryCount() != 1 {
		t.Fatalf("entry count after scoped clear = %d, want 1", b.EntryCount())
	}

	n, err = b.Clear(context.Background(), "")
	if err != nil || n != 1 {
		t.Fatalf("Clear(all) = %d, %v", n, err)
	}
	if b.EntryCount() != 0 {
		t.Fatalf("entry count after full clear = %d, want 0", b.EntryCount())
	}
}
