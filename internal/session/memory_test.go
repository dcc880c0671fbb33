package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryStore_GetPut(t *testing.T) {
	store := NewMemoryStore[string]()

	ctx := context.Background()
	id := "test-id"
	value := "test-value"

	if err := store.Put(ctx, id, value); err != nil {
		t.Fatalf("Unexpected error on Put: %v", err)
	}

	got, ok, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Unexpected error on Get: %v", err)
	}
	if !ok {
		t.Error("Expected value to exist")
	}
	if got != value {
		t.Errorf("Expected value '%s', got '%s'", value, got)
	}

	_, ok, err = store.Get(ctx, "non-existent")
	if err != nil {
		t.Fatalf("Unexpected error on Get: %v", err)
	}
	if ok {
		t.Error("Expected value to not exist")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore[int]()
	ctx := context.Background()

	_ = store.Put(ctx, "a", 1)
	_ = store.Put(ctx, "b", 2)
	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Unexpected error on Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "a"); ok {
		t.Error("Expected deleted value to be gone")
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 value left, got %d", store.Len())
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("Deleting a missing key should not fail: %v", err)
	}
}

func TestMemoryStore_NewID(t *testing.T) {
	store := NewMemoryStore[string]()

	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := store.NewID()
		if ids[id] {
			t.Errorf("Duplicate ID generated: %s", id)
		}
		ids[id] = true

		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("Expected a UUID, got %q: %v", id, err)
		}
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore[int]()

	ctx := context.Background()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(id int) {
			if err := store.Put(ctx, "key", id); err != nil {
				t.Errorf("Error in concurrent Put: %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	_, ok, err := store.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Unexpected error on Get: %v", err)
	}
	if !ok {
		t.Error("Expected value to exist after concurrent writes")
	}
}
