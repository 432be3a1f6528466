package cache

import (
	"sync"
	"testing"
)

func TestStoreGetMissing(t *testing.T) {
	store := NewStore[string, int]()
	if _, ok := store.Get("missing"); ok {
		t.Fatal("expected no value")
	}
}

func TestStoreInsertGetRemove(t *testing.T) {
	store := NewStore[string, int]()
	store.Insert("a", 1)
	store.Insert("a", 2)

	value, ok := store.Get("a")
	if !ok {
		t.Fatal("expected value")
	}
	if value != 2 {
		t.Fatalf("got %d, want 2", value)
	}

	removed, ok := store.Remove("a")
	if !ok || removed != 2 {
		t.Fatalf("got (%d, %t), want (2, true)", removed, ok)
	}
	if _, ok := store.Get("a"); ok {
		t.Fatal("expected no value after remove")
	}
	if _, ok := store.Remove("a"); ok {
		t.Fatal("expected second remove to miss")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Insert(i%8, i)
			store.Get(i % 8)
			store.ForEach(func(int, int) {})
		}(i)
	}
	wg.Wait()

	if store.Len() != 8 {
		t.Fatalf("got %d entries, want 8", store.Len())
	}
}
