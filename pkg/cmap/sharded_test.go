package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestMap_SetGet(t *testing.T) {
	m := New[int]()

	m.Set("a", 1)
	m.Set("b", 2)

	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) should report absent")
	}
	if !m.Has("b") {
		t.Error("Has(b) = false, want true")
	}
}

func TestMap_Delete(t *testing.T) {
	m := New[string]()
	m.Set("k", "v")
	m.Delete("k")

	if m.Has("k") {
		t.Error("key should be gone after Delete")
	}

	// Deleting an absent key is a no-op.
	m.Delete("k")
}

func TestMap_CountClear(t *testing.T) {
	m := New[int]()
	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i)
	}

	if got := m.Count(); got != 100 {
		t.Errorf("Count = %d, want 100", got)
	}

	m.Clear()
	if got := m.Count(); got != 0 {
		t.Errorf("Count after Clear = %d, want 0", got)
	}
}

func TestMap_Range(t *testing.T) {
	m := New[int]()
	for i := 0; i < 10; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i)
	}

	seen := 0
	m.Range(func(_ string, _ int) bool {
		seen++
		return true
	})
	if seen != 10 {
		t.Errorf("Range visited %d items, want 10", seen)
	}

	// Early stop.
	seen = 0
	m.Range(func(_ string, _ int) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Errorf("Range with early stop visited %d items, want 1", seen)
	}
}

func TestMap_InvalidShardCount(t *testing.T) {
	for _, n := range []int{0, -1, 3, 17} {
		m := NewWithShards[int](n)
		if len(m.shards) != DefaultShardCount {
			t.Errorf("NewWithShards(%d) created %d shards, want %d", n, len(m.shards), DefaultShardCount)
		}
	}
}

func TestMap_Concurrent(t *testing.T) {
	m := New[int]()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				key := fmt.Sprintf("key-%d-%d", g, i)
				m.Set(key, i)
				if v, ok := m.Get(key); !ok || v != i {
					t.Errorf("Get(%s) = %d, %v; want %d, true", key, v, ok, i)
				}
			}
		}(g)
	}
	wg.Wait()

	if got := m.Count(); got != 8000 {
		t.Errorf("Count = %d, want 8000", got)
	}
}
