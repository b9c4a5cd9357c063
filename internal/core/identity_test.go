package core

import (
	"sync"
	"testing"
)

func TestAllocatorUniqueUnderConcurrency(t *testing.T) {
	const n = 10000

	alloc := NewAllocator()
	ids := make(chan string, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			ids <- alloc.Allocate()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, n)
	for id := range ids {
		if id == "" {
			t.Fatal("empty identifier allocated")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("identifier %q allocated twice", id)
		}
		seen[id] = struct{}{}
	}
	if len(seen) != n {
		t.Fatalf("expected %d identifiers, got %d", n, len(seen))
	}
}

func TestAllocatorReleaseAllowsReuse(t *testing.T) {
	alloc := NewAllocator()

	id := alloc.Allocate()
	alloc.Release(id)

	// Releasing an unknown identifier is a no-op.
	alloc.Release("not-allocated")

	if _, taken := alloc.inUse[id]; taken {
		t.Fatalf("identifier %q still marked in use after release", id)
	}
}
