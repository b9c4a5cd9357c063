package core

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Allocator issues the short identifiers shown next to every message.
// Identifiers are unique among live sessions; once released they may be
// reused.
type Allocator struct {
	mu    sync.Mutex
	inUse map[string]struct{}
}

// NewAllocator constructs an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{inUse: make(map[string]struct{})}
}

// Allocate returns the first group of a fresh UUID, redrawing on the
// unlikely collision with an identifier still in use.
func (a *Allocator) Allocate() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	for {
		id, _, _ := strings.Cut(uuid.NewString(), "-")
		if _, taken := a.inUse[id]; taken {
			continue
		}
		a.inUse[id] = struct{}{}
		return id
	}
}

// Release frees an identifier after its session is gone. Releasing an
// unknown identifier is a no-op.
func (a *Allocator) Release(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inUse, id)
}
