package domain

// IDAllocator hands out per-kind monotonically increasing ids starting at
// 1. Ids are never reused, even after the entity is removed. The allocator
// is owned by whichever component constructs entities, so construction
// stays deterministic in tests.
type IDAllocator struct {
	next map[string]int
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: make(map[string]int)}
}

func (a *IDAllocator) Next(kind string) int {
	a.next[kind]++
	return a.next[kind]
}

// Reserve marks id as already in use so later allocations stay above it.
// Needed after loading a persisted graph.
func (a *IDAllocator) Reserve(kind string, id int) {
	if id > a.next[kind] {
		a.next[kind] = id
	}
}
