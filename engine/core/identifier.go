package core

// HandleAllocator hands out opaque, monotonically increasing handles.
// Zero is never returned and a handle is never issued twice by the same
// allocator.
type HandleAllocator struct {
	next uint64
}

func NewHandleAllocator() *HandleAllocator {
	return &HandleAllocator{}
}

func (h *HandleAllocator) Next() uint64 {
	h.next++
	return h.next
}

// Issued reports how many handles have been handed out so far.
func (h *HandleAllocator) Issued() uint64 {
	return h.next
}
