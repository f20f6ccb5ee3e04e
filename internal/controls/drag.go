package controls

import "sync"

// DragSlot holds the single in-process drag payload. A drop target consumes
// it once; a new drag replaces whatever was left.
type DragSlot struct {
	mu      sync.Mutex
	payload []any
	active  bool
}

// NewDragSlot returns an empty slot.
func NewDragSlot() *DragSlot {
	return &DragSlot{}
}

// Start stores the dragged objects.
func (s *DragSlot) Start(objs []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = append([]any(nil), objs...)
	s.active = true
}

// Peek returns the payload without consuming it, for drop-target feedback.
func (s *DragSlot) Peek() ([]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payload, s.active
}

// Consume returns the payload and clears the slot.
func (s *DragSlot) Consume() ([]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payload, s.active
	s.payload = nil
	s.active = false
	return p, ok
}

// Clear drops the payload, for cancelled drags.
func (s *DragSlot) Clear() {
	s.Consume()
}
