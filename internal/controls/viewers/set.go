package viewers

// objectSet is a set that remembers insertion order, so selections and
// saved state come back in a stable order.
type objectSet[T comparable] struct {
	index map[T]int
	items []T
}

func newObjectSet[T comparable]() *objectSet[T] {
	return &objectSet[T]{index: make(map[T]int)}
}

func (s *objectSet[T]) add(obj T) bool {
	if _, ok := s.index[obj]; ok {
		return false
	}
	s.index[obj] = len(s.items)
	s.items = append(s.items, obj)
	return true
}

func (s *objectSet[T]) remove(obj T) bool {
	i, ok := s.index[obj]
	if !ok {
		return false
	}
	delete(s.index, obj)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

func (s *objectSet[T]) has(obj T) bool {
	_, ok := s.index[obj]
	return ok
}

func (s *objectSet[T]) len() int { return len(s.items) }

func (s *objectSet[T]) list() []T {
	return append([]T(nil), s.items...)
}

func (s *objectSet[T]) clear() {
	s.index = make(map[T]int)
	s.items = nil
}

func (s *objectSet[T]) replace(objs []T) {
	s.clear()
	for _, obj := range objs {
		s.add(obj)
	}
}
