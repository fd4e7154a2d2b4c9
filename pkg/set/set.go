package set

// Set is an insertion-ordered set: Add keeps the first occurrence of every
// item and remembers the order items were first seen in.
type Set[T comparable] struct {
	items map[T]struct{}
	order []T
}

func (s *Set[T]) Add(item T) bool {
	if s.items == nil {
		s.items = make(map[T]struct{}, 1)
	}

	if _, ok := s.items[item]; ok {
		return false
	}
	s.items[item] = struct{}{}
	s.order = append(s.order, item)
	return true
}

func (s *Set[T]) Has(item T) bool {
	_, ok := s.items[item]
	return ok
}

func (s *Set[T]) Len() int {
	return len(s.order)
}

// ToList returns the items in first-seen order.
func (s *Set[T]) ToList() []T {
	result := make([]T, len(s.order))
	copy(result, s.order)
	return result
}
