package cache

import (
	"cmp"
	"slices"
)

// Set is a value set used for id members of snapshots. Like the snapshots
// that hold them, sets are replaced wholesale: clone before changing.
type Set[T cmp.Ordered] map[T]struct{}

func NewSet[T cmp.Ordered](values ...T) Set[T] {
	set := make(Set[T], len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

func (s Set[T]) Contains(value T) bool {
	_, ok := s[value]
	return ok
}

func (s Set[T]) Add(value T) {
	s[value] = struct{}{}
}

func (s Set[T]) Remove(value T) {
	delete(s, value)
}

func (s Set[T]) Clone() Set[T] {
	clone := make(Set[T], len(s))
	for value := range s {
		clone[value] = struct{}{}
	}
	return clone
}

// Values returns the set's members in ascending order.
func (s Set[T]) Values() []T {
	values := make([]T, 0, len(s))
	for value := range s {
		values = append(values, value)
	}
	slices.Sort(values)
	return values
}
