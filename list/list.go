package list

// node is one element of the chain. Nodes are owned exclusively by the
// list that created them.
type node[T comparable] struct {
	value T
	prev  *node[T]
	next  *node[T]

	// gen is the generation assigned at insertion. It is zeroed when the
	// node is unlinked so that stale Locations can be detected.
	gen uint64
}

// Location is an opaque handle naming one node in a List. A Location stays
// valid until the node it names is removed by any means; after that, every
// operation taking the Location reports ErrInvalidLocation.
type Location[T comparable] struct {
	owner *List[T]
	n     *node[T]
	gen   uint64
}

// List is a doubly linked list of values. The zero value is not usable;
// create lists with New.
//
// Contract:
// - Concurrency: not safe for concurrent use; callers serialize externally.
// - Handles: Append returns a Location usable for O(1) access and removal.
// - Errors: stale handles and empty-list removals return typed errors.
type List[T comparable] struct {
	head  *node[T]
	tail  *node[T]
	count int

	// mods counts structural mutations; traversals snapshot it to detect
	// modification mid-walk.
	mods uint64

	// gens is the generation source for new nodes. Starts at 1 so that a
	// zero generation always means "removed".
	gens uint64
}

// New creates an empty list.
func New[T comparable]() *List[T] {
	return &List[T]{}
}

// Len returns the number of values in the list.
func (l *List[T]) Len() int {
	return l.count
}

// Append adds a value at the tail of the list and returns its Location.
// O(1).
func (l *List[T]) Append(v T) Location[T] {
	l.gens++
	n := &node[T]{value: v, gen: l.gens, prev: l.tail}
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.count++
	l.mods++
	return Location[T]{owner: l, n: n, gen: n.gen}
}

// locate resolves a Location to its live node, or reports staleness.
func (l *List[T]) locate(loc Location[T]) (*node[T], error) {
	if loc.owner != l || loc.n == nil || loc.n.gen == 0 || loc.n.gen != loc.gen {
		return nil, ErrInvalidLocation
	}
	return loc.n, nil
}

// ValueAt returns the value stored at the given Location. O(1).
func (l *List[T]) ValueAt(loc Location[T]) (T, error) {
	n, err := l.locate(loc)
	if err != nil {
		var zero T
		return zero, err
	}
	return n.value, nil
}

// RemoveAt unlinks the node named by the given Location. O(1).
// The Location, and any copy of it, is invalid afterward.
func (l *List[T]) RemoveAt(loc Location[T]) error {
	n, err := l.locate(loc)
	if err != nil {
		return err
	}
	l.unlink(n)
	return nil
}

// RemoveFirst removes the value at the head of the list. O(1).
func (l *List[T]) RemoveFirst() error {
	if l.head == nil {
		return ErrEmptyList
	}
	l.unlink(l.head)
	return nil
}

// RemoveLast removes the value at the tail of the list. O(1).
func (l *List[T]) RemoveLast() error {
	if l.tail == nil {
		return ErrEmptyList
	}
	l.unlink(l.tail)
	return nil
}

// First returns the value at the head without removing it.
func (l *List[T]) First() (T, bool) {
	if l.head == nil {
		var zero T
		return zero, false
	}
	return l.head.value, true
}

// Last returns the value at the tail without removing it.
func (l *List[T]) Last() (T, bool) {
	if l.tail == nil {
		var zero T
		return zero, false
	}
	return l.tail.value, true
}

// RemoveValue removes the first node holding the given value. O(n).
func (l *List[T]) RemoveValue(v T) error {
	for n := l.head; n != nil; n = n.next {
		if n.value == v {
			l.unlink(n)
			return nil
		}
	}
	return ErrNotFound
}

// LocationOf returns the Location of the first node holding the given
// value. O(n).
func (l *List[T]) LocationOf(v T) (Location[T], error) {
	for n := l.head; n != nil; n = n.next {
		if n.value == v {
			return Location[T]{owner: l, n: n, gen: n.gen}, nil
		}
	}
	return Location[T]{}, ErrNotFound
}

// RemoveAll detaches every node and resets the count to zero. Every
// outstanding Location is invalidated. O(n).
func (l *List[T]) RemoveAll() {
	n := l.head
	for n != nil {
		next := n.next
		n.prev, n.next = nil, nil
		n.gen = 0
		n = next
	}
	l.head, l.tail = nil, nil
	l.count = 0
	l.mods++
}

// Each walks the list from head to tail, calling fn for each value until fn
// returns false or the walk completes. Structural mutation of the list from
// inside fn aborts the walk with ErrConcurrentModification.
func (l *List[T]) Each(fn func(v T) bool) error {
	start := l.mods
	for n := l.head; n != nil; n = n.next {
		if !fn(n.value) {
			return nil
		}
		// Checked after fn as well as before advancing: unlinking the
		// current node clears its links, which would otherwise end the
		// walk as though it completed.
		if l.mods != start {
			return ErrConcurrentModification
		}
	}
	return nil
}

// Values returns the list contents in head-to-tail order.
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.count)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.value)
	}
	return out
}

// unlink detaches n from the chain and invalidates its handles.
func (l *List[T]) unlink(n *node[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	n.gen = 0
	l.count--
	l.mods++
}
