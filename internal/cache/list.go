package cache

// node is an element of the recency list. It keeps its key so eviction can
// delete the map entry.
type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// list is a doubly-linked recency list. front is the most recently used.
type list[K comparable, V any] struct {
	front, back *node[K, V]
	n           int
}

func (l *list[K, V]) pushFront(nd *node[K, V]) {
	nd.prev = nil
	nd.next = l.front
	if l.front != nil {
		l.front.prev = nd
	} else {
		l.back = nd
	}
	l.front = nd
	l.n++
}

func (l *list[K, V]) remove(nd *node[K, V]) {
	if nd.prev != nil {
		nd.prev.next = nd.next
	} else {
		l.front = nd.next
	}
	if nd.next != nil {
		nd.next.prev = nd.prev
	} else {
		l.back = nd.prev
	}
	nd.prev, nd.next = nil, nil
	l.n--
}

func (l *list[K, V]) moveToFront(nd *node[K, V]) {
	if nd == l.front {
		return
	}
	l.remove(nd)
	l.pushFront(nd)
}
