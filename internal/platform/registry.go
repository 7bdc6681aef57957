package platform

// Registry stores records under stable handles. Handles are never reused
// within one registry, so a stale handle looks up as nil instead of aliasing
// a newer record.
type Registry[K ~uint32, T any] struct {
	next  K
	items map[K]*T
	order []K
}

// Add stores v and returns its handle. With first set the record is placed
// at the front of the iteration order.
func (r *Registry[K, T]) Add(v *T, first bool) K {
	if r.items == nil {
		r.items = make(map[K]*T)
	}
	r.next++
	id := r.next
	r.items[id] = v
	if first {
		r.order = append([]K{id}, r.order...)
	} else {
		r.order = append(r.order, id)
	}
	return id
}

// Get returns the record for id, or nil.
func (r *Registry[K, T]) Get(id K) *T {
	if id == 0 {
		return nil
	}
	return r.items[id]
}

// Remove deletes id and reports whether it was present.
func (r *Registry[K, T]) Remove(id K) bool {
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	for i, k := range r.order {
		if k == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns the records in iteration order.
func (r *Registry[K, T]) All() []*T {
	out := make([]*T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// Len returns the number of live records.
func (r *Registry[K, T]) Len() int {
	return len(r.order)
}
