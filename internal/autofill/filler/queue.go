package filler

// candidate is a collected control awaiting its step.
type candidate struct {
	index   int
	control Control
	desc    Descriptor
}

// queue is the run-scoped worklist. all keeps the collection snapshot so radio
// groups can be resolved regardless of what has already been consumed.
type queue struct {
	all     []candidate
	pending []candidate
}

func newQueue(all []candidate) *queue {
	pending := make([]candidate, len(all))
	copy(pending, all)
	return &queue{all: all, pending: pending}
}

func (q *queue) Len() int {
	return len(q.pending)
}

func (q *queue) Pop() candidate {
	c := q.pending[0]
	q.pending = q.pending[1:]
	return c
}

// radioGroup returns every collected radio sharing c's name, in document order.
// A nameless radio is a group of one.
func (q *queue) radioGroup(c candidate) []candidate {
	if c.desc.Name == "" {
		return []candidate{c}
	}

	var group []candidate
	for _, other := range q.all {
		if other.desc.Type == TypeRadio && other.desc.Name == c.desc.Name {
			group = append(group, other)
		}
	}
	return group
}

// removeGroup drops every pending member of group.
func (q *queue) removeGroup(group []candidate) {
	members := make(map[int]bool, len(group))
	for _, c := range group {
		members[c.index] = true
	}

	kept := q.pending[:0]
	for _, c := range q.pending {
		if !members[c.index] {
			kept = append(kept, c)
		}
	}
	q.pending = kept
}
