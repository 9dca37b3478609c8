package intersection

// PriorityQueue orders car sequences by the tick on which they finished
// their stop. It is a strict FIFO without duplicates.
type PriorityQueue struct {
	items []int
}

// Push appends seq unless it is already queued.
func (q *PriorityQueue) Push(seq int) bool {
	if q.Contains(seq) {
		return false
	}
	q.items = append(q.items, seq)
	return true
}

// Pop removes and returns the head.
func (q *PriorityQueue) Pop() (int, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

// Remove drops seq from anywhere in the queue, keeping the order of the rest.
func (q *PriorityQueue) Remove(seq int) bool {
	for i, s := range q.items {
		if s == seq {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Head returns the car with priority.
func (q *PriorityQueue) Head() (int, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	return q.items[0], true
}

// Second returns the car whose right of way is resolved against the head.
func (q *PriorityQueue) Second() (int, bool) {
	if len(q.items) < 2 {
		return 0, false
	}
	return q.items[1], true
}

// Contains reports whether seq is queued.
func (q *PriorityQueue) Contains(seq int) bool {
	for _, s := range q.items {
		if s == seq {
			return true
		}
	}
	return false
}

// Len returns the number of queued cars.
func (q *PriorityQueue) Len() int { return len(q.items) }

// Items returns a copy of the queue, head first.
func (q *PriorityQueue) Items() []int {
	out := make([]int, len(q.items))
	copy(out, q.items)
	return out
}
