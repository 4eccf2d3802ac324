// Package queue provides the bounded result heap shared by the exact engines.
package queue

import "github.com/hupe1980/knngraph/index"

// TopK keeps the k best neighbors seen so far.
//
// It is a max-heap on (distance, id): the root is the worst retained
// neighbor, so a candidate either replaces the root or is rejected in O(1).
type TopK struct {
	k     int
	items []index.Neighbor
}

// NewTopK creates a heap retaining at most k neighbors.
func NewTopK(k int) *TopK {
	return &TopK{k: k, items: make([]index.Neighbor, 0, k)}
}

// Len returns the number of retained neighbors.
func (q *TopK) Len() int { return len(q.items) }

// Full reports whether k neighbors are retained.
func (q *TopK) Full() bool { return len(q.items) >= q.k }

// Worst returns the worst retained neighbor.
func (q *TopK) Worst() (index.Neighbor, bool) {
	if len(q.items) == 0 {
		return index.Neighbor{}, false
	}
	return q.items[0], true
}

// Bound returns the distance of the worst retained neighbor once the heap
// is full. Until then every candidate is retained and ok is false.
func (q *TopK) Bound() (float32, bool) {
	if !q.Full() {
		return 0, false
	}
	return q.items[0].Distance, true
}

// Push offers a candidate and reports whether it was retained.
func (q *TopK) Push(n index.Neighbor) bool {
	if q.k <= 0 {
		return false
	}
	if len(q.items) < q.k {
		q.items = append(q.items, n)
		q.siftUp(len(q.items) - 1)
		return true
	}
	if index.Compare(n, q.items[0]) >= 0 {
		return false
	}
	q.items[0] = n
	q.siftDown(0)
	return true
}

// Sorted drains the heap and returns the neighbors ordered by increasing
// distance, ties broken by ID.
func (q *TopK) Sorted() index.Neighbors {
	out := make(index.Neighbors, len(q.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = q.pop()
	}
	return out
}

// Reset clears the heap for reuse.
func (q *TopK) Reset() { q.items = q.items[:0] }

func (q *TopK) pop() index.Neighbor {
	n := len(q.items)
	root := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return root
}

// less orders the heap so the worst neighbor is at the root.
func (q *TopK) less(i, j int) bool {
	return index.Compare(q.items[i], q.items[j]) > 0
}

func (q *TopK) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *TopK) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && q.less(r, l) {
			best = r
		}
		if !q.less(best, i) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
