package pqueue

import (
	"math/rand"
	"testing"
)

func TestDeleteMinOrderSmall(t *testing.T) {
	q := New(4)
	q.Add(5, 50)
	q.Add(3, 30)
	q.Add(8, 80)
	q.Add(1, 10)

	want := []uint64{1, 3, 5, 8}
	for _, k := range want {
		if q.IsEmpty() {
			t.Fatal("queue emptied early")
		}
		e := q.DeleteMin()
		if e.SortKey != k {
			t.Fatalf("got sortKey %d want %d", e.SortKey, k)
		}
	}
	if !q.IsEmpty() {
		t.Fatal("queue should be empty")
	}
}

func TestDeleteMinOrderLargeHeap(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	n := 500
	q := New(uint64(n))
	keys := make([]uint64, n)
	for i := 0; i < n; i++ {
		k := rnd.Uint64() % 1000000
		keys[i] = k
		q.Add(k, uint64(i))
	}

	var last uint64
	first := true
	for !q.IsEmpty() {
		e := q.DeleteMin()
		if !first && e.SortKey < last {
			t.Fatalf("non-decreasing violated: %d after %d", e.SortKey, last)
		}
		last = e.SortKey
		first = false
	}
}

func TestFindMinDoesNotRemove(t *testing.T) {
	q := New(20)
	q.Add(10, 1)
	q.Add(2, 2)
	if q.FindMin().SortKey != 2 {
		t.Fatal("FindMin wrong")
	}
	if q.FindMin().SortKey != 2 {
		t.Fatal("FindMin mutated the queue")
	}
}

func TestIsFullIsEmpty(t *testing.T) {
	q := New(2)
	if !q.IsEmpty() {
		t.Fatal("new queue should be empty")
	}
	q.Add(1, 1)
	q.Add(2, 2)
	if !q.IsFull() {
		t.Fatal("queue should be full")
	}
}
