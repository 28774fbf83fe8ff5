package vulkan

import (
	"testing"
)

func TestDeletionQueueDrainsInReverseOrder(t *testing.T) {
	queue := NewDeletionQueue()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		queue.Push(func() { order = append(order, i) })
	}

	queue.DrainAll()

	want := []int{2, 1, 0}
	if len(order) != len(want) {
		t.Fatalf("expected %d releases, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("release %d: expected %d, got %d", i, want[i], order[i])
		}
	}
}

func TestDeletionQueueDrainsOnce(t *testing.T) {
	queue := NewDeletionQueue()
	calls := 0
	queue.Push(func() { calls++ })

	queue.DrainAll()
	queue.DrainAll()

	if calls != 1 {
		t.Errorf("expected release to run exactly once, ran %d times", calls)
	}
	if queue.Len() != 0 {
		t.Errorf("expected empty queue after drain, got %d pending", queue.Len())
	}
}

func TestDeletionQueueIgnoresNil(t *testing.T) {
	queue := NewDeletionQueue()
	queue.Push(nil)
	if queue.Len() != 0 {
		t.Errorf("expected nil push to be ignored, got %d pending", queue.Len())
	}
	queue.DrainAll()
}

func TestDeletionQueueAcceptsPushesAfterDrain(t *testing.T) {
	queue := NewDeletionQueue()
	calls := 0
	queue.Push(func() { calls++ })
	queue.DrainAll()

	queue.Push(func() { calls += 10 })
	queue.DrainAll()

	if calls != 11 {
		t.Errorf("expected both generations to run, got call sum %d", calls)
	}
}
