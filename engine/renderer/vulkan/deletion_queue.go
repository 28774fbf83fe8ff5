package vulkan

// DeletionQueue defers GPU resource destruction until a point where the
// device is known to be idle. Releases run in reverse push order so that
// dependent resources are destroyed before the resources they depend on.
type DeletionQueue struct {
	releases []func()
}

func NewDeletionQueue() *DeletionQueue {
	return &DeletionQueue{}
}

// Push appends a release callback. Closures capture the handles to destroy;
// nil callbacks are ignored.
func (q *DeletionQueue) Push(release func()) {
	if release == nil {
		return
	}
	q.releases = append(q.releases, release)
}

// DrainAll runs every pending release newest-first and empties the queue.
// Each callback runs exactly once; draining an empty queue is a no-op.
func (q *DeletionQueue) DrainAll() {
	for i := len(q.releases) - 1; i >= 0; i-- {
		q.releases[i]()
	}
	q.releases = q.releases[:0]
}

// Len reports the number of pending releases.
func (q *DeletionQueue) Len() int {
	return len(q.releases)
}
