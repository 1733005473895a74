// Package dedupe tracks recently seen frame ids so retried uploads are
// processed at most once.
package dedupe

import (
	"context"
	"sync"

	"github.com/okian/formcoach/internal/domain/ringbuf"
)

const defaultMaxSize = 50000

// Deduper records seen ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so it can be retried, e.g. after the queue
	// rejected the frame.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type entry struct {
	id  string
	seq uint64
}

// inMemoryDeduper keeps the most recent ids. In bounded mode the oldest
// record is evicted first; with maxSize <= 0 nothing is ever evicted.
type inMemoryDeduper struct {
	mu      sync.Mutex
	maxSize int
	seen    map[string]uint64
	order   *ringbuf.Ring[entry]
	seq     uint64
}

// NewInMemoryDeduper returns an empty deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	if d.maxSize > 0 {
		d.order = ringbuf.New[entry](d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seq++
	d.seen[id] = d.seq
	if d.order != nil {
		// a stale ring entry belongs to an id that was unrecorded or
		// recorded again later; only the live one is dropped
		if old, evicted := d.order.Push(entry{id: id, seq: d.seq}); evicted && d.seen[old.id] == old.seq {
			delete(d.seen, old.id)
		}
	}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
