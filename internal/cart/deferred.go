package cart

import (
	"sync"
	"time"
)

// noteDebounce is how long a note edit sits before it is persisted. Every
// keystroke within the window resets the timer.
const noteDebounce = time.Second

type pendingWrite struct {
	timer *time.Timer
	fn    func()
}

// DeferredWriter coalesces rapid note edits per order line. Scheduling a
// write for a line cancels any pending write for the same line, so only the
// latest text reaches the order service.
type DeferredWriter struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[int64]*pendingWrite
}

func NewDeferredWriter() *DeferredWriter {
	return &DeferredWriter{
		delay:   noteDebounce,
		pending: make(map[int64]*pendingWrite),
	}
}

// Schedule queues fn to run after the debounce delay, replacing any write
// still pending for lineID.
func (w *DeferredWriter) Schedule(lineID int64, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[lineID]; ok {
		p.timer.Stop()
	}
	p := &pendingWrite{fn: fn}
	p.timer = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		if w.pending[lineID] == p {
			delete(w.pending, lineID)
		}
		w.mu.Unlock()
		fn()
	})
	w.pending[lineID] = p
}

// Cancel drops any pending write for lineID without running it. Used when
// the line is deleted before the debounce fires.
func (w *DeferredWriter) Cancel(lineID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[lineID]; ok {
		p.timer.Stop()
		delete(w.pending, lineID)
	}
}

// Flush runs every pending write immediately. Called before checkout submits
// and on shutdown so typed notes are not lost.
func (w *DeferredWriter) Flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[int64]*pendingWrite)
	w.mu.Unlock()
	for _, p := range pending {
		if p.timer.Stop() {
			p.fn()
		}
	}
}
