// AngelaMos | 2026
// watcher.go

package dispatch

import (
	"sync"

	"github.com/carterperez-dev/debt-manager/internal/session"
)

// Source is the part of session.Store a Watcher follows.
type Source interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// Watcher re-dispatches on every session change and resize, and calls
// onChange only when the decision differs from the last one delivered.
//
// Recompute and delivery happen under notifyMu, so the host always sees
// decisions in the order they were made. onChange must not call Resize.
type Watcher struct {
	onChange func(Decision)
	unsub    func()

	notifyMu sync.Mutex

	mu       sync.Mutex
	snap     session.Snapshot
	factor   FormFactor
	decision Decision
	stopped  bool
}

func Watch(src Source, width int, onChange func(Decision)) *Watcher {
	w := &Watcher{
		onChange: onChange,
		factor:   Classify(width),
	}

	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	// Subscribe before reading the snapshot so no change falls between.
	w.unsub = src.Subscribe(w.sessionChanged)

	w.mu.Lock()
	w.snap = src.Snapshot()
	w.decision = Dispatch(w.snap, w.factor)
	first := w.decision
	w.mu.Unlock()

	onChange(first)
	return w
}

func (w *Watcher) Decision() Decision {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.decision
}

// Resize reclassifies the display. Crossing the breakpoint swaps the
// layout only; nothing is refetched.
func (w *Watcher) Resize(width int) {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	w.mu.Lock()
	w.factor = Classify(width)
	w.mu.Unlock()
	w.redispatchLocked()
}

func (w *Watcher) sessionChanged(snap session.Snapshot) {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	w.mu.Lock()
	w.snap = snap
	w.mu.Unlock()
	w.redispatchLocked()
}

// redispatchLocked requires notifyMu.
func (w *Watcher) redispatchLocked() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	next := Dispatch(w.snap, w.factor)
	if next == w.decision {
		w.mu.Unlock()
		return
	}
	w.decision = next
	w.mu.Unlock()

	w.onChange(next)
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.unsub()
}
