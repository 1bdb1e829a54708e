package playback

import (
	"math"
	"sync"
	"time"

	"github.com/Dastari/librarian/internal/models"
)

// pendingWrite is an optimistic update that has been applied locally but
// not yet confirmed by the server.
type pendingWrite struct {
	seq    int64
	update models.PlaybackUpdate
	at     time.Time
}

// ledger tracks the last server-confirmed session state and the optimistic
// writes still in flight. Optimistic state is never rolled back on failure;
// the ledger only records the divergence so Refresh can resolve it
// deterministically.
type ledger struct {
	mu                 sync.Mutex
	lastConfirmed      *models.PlaybackSession
	lastSyncedPosition float64
	pending            []pendingWrite
	divergent          bool
	seq                int64
}

func newLedger() *ledger {
	return &ledger{}
}

// resetBaseline replaces the confirmed state and sync baseline, dropping
// all pending writes. Called on start, refresh and stop.
func (l *ledger) resetBaseline(session *models.PlaybackSession) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending = nil
	l.divergent = false
	if session == nil {
		l.lastConfirmed = nil
		l.lastSyncedPosition = 0
		return
	}
	confirmed := *session
	l.lastConfirmed = &confirmed
	l.lastSyncedPosition = session.CurrentPosition
}

// shouldSyncPosition reports whether the position moved far enough from the
// last synced baseline to justify a network write.
func (l *ledger) shouldSyncPosition(position, debounce float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return math.Abs(position-l.lastSyncedPosition) >= debounce
}

// stage records an in-flight optimistic write and returns its sequence
func (l *ledger) stage(update models.PlaybackUpdate) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	l.pending = append(l.pending, pendingWrite{
		seq:    l.seq,
		update: update,
		at:     time.Now(),
	})
	return l.seq
}

// confirm resolves a staged write with the server's authoritative echo.
// Writes staged at or before seq are no longer pending.
func (l *ledger) confirm(seq int64, session *models.PlaybackSession) {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.pending[:0]
	for _, w := range l.pending {
		if w.seq > seq {
			remaining = append(remaining, w)
		}
	}
	l.pending = remaining

	if session != nil {
		confirmed := *session
		l.lastConfirmed = &confirmed
		l.lastSyncedPosition = session.CurrentPosition
	}
	if len(l.pending) == 0 {
		l.divergent = false
	}
}

// fail drops a staged write without confirmation. The optimistic local
// value stays in place; the session is marked divergent until the next
// successful sync or an explicit refresh.
func (l *ledger) fail(seq int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.pending[:0]
	for _, w := range l.pending {
		if w.seq != seq {
			remaining = append(remaining, w)
		}
	}
	l.pending = remaining
	l.divergent = true
}

// markSynced moves the debounce baseline without a confirmed server echo
func (l *ledger) markSynced(position float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSyncedPosition = position
}

// isDivergent reports whether local state may disagree with the server
func (l *ledger) isDivergent() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.divergent || len(l.pending) > 0
}

// confirmedSession returns a copy of the last server-confirmed state
func (l *ledger) confirmedSession() *models.PlaybackSession {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lastConfirmed == nil {
		return nil
	}
	confirmed := *l.lastConfirmed
	return &confirmed
}
