// Package audit keeps the append-only record of privileged and
// state-changing actions.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
)

// Log is an in-memory append-only audit trail. Entries are returned newest
// first and are never mutated or removed.
type Log struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
	now     func() time.Time
}

func NewLog() *Log {
	return &Log{now: time.Now}
}

// NewLogAt builds a Log with a fixed clock, for tests.
func NewLogAt(now func() time.Time) *Log {
	return &Log{now: now}
}

// Append records an action performed by actor.
func (l *Log) Append(actor domain.Actor, action, details, severity string) domain.AuditEntry {
	entry := domain.AuditEntry{
		ID:        uuid.New(),
		Timestamp: l.now(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		Action:    action,
		Details:   details,
		Severity:  severity,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	return entry
}

// List returns all entries, newest first.
func (l *Log) List() []domain.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.AuditEntry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}
