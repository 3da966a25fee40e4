package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mehrabrahat/ITZENBD-POS/internal/audit"
	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
)

// Errors returned by the authorizer.
var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrPendingNotFound   = errors.New("pending override not found")
	ErrInvalidManagerPIN = errors.New("invalid manager PIN")
	ErrNoExecutor        = errors.New("no executor registered for action")
)

// Decision is the outcome of the permission gate.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionDefer
	DecisionDeny
)

// Decide is the pure permission gate: managers and admins act immediately;
// everyone else is deferred to a manager override when the action allows it,
// and denied outright otherwise.
func Decide(role string, requiresManager bool) Decision {
	if role == enum.UserRoleAdmin || role == enum.UserRoleManager {
		return DecisionAllow
	}
	if requiresManager {
		return DecisionDefer
	}
	return DecisionDeny
}

// Command is a tagged, deferred-executable action. Privileged work is queued
// as data (action kind plus payload) rather than as a captured closure, so
// pending overrides stay inspectable and auditable.
type Command struct {
	Action string

	// REDUCE_SENT_ITEM payload.
	OrderID       uuid.UUID
	ItemID        uuid.UUID
	QuantityDelta int

	// Menu management payload.
	MenuItemID uuid.UUID
	MenuItem   *domain.MenuItem
}

// PendingOverride is a command parked until a manager approves or the
// requester cancels. There is no timeout; cancellation is explicit only.
type PendingOverride struct {
	ID          uuid.UUID
	Action      string
	RequestedBy domain.Actor
	RequestedAt time.Time
	Command     Command
}

// ExecutorFunc performs one kind of command on behalf of the original actor.
type ExecutorFunc func(actor domain.Actor, cmd Command) error

// Roster resolves staff for the override PIN challenge.
type Roster interface {
	ListUsers() []domain.User
}

// Authorizer owns the permission gate and the pending override queue.
type Authorizer struct {
	mu        sync.Mutex
	pending   map[uuid.UUID]PendingOverride
	executors map[string]ExecutorFunc

	roster Roster
	audit  *audit.Log
	now    func() time.Time
}

func NewAuthorizer(roster Roster, auditLog *audit.Log) *Authorizer {
	return &Authorizer{
		pending:   make(map[uuid.UUID]PendingOverride),
		executors: make(map[string]ExecutorFunc),
		roster:    roster,
		audit:     auditLog,
		now:       time.Now,
	}
}

// RegisterExecutor binds an action tag to the function that performs it.
func (a *Authorizer) RegisterExecutor(action string, fn ExecutorFunc) {
	a.mu.Lock()
	a.executors[action] = fn
	a.mu.Unlock()
}

// Request runs the command through the gate. Allowed commands execute
// immediately; deferred ones are parked and returned; denials are audited at
// medium severity and surfaced as ErrPermissionDenied.
func (a *Authorizer) Request(actor domain.Actor, requiresManager bool, cmd Command) (*PendingOverride, error) {
	switch Decide(actor.Role, requiresManager) {
	case DecisionAllow:
		return nil, a.execute(actor, cmd)

	case DecisionDefer:
		p := PendingOverride{
			ID:          uuid.New(),
			Action:      cmd.Action,
			RequestedBy: actor,
			RequestedAt: a.now(),
			Command:     cmd,
		}
		a.mu.Lock()
		a.pending[p.ID] = p
		a.mu.Unlock()
		return &p, nil

	default:
		a.audit.Append(actor, enum.ActionPermissionDenied,
			fmt.Sprintf("Action %s denied for %s", cmd.Action, actor.Role), enum.SeverityMedium)
		return nil, ErrPermissionDenied
	}
}

// Approve executes a parked command after a manager or admin PIN check.
// A wrong PIN changes nothing and is not audited; only granted overrides
// leave a trail.
func (a *Authorizer) Approve(id uuid.UUID, pin string) error {
	manager, ok := a.verifyManagerPIN(pin)
	if !ok {
		return ErrInvalidManagerPIN
	}

	a.mu.Lock()
	p, exists := a.pending[id]
	if exists {
		delete(a.pending, id)
	}
	a.mu.Unlock()
	if !exists {
		return ErrPendingNotFound
	}

	if err := a.execute(p.RequestedBy, p.Command); err != nil {
		return err
	}
	a.audit.Append(p.RequestedBy, enum.ActionManagerOverride,
		fmt.Sprintf("Override granted for %s by %s", p.Action, manager.Name), enum.SeverityHigh)
	return nil
}

// Cancel discards a parked command without executing or auditing it.
func (a *Authorizer) Cancel(id uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.pending[id]; !ok {
		return ErrPendingNotFound
	}
	delete(a.pending, id)
	return nil
}

// Pending lists parked commands, oldest first.
func (a *Authorizer) Pending() []PendingOverride {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]PendingOverride, 0, len(a.pending))
	for _, p := range a.pending {
		out = append(out, p)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].RequestedAt.Before(out[j-1].RequestedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (a *Authorizer) execute(actor domain.Actor, cmd Command) error {
	a.mu.Lock()
	fn, ok := a.executors[cmd.Action]
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoExecutor, cmd.Action)
	}
	return fn(actor, cmd)
}

func (a *Authorizer) verifyManagerPIN(pin string) (domain.User, bool) {
	for _, u := range a.roster.ListUsers() {
		if u.Role != enum.UserRoleAdmin && u.Role != enum.UserRoleManager {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.HashedPIN), []byte(pin)) == nil {
			return u, true
		}
	}
	return domain.User{}, false
}
