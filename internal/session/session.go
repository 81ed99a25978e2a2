// internal/session/session.go

// Package session scopes all work for one adapter inside an isolated backend
// context and guarantees that every tensor acquired there is released before
// the context is destroyed, whatever path the work takes.
package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mwiater/adapterbench/internal/compute"
	"github.com/mwiater/adapterbench/internal/logging"
)

// Status is the terminal state of one adapter's run.
type Status string

const (
	StatusSuccess    Status = "SUCCESS"
	StatusInitFailed Status = "INIT_FAILED"
	StatusError      Status = "ERROR"
)

// Session is the handle to an initialized context. It is only obtainable
// through WithContext, so callers never build context keys themselves.
type Session struct {
	*Tracker
	adapter compute.Adapter
	counts  Counts
	scopes  []*Scope
}

func newSession(b compute.Backend, adapter compute.Adapter, key compute.ContextKey) *Session {
	s := &Session{adapter: adapter}
	s.Tracker = newTracker(b, key, &s.counts)
	return s
}

// Key returns the context key assigned to the session.
func (s *Session) Key() compute.ContextKey { return s.key }

// Adapter returns the adapter the session runs on.
func (s *Session) Adapter() compute.Adapter { return s.adapter }

// Counts returns acquisitions and releases issued so far across the session
// and all of its scopes.
func (s *Session) Counts() Counts { return s.counts }

// NewScope opens a scope whose tensors are counted against this session.
func (s *Session) NewScope() *Scope {
	sc := &Scope{Tracker: newTracker(s.backend, s.key, &s.counts), session: s}
	s.scopes = append(s.scopes, sc)
	return sc
}

// Synchronize waits for queued device work when the backend supports it.
func (s *Session) Synchronize() error {
	sync, ok := s.backend.(compute.Synchronizer)
	if !ok {
		return nil
	}
	if err := sync.Synchronize(s.key); err != nil {
		return fmt.Errorf("synchronize: %w", err)
	}
	return nil
}

func (s *Session) forget(sc *Scope) {
	if i := slices.Index(s.scopes, sc); i >= 0 {
		s.scopes = slices.Delete(s.scopes, i, i+1)
	}
}

// teardown closes scopes left open, releases the session's own tensors and
// destroys the context.
func (s *Session) teardown() error {
	var errs []error
	for len(s.scopes) > 0 {
		if err := s.scopes[len(s.scopes)-1].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.ReleaseAll(); err != nil {
		errs = append(errs, err)
	}
	s.closed = true
	if err := s.backend.DestroyContext(s.key); err != nil {
		errs = append(errs, fmt.Errorf("destroy context: %w", err))
	}
	return errors.Join(errs...)
}

// Outcome is the result of running work inside a context: exactly one of
// success (Value set), init failure, or error (Err set).
type Outcome[T any] struct {
	Status Status
	Value  T
	Err    error
	Counts Counts
}

// WithContext opens the adapter's context, runs body inside it and tears the
// context down on every path. An init failure is reported through the
// outcome, not as an error. Errors and panics raised by body become an
// ERROR outcome after best-effort cleanup.
func WithContext[T any](b compute.Backend, adapter compute.Adapter, body func(*Session) (T, error)) (out Outcome[T]) {
	key := compute.KeyFor(adapter.Index)

	ok, err := initContext(b, adapter.Index, key)
	if err != nil {
		out.Status = StatusError
		out.Err = err
		return out
	}
	if !ok {
		out.Status = StatusInitFailed
		return out
	}

	s := newSession(b, adapter, key)
	defer func() {
		if err := s.teardown(); err != nil {
			logging.LogEvent("[SESSION] teardown of %s reported errors: %v", key, err)
		}
		out.Counts = s.Counts()
		if !out.Counts.Balanced() {
			logging.LogEvent("[SESSION] %s acquired %d tensors but released %d", key, out.Counts.Acquired, out.Counts.Released)
		}
	}()

	value, err := runBody(s, body)
	if err != nil {
		out.Status = StatusError
		out.Err = err
		return out
	}
	out.Status = StatusSuccess
	out.Value = value
	return out
}

func initContext(b compute.Backend, index int, key compute.ContextKey) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("init context %s: panic: %v", key, r)
		}
	}()
	return b.InitContext(index, key), nil
}

func runBody[T any](s *Session, body func(*Session) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value = zero
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return body(s)
}
