package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mwiater/adapterbench/internal/compute"
)

// ErrNotTracked is returned when releasing a handle the owner did not acquire
// or has already released.
var ErrNotTracked = errors.New("tensor not tracked by this owner")

// ErrScopeClosed is returned for operations on a scope after Close.
var ErrScopeClosed = errors.New("scope closed")

// Counts records tensor acquisitions and releases issued within a context.
type Counts struct {
	Acquired int `json:"acquired"`
	Released int `json:"released"`
}

// Balanced reports whether every acquisition has a matching release.
func (c Counts) Balanced() bool {
	return c.Acquired == c.Released
}

// Tracker owns the handles it creates and issues exactly one backend release
// for each of them. Trackers created for the same context share one Counts.
type Tracker struct {
	backend compute.Backend
	key     compute.ContextKey
	counts  *Counts
	live    []compute.Handle
	closed  bool
}

func newTracker(b compute.Backend, key compute.ContextKey, counts *Counts) *Tracker {
	return &Tracker{backend: b, key: key, counts: counts}
}

// RandomUniform allocates a tracked tensor with values drawn from [low, high).
func (t *Tracker) RandomUniform(shape compute.Shape, low, high float64) (compute.Handle, error) {
	if t.closed {
		return 0, ErrScopeClosed
	}
	h, err := t.backend.RandomUniform(t.key, shape, low, high)
	if err != nil {
		return 0, fmt.Errorf("random uniform %v: %w", []int(shape), err)
	}
	t.track(h)
	return h, nil
}

// Matmul returns a tracked a·b.
func (t *Tracker) Matmul(a, b compute.Handle) (compute.Handle, error) {
	return t.apply("matmul", t.backend.Matmul, a, b)
}

// Add returns a tracked a+b.
func (t *Tracker) Add(a, b compute.Handle) (compute.Handle, error) {
	return t.apply("add", t.backend.Add, a, b)
}

// Multiply returns a tracked elementwise a⊙b.
func (t *Tracker) Multiply(a, b compute.Handle) (compute.Handle, error) {
	return t.apply("multiply", t.backend.Multiply, a, b)
}

// Release frees one tracked handle. The backend release is counted even when
// it reports an error, because the call was issued.
func (t *Tracker) Release(h compute.Handle) error {
	i := slices.Index(t.live, h)
	if i < 0 {
		return fmt.Errorf("release %d: %w", h, ErrNotTracked)
	}
	t.live = slices.Delete(t.live, i, i+1)
	t.counts.Released++
	if err := t.backend.Release(h); err != nil {
		return fmt.Errorf("release %d: %w", h, err)
	}
	return nil
}

// ReleaseAll frees every tracked handle, newest first, and keeps going past
// failures.
func (t *Tracker) ReleaseAll() error {
	var errs []error
	for len(t.live) > 0 {
		h := t.live[len(t.live)-1]
		if err := t.Release(h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Live returns the number of handles still owned.
func (t *Tracker) Live() int {
	return len(t.live)
}

func (t *Tracker) apply(op string, fn func(compute.ContextKey, compute.Handle, compute.Handle) (compute.Handle, error), a, b compute.Handle) (compute.Handle, error) {
	if t.closed {
		return 0, ErrScopeClosed
	}
	h, err := fn(t.key, a, b)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	t.track(h)
	return h, nil
}

func (t *Tracker) track(h compute.Handle) {
	t.live = append(t.live, h)
	t.counts.Acquired++
}

// Scope owns the tensors of one unit of work, typically one workload
// iteration. Close must run on every path, usually via defer.
type Scope struct {
	*Tracker
	session *Session
}

// Close releases every tensor acquired in the scope. Calling Close again is a
// no-op.
func (sc *Scope) Close() error {
	if sc.closed {
		return nil
	}
	err := sc.ReleaseAll()
	sc.closed = true
	sc.session.forget(sc)
	return err
}
