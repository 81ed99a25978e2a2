package backendfactory

import (
	"time"

	"github.com/mwiater/adapterbench/internal/compute"
	"github.com/mwiater/adapterbench/internal/logging"
)

// Traced decorates a backend and logs every call with its latency at debug
// level. Synchronize is forwarded when the wrapped backend supports it.
type Traced struct {
	inner compute.Backend
}

// NewTraced wraps b.
func NewTraced(b compute.Backend) *Traced {
	return &Traced{inner: b}
}

// Unwrap returns the decorated backend.
func (t *Traced) Unwrap() compute.Backend { return t.inner }

func (t *Traced) trace(op string, key compute.ContextKey, start time.Time, err error) {
	if err != nil {
		logging.Debugf("backend %s %s failed after %s: %v", op, key, time.Since(start), err)
		return
	}
	logging.Debugf("backend %s %s took %s", op, key, time.Since(start))
}

func (t *Traced) Adapters() ([]compute.Adapter, error) {
	adapters, err := t.inner.Adapters()
	logging.Debugf("backend enumerated %d adapters (err=%v)", len(adapters), err)
	return adapters, err
}

func (t *Traced) InitContext(adapter int, key compute.ContextKey) bool {
	ok := t.inner.InitContext(adapter, key)
	logging.Debugf("backend init %s on adapter %d: %v", key, adapter, ok)
	return ok
}

func (t *Traced) DestroyContext(key compute.ContextKey) error {
	start := time.Now()
	err := t.inner.DestroyContext(key)
	t.trace("destroy", key, start, err)
	return err
}

func (t *Traced) RandomUniform(key compute.ContextKey, shape compute.Shape, low, high float64) (compute.Handle, error) {
	start := time.Now()
	h, err := t.inner.RandomUniform(key, shape, low, high)
	t.trace("randomUniform", key, start, err)
	return h, err
}

func (t *Traced) Matmul(key compute.ContextKey, a, b compute.Handle) (compute.Handle, error) {
	start := time.Now()
	h, err := t.inner.Matmul(key, a, b)
	t.trace("matmul", key, start, err)
	return h, err
}

func (t *Traced) Add(key compute.ContextKey, a, b compute.Handle) (compute.Handle, error) {
	start := time.Now()
	h, err := t.inner.Add(key, a, b)
	t.trace("add", key, start, err)
	return h, err
}

func (t *Traced) Multiply(key compute.ContextKey, a, b compute.Handle) (compute.Handle, error) {
	start := time.Now()
	h, err := t.inner.Multiply(key, a, b)
	t.trace("multiply", key, start, err)
	return h, err
}

func (t *Traced) Release(h compute.Handle) error {
	err := t.inner.Release(h)
	if err != nil {
		logging.Debugf("backend release %d: %v", h, err)
	}
	return err
}

// Synchronize implements compute.Synchronizer.
func (t *Traced) Synchronize(key compute.ContextKey) error {
	sync, ok := t.inner.(compute.Synchronizer)
	if !ok {
		return nil
	}
	start := time.Now()
	err := sync.Synchronize(key)
	t.trace("synchronize", key, start, err)
	return err
}

var (
	_ compute.Backend      = (*Traced)(nil)
	_ compute.Synchronizer = (*Traced)(nil)
)
