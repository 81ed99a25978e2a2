// internal/compute/cpu/backend.go

// Package cpu implements compute.Backend on top of gonum dense matrices. It
// exposes a single host adapter so the harness can run on machines without a
// GPU tensor library and so the full pipeline can be exercised end to end.
package cpu

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/mwiater/adapterbench/internal/compute"
)

const (
	adapterName    = "gonum/mat (float64)"
	adapterBackend = "cpu"
)

type tensorContext struct {
	adapter int
	tensors map[compute.Handle]*mat.Dense
}

// Backend is a host-memory tensor backend.
type Backend struct {
	mu       sync.Mutex
	rng      *rand.Rand
	next     compute.Handle
	contexts map[compute.ContextKey]*tensorContext
	owners   map[compute.Handle]compute.ContextKey
}

// Option configures a Backend.
type Option func(*Backend)

// WithSeed makes random tensor contents reproducible. Without it every run
// draws fresh values.
func WithSeed(seed uint64) Option {
	return func(b *Backend) {
		b.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// New returns a ready Backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		contexts: make(map[compute.ContextKey]*tensorContext),
		owners:   make(map[compute.Handle]compute.ContextKey),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Adapters implements compute.Backend.
func (b *Backend) Adapters() ([]compute.Adapter, error) {
	return []compute.Adapter{{Index: 0, Name: adapterName, Backend: adapterBackend}}, nil
}

// InitContext implements compute.Backend.
func (b *Backend) InitContext(adapter int, key compute.ContextKey) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if adapter != 0 || key == "" {
		return false
	}
	if _, exists := b.contexts[key]; exists {
		return false
	}
	b.contexts[key] = &tensorContext{adapter: adapter, tensors: make(map[compute.Handle]*mat.Dense)}
	return true
}

// DestroyContext implements compute.Backend.
func (b *Backend) DestroyContext(key compute.ContextKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tc, ok := b.contexts[key]
	if !ok {
		return fmt.Errorf("destroy %s: %w", key, compute.ErrUnknownContext)
	}
	for h := range tc.tensors {
		delete(b.owners, h)
	}
	delete(b.contexts, key)
	return nil
}

// RandomUniform implements compute.Backend.
func (b *Backend) RandomUniform(key compute.ContextKey, shape compute.Shape, low, high float64) (compute.Handle, error) {
	if err := shape.Validate(); err != nil {
		return 0, err
	}
	if high <= low {
		return 0, fmt.Errorf("random uniform: empty range [%g, %g)", low, high)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	tc, ok := b.contexts[key]
	if !ok {
		return 0, fmt.Errorf("random uniform on %s: %w", key, compute.ErrUnknownContext)
	}
	data := make([]float64, shape.Elements())
	span := high - low
	for i := range data {
		data[i] = low + span*b.rng.Float64()
	}
	return b.store(key, tc, mat.NewDense(shape[0], shape[1], data)), nil
}

// Matmul implements compute.Backend.
func (b *Backend) Matmul(key compute.ContextKey, x, y compute.Handle) (compute.Handle, error) {
	tc, a, c, err := b.operands(key, x, y)
	if err != nil {
		return 0, err
	}
	ar, ac := a.Dims()
	cr, cc := c.Dims()
	if ac != cr {
		return 0, fmt.Errorf("matmul %dx%d by %dx%d: %w", ar, ac, cr, cc, compute.ErrShapeMismatch)
	}
	out := mat.NewDense(ar, cc, nil)
	out.Mul(a, c)
	return b.commit(key, tc, out)
}

// Add implements compute.Backend.
func (b *Backend) Add(key compute.ContextKey, x, y compute.Handle) (compute.Handle, error) {
	tc, a, c, err := b.operands(key, x, y)
	if err != nil {
		return 0, err
	}
	if err := sameDims("add", a, c); err != nil {
		return 0, err
	}
	r, cols := a.Dims()
	out := mat.NewDense(r, cols, nil)
	out.Add(a, c)
	return b.commit(key, tc, out)
}

// Multiply implements compute.Backend.
func (b *Backend) Multiply(key compute.ContextKey, x, y compute.Handle) (compute.Handle, error) {
	tc, a, c, err := b.operands(key, x, y)
	if err != nil {
		return 0, err
	}
	if err := sameDims("multiply", a, c); err != nil {
		return 0, err
	}
	r, cols := a.Dims()
	out := mat.NewDense(r, cols, nil)
	out.MulElem(a, c)
	return b.commit(key, tc, out)
}

// Synchronize implements compute.Synchronizer. Host computation has finished
// by the time an operation returns, so there is nothing to wait for beyond
// confirming the context is still open.
func (b *Backend) Synchronize(key compute.ContextKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.contexts[key]; !ok {
		return fmt.Errorf("synchronize %s: %w", key, compute.ErrUnknownContext)
	}
	return nil
}

// Release implements compute.Backend.
func (b *Backend) Release(h compute.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key, ok := b.owners[h]
	if !ok {
		return fmt.Errorf("release %d: %w", h, compute.ErrUnknownTensor)
	}
	delete(b.contexts[key].tensors, h)
	delete(b.owners, h)
	return nil
}

// operands resolves both handles inside the context. The matrices are read
// outside the lock; the engine never mutates a tensor after creation.
func (b *Backend) operands(key compute.ContextKey, x, y compute.Handle) (*tensorContext, *mat.Dense, *mat.Dense, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tc, ok := b.contexts[key]
	if !ok {
		return nil, nil, nil, fmt.Errorf("operation on %s: %w", key, compute.ErrUnknownContext)
	}
	a, ok := tc.tensors[x]
	if !ok {
		return nil, nil, nil, fmt.Errorf("operand %d in %s: %w", x, key, compute.ErrUnknownTensor)
	}
	c, ok := tc.tensors[y]
	if !ok {
		return nil, nil, nil, fmt.Errorf("operand %d in %s: %w", y, key, compute.ErrUnknownTensor)
	}
	return tc, a, c, nil
}

// commit stores a freshly computed result, provided the context survived the
// computation.
func (b *Backend) commit(key compute.ContextKey, tc *tensorContext, m *mat.Dense) (compute.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.contexts[key]; !ok || cur != tc {
		return 0, fmt.Errorf("store result in %s: %w", key, compute.ErrUnknownContext)
	}
	return b.store(key, tc, m), nil
}

// store registers m under a new handle. Callers hold b.mu.
func (b *Backend) store(key compute.ContextKey, tc *tensorContext, m *mat.Dense) compute.Handle {
	b.next++
	h := b.next
	tc.tensors[h] = m
	b.owners[h] = key
	return h
}

func sameDims(op string, a, c *mat.Dense) error {
	ar, ac := a.Dims()
	cr, cc := c.Dims()
	if ar != cr || ac != cc {
		return fmt.Errorf("%s %dx%d and %dx%d: %w", op, ar, ac, cr, cc, compute.ErrShapeMismatch)
	}
	return nil
}

var (
	_ compute.Backend      = (*Backend)(nil)
	_ compute.Synchronizer = (*Backend)(nil)
)
