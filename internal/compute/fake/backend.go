// Package fake provides a scripted compute.Backend for tests. It keeps no
// tensor data; handles are bookkeeping entries. Every operation advances a
// virtual clock so timing-sensitive code can be tested deterministically.
package fake

import (
	"fmt"
	"sync"
	"time"

	"github.com/mwiater/adapterbench/internal/compute"
)

// Operation names used for call counting and failure injection.
const (
	OpRandomUniform = "randomUniform"
	OpMatmul        = "matmul"
	OpAdd           = "add"
	OpMultiply      = "multiply"
	OpSynchronize   = "synchronize"
)

type failure struct {
	adapter int
	op      string
	call    int
	err     error
	panics  bool
}

type contextState struct {
	adapter   int
	live      map[compute.Handle]compute.Shape
	destroyed bool
	leaked    int
	acquired  int
	released  int
	calls     map[string]int
}

// Backend is a deterministic compute.Backend.
type Backend struct {
	mu sync.Mutex

	adapters     []compute.Adapter
	enumerateErr error
	initFailures map[int]bool
	failures     []failure
	latency      map[int]time.Duration
	defaultLat   time.Duration

	clock          time.Time
	next           compute.Handle
	contexts       map[compute.ContextKey]*contextState
	owners         map[compute.Handle]compute.ContextKey
	doubleReleases int
}

// New returns a backend exposing the given adapters.
func New(adapters ...compute.Adapter) *Backend {
	return &Backend{
		adapters:     adapters,
		initFailures: make(map[int]bool),
		latency:      make(map[int]time.Duration),
		clock:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		contexts:     make(map[compute.ContextKey]*contextState),
		owners:       make(map[compute.Handle]compute.ContextKey),
	}
}

// Adapter is a convenience constructor for a named adapter.
func Adapter(index int, name, backend string) compute.Adapter {
	return compute.Adapter{Index: index, Name: name, Backend: backend}
}

// FailEnumeration makes Adapters return err.
func (b *Backend) FailEnumeration(err error) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enumerateErr = err
	return b
}

// FailInit makes InitContext return false for the adapter.
func (b *Backend) FailInit(adapter int) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initFailures[adapter] = true
	return b
}

// FailOn makes the call-th invocation (1-based) of op on adapter return err.
func (b *Backend) FailOn(adapter int, op string, call int, err error) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, failure{adapter: adapter, op: op, call: call, err: err})
	return b
}

// PanicOn makes the call-th invocation of op on adapter panic with msg.
func (b *Backend) PanicOn(adapter int, op string, call int, msg string) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, failure{adapter: adapter, op: op, call: call, err: fmt.Errorf("%s", msg), panics: true})
	return b
}

// SetLatency sets the virtual time consumed by every tensor operation on adapter.
// A negative adapter index sets the default for all adapters.
func (b *Backend) SetLatency(adapter int, d time.Duration) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	if adapter < 0 {
		b.defaultLat = d
		return b
	}
	b.latency[adapter] = d
	return b
}

// Now returns the virtual clock.
func (b *Backend) Now() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clock
}

// Adapters implements compute.Backend.
func (b *Backend) Adapters() ([]compute.Adapter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.enumerateErr != nil {
		return nil, b.enumerateErr
	}
	out := make([]compute.Adapter, len(b.adapters))
	copy(out, b.adapters)
	return out, nil
}

// InitContext implements compute.Backend.
func (b *Backend) InitContext(adapter int, key compute.ContextKey) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if adapter < 0 || adapter >= len(b.adapters) || b.initFailures[adapter] {
		return false
	}
	if st, ok := b.contexts[key]; ok && !st.destroyed {
		return false
	}
	b.contexts[key] = &contextState{
		adapter: adapter,
		live:    make(map[compute.Handle]compute.Shape),
		calls:   make(map[string]int),
	}
	return true
}

// DestroyContext implements compute.Backend.
func (b *Backend) DestroyContext(key compute.ContextKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.contexts[key]
	if !ok || st.destroyed {
		return fmt.Errorf("destroy %s: %w", key, compute.ErrUnknownContext)
	}
	st.leaked = len(st.live)
	for h := range st.live {
		delete(b.owners, h)
	}
	st.live = map[compute.Handle]compute.Shape{}
	st.destroyed = true
	return nil
}

// RandomUniform implements compute.Backend.
func (b *Backend) RandomUniform(key compute.ContextKey, shape compute.Shape, low, high float64) (compute.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, err := b.enter(key, OpRandomUniform)
	if err != nil {
		return 0, err
	}
	if err := shape.Validate(); err != nil {
		return 0, err
	}
	if high <= low {
		return 0, fmt.Errorf("random uniform: empty range [%g, %g)", low, high)
	}
	return b.allocate(key, st, append(compute.Shape(nil), shape...)), nil
}

// Matmul implements compute.Backend.
func (b *Backend) Matmul(key compute.ContextKey, x, y compute.Handle) (compute.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, err := b.enter(key, OpMatmul)
	if err != nil {
		return 0, err
	}
	sx, sy, err := b.operands(key, st, x, y)
	if err != nil {
		return 0, err
	}
	if sx[1] != sy[0] {
		return 0, fmt.Errorf("matmul %v x %v: %w", []int(sx), []int(sy), compute.ErrShapeMismatch)
	}
	return b.allocate(key, st, compute.Shape{sx[0], sy[1]}), nil
}

// Add implements compute.Backend.
func (b *Backend) Add(key compute.ContextKey, x, y compute.Handle) (compute.Handle, error) {
	return b.elementwise(key, OpAdd, x, y)
}

// Multiply implements compute.Backend.
func (b *Backend) Multiply(key compute.ContextKey, x, y compute.Handle) (compute.Handle, error) {
	return b.elementwise(key, OpMultiply, x, y)
}

// Synchronize implements compute.Synchronizer.
func (b *Backend) Synchronize(key compute.ContextKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.enter(key, OpSynchronize)
	return err
}

// Release implements compute.Backend.
func (b *Backend) Release(h compute.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key, ok := b.owners[h]
	if !ok {
		b.doubleReleases++
		return fmt.Errorf("release %d: %w", h, compute.ErrUnknownTensor)
	}
	st := b.contexts[key]
	delete(st.live, h)
	delete(b.owners, h)
	st.released++
	return nil
}

// Counts returns the number of tensors acquired and released in the context.
func (b *Backend) Counts(key compute.ContextKey) (acquired, released int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.contexts[key]
	if !ok {
		return 0, 0
	}
	return st.acquired, st.released
}

// Live returns the number of tensors currently held in the context.
func (b *Backend) Live(key compute.ContextKey) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if st, ok := b.contexts[key]; ok {
		return len(st.live)
	}
	return 0
}

// Leaked returns how many tensors were still live when the context was destroyed.
func (b *Backend) Leaked(key compute.ContextKey) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if st, ok := b.contexts[key]; ok {
		return st.leaked
	}
	return 0
}

// Destroyed reports whether the context was opened and then destroyed.
func (b *Backend) Destroyed(key compute.ContextKey) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.contexts[key]
	return ok && st.destroyed
}

// Calls returns how many times op was invoked in the context.
func (b *Backend) Calls(key compute.ContextKey, op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if st, ok := b.contexts[key]; ok {
		return st.calls[op]
	}
	return 0
}

// DoubleReleases returns how many releases targeted a handle that was not live.
func (b *Backend) DoubleReleases() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doubleReleases
}

func (b *Backend) elementwise(key compute.ContextKey, op string, x, y compute.Handle) (compute.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, err := b.enter(key, op)
	if err != nil {
		return 0, err
	}
	sx, sy, err := b.operands(key, st, x, y)
	if err != nil {
		return 0, err
	}
	if sx[0] != sy[0] || sx[1] != sy[1] {
		return 0, fmt.Errorf("%s %v and %v: %w", op, []int(sx), []int(sy), compute.ErrShapeMismatch)
	}
	return b.allocate(key, st, append(compute.Shape(nil), sx...)), nil
}

// enter records the call, advances the clock and applies scripted failures.
// Callers hold b.mu.
func (b *Backend) enter(key compute.ContextKey, op string) (*contextState, error) {
	st, ok := b.contexts[key]
	if !ok || st.destroyed {
		return nil, fmt.Errorf("%s on %s: %w", op, key, compute.ErrUnknownContext)
	}
	st.calls[op]++
	if op != OpSynchronize {
		lat, ok := b.latency[st.adapter]
		if !ok {
			lat = b.defaultLat
		}
		b.clock = b.clock.Add(lat)
	}

	for _, f := range b.failures {
		if f.adapter == st.adapter && f.op == op && f.call == st.calls[op] {
			if f.panics {
				b.mu.Unlock()
				defer b.mu.Lock()
				panic(f.err.Error())
			}
			return nil, f.err
		}
	}
	return st, nil
}

func (b *Backend) operands(key compute.ContextKey, st *contextState, x, y compute.Handle) (compute.Shape, compute.Shape, error) {
	sx, ok := st.live[x]
	if !ok {
		return nil, nil, fmt.Errorf("operand %d in %s: %w", x, key, compute.ErrUnknownTensor)
	}
	sy, ok := st.live[y]
	if !ok {
		return nil, nil, fmt.Errorf("operand %d in %s: %w", y, key, compute.ErrUnknownTensor)
	}
	return sx, sy, nil
}

func (b *Backend) allocate(key compute.ContextKey, st *contextState, shape compute.Shape) compute.Handle {
	b.next++
	h := b.next
	st.live[h] = shape
	st.acquired++
	b.owners[h] = key
	return h
}

var (
	_ compute.Backend      = (*Backend)(nil)
	_ compute.Synchronizer = (*Backend)(nil)
)
