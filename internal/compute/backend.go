// internal/compute/backend.go

// Package compute defines the contract between the benchmark harness and the
// tensor library that actually runs work on an adapter. The harness never
// touches device memory itself; it only holds opaque handles and asks the
// backend to create, combine and release them inside an isolated context.
package compute

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNoAdapters is returned when the backend reports no usable adapters.
	// It is an expected outcome on machines without compute devices.
	ErrNoAdapters = errors.New("no adapters available")
	// ErrUnknownContext is returned for operations on a context that was never
	// initialized or has already been destroyed.
	ErrUnknownContext = errors.New("unknown context")
	// ErrUnknownTensor is returned when a handle is not live, including a
	// second release of the same handle.
	ErrUnknownTensor = errors.New("unknown tensor handle")
	// ErrInvalidShape is returned when a requested shape is not a positive 2-D shape.
	ErrInvalidShape = errors.New("invalid tensor shape")
	// ErrShapeMismatch is returned when operand shapes are incompatible.
	ErrShapeMismatch = errors.New("tensor shape mismatch")
)

// Adapter describes one compute device exposed by a backend.
type Adapter struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Backend string `json:"backend"`
}

// String renders the adapter the way it is listed on the console.
func (a Adapter) String() string {
	return fmt.Sprintf("%d: %s (%s)", a.Index, a.Name, a.Backend)
}

// ContextKey identifies one isolated execution context inside a backend.
type ContextKey string

// KeyFor returns the context key reserved for the adapter at index.
func KeyFor(index int) ContextKey {
	return ContextKey("adapter_" + strconv.Itoa(index))
}

// Handle is an opaque reference to a device-resident tensor.
type Handle uint64

// Shape is the dimension list of a tensor.
type Shape []int

// Square returns the shape of an n×n matrix.
func Square(n int) Shape {
	return Shape{n, n}
}

// Elements returns the number of elements described by the shape.
func (s Shape) Elements() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate reports whether the shape is a positive 2-D shape.
func (s Shape) Validate() error {
	if len(s) != 2 || s[0] <= 0 || s[1] <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidShape, []int(s))
	}
	return nil
}

// Backend is the tensor library contract consumed by the harness.
type Backend interface {
	// Adapters enumerates the available adapters in a stable order.
	Adapters() ([]Adapter, error)
	// InitContext opens the context identified by key on the adapter. A false
	// return is an expected failure and is not accompanied by an error.
	InitContext(adapter int, key ContextKey) bool
	// DestroyContext closes the context. Handles still live inside it are
	// discarded by the backend.
	DestroyContext(key ContextKey) error
	// RandomUniform allocates a tensor filled with values drawn from [low, high).
	RandomUniform(key ContextKey, shape Shape, low, high float64) (Handle, error)
	// Matmul returns the matrix product a·b.
	Matmul(key ContextKey, a, b Handle) (Handle, error)
	// Add returns the elementwise sum a+b.
	Add(key ContextKey, a, b Handle) (Handle, error)
	// Multiply returns the elementwise product a⊙b.
	Multiply(key ContextKey, a, b Handle) (Handle, error)
	// Release frees the tensor. Releasing a handle twice is a caller error.
	Release(h Handle) error
}

// Synchronizer is implemented by backends that queue device work
// asynchronously. Synchronize blocks until all work issued in the context has
// completed.
type Synchronizer interface {
	Synchronize(key ContextKey) error
}
