package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/mwiater/adapterbench/internal/compute"
)

func TestAdaptersExposeSingleHostAdapter(t *testing.T) {
	adapters, err := compute.ListAdapters(New())
	require.NoError(t, err)
	require.Len(t, adapters, 1)
	assert.Equal(t, "cpu", adapters[0].Backend)
	assert.Equal(t, 0, adapters[0].Index)
}

func TestInitContextRejectsUnknownAdapterAndDuplicateKey(t *testing.T) {
	b := New()
	assert.False(t, b.InitContext(1, compute.KeyFor(1)))
	assert.True(t, b.InitContext(0, compute.KeyFor(0)))
	assert.False(t, b.InitContext(0, compute.KeyFor(0)))

	require.NoError(t, b.DestroyContext(compute.KeyFor(0)))
	assert.True(t, b.InitContext(0, compute.KeyFor(0)))
}

func TestRandomUniformStaysInRange(t *testing.T) {
	b := New(WithSeed(7))
	key := compute.KeyFor(0)
	require.True(t, b.InitContext(0, key))

	h, err := b.RandomUniform(key, compute.Square(8), 0, 1)
	require.NoError(t, err)

	m := b.contexts[key].tensors[h]
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
	}
}

func TestRandomUniformValidatesInput(t *testing.T) {
	b := New()
	key := compute.KeyFor(0)
	require.True(t, b.InitContext(0, key))

	_, err := b.RandomUniform(key, compute.Shape{4}, 0, 1)
	assert.ErrorIs(t, err, compute.ErrInvalidShape)

	_, err = b.RandomUniform(key, compute.Square(4), 1, 1)
	assert.Error(t, err)

	_, err = b.RandomUniform(compute.KeyFor(3), compute.Square(4), 0, 1)
	assert.ErrorIs(t, err, compute.ErrUnknownContext)
}

func TestArithmeticMatchesGonum(t *testing.T) {
	b := New(WithSeed(1))
	key := compute.KeyFor(0)
	require.True(t, b.InitContext(0, key))

	x, err := b.RandomUniform(key, compute.Square(3), 0, 1)
	require.NoError(t, err)
	y, err := b.RandomUniform(key, compute.Square(3), 0, 1)
	require.NoError(t, err)

	prod, err := b.Matmul(key, x, y)
	require.NoError(t, err)
	sum, err := b.Add(key, x, y)
	require.NoError(t, err)
	had, err := b.Multiply(key, x, y)
	require.NoError(t, err)

	mx, my := b.contexts[key].tensors[x], b.contexts[key].tensors[y]
	var want mat.Dense
	want.Mul(mx, my)
	assert.True(t, mat.EqualApprox(&want, b.contexts[key].tensors[prod], 1e-12))
	want.Reset()
	want.Add(mx, my)
	assert.True(t, mat.EqualApprox(&want, b.contexts[key].tensors[sum], 1e-12))
	want.Reset()
	want.MulElem(mx, my)
	assert.True(t, mat.EqualApprox(&want, b.contexts[key].tensors[had], 1e-12))
}

func TestShapeMismatch(t *testing.T) {
	b := New()
	key := compute.KeyFor(0)
	require.True(t, b.InitContext(0, key))

	x, err := b.RandomUniform(key, compute.Shape{2, 3}, 0, 1)
	require.NoError(t, err)
	y, err := b.RandomUniform(key, compute.Shape{2, 3}, 0, 1)
	require.NoError(t, err)

	_, err = b.Matmul(key, x, y)
	assert.ErrorIs(t, err, compute.ErrShapeMismatch)

	z, err := b.RandomUniform(key, compute.Shape{3, 2}, 0, 1)
	require.NoError(t, err)
	_, err = b.Add(key, x, z)
	assert.ErrorIs(t, err, compute.ErrShapeMismatch)
	_, err = b.Multiply(key, x, z)
	assert.ErrorIs(t, err, compute.ErrShapeMismatch)
}

func TestReleaseTwiceFails(t *testing.T) {
	b := New()
	key := compute.KeyFor(0)
	require.True(t, b.InitContext(0, key))

	h, err := b.RandomUniform(key, compute.Square(2), 0, 1)
	require.NoError(t, err)
	require.NoError(t, b.Release(h))
	assert.ErrorIs(t, b.Release(h), compute.ErrUnknownTensor)
}

func TestDestroyContextDropsTensors(t *testing.T) {
	b := New()
	key := compute.KeyFor(0)
	require.True(t, b.InitContext(0, key))
	h, err := b.RandomUniform(key, compute.Square(2), 0, 1)
	require.NoError(t, err)

	require.NoError(t, b.DestroyContext(key))
	assert.ErrorIs(t, b.Release(h), compute.ErrUnknownTensor)
	assert.ErrorIs(t, b.Synchronize(key), compute.ErrUnknownContext)
	assert.ErrorIs(t, b.DestroyContext(key), compute.ErrUnknownContext)
}

func TestTensorsAreScopedToTheirContext(t *testing.T) {
	b := New()
	first := compute.KeyFor(0)
	require.True(t, b.InitContext(0, first))
	h, err := b.RandomUniform(first, compute.Square(2), 0, 1)
	require.NoError(t, err)
	require.NoError(t, b.DestroyContext(first))

	second := compute.ContextKey("adapter_0_retry")
	require.True(t, b.InitContext(0, second))
	g, err := b.RandomUniform(second, compute.Square(2), 0, 1)
	require.NoError(t, err)

	_, err = b.Matmul(second, h, g)
	assert.ErrorIs(t, err, compute.ErrUnknownTensor)
}
