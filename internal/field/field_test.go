package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPrimeOrders(t *testing.T) {
	for _, order := range []uint64{0, 1, 4, 6, 8, 9, 12, 100} {
		_, err := New(order)
		assert.Error(t, err, "order %d", order)
	}
	for _, order := range []uint64{2, 3, 5, 7, 11, 13, 97} {
		f, err := New(order)
		require.NoError(t, err, "order %d", order)
		assert.Equal(t, order, f.Order())
	}
}

func TestArithmeticGF5(t *testing.T) {
	f, err := New(5)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), f.Add(4, 3))
	assert.Equal(t, uint64(4), f.Sub(2, 3))
	assert.Equal(t, uint64(3), f.Mul(4, 2))
	assert.Equal(t, uint64(3), f.Neg(2))
	assert.Equal(t, uint64(0), f.Neg(0))
	assert.Equal(t, uint64(4), f.Exp(2, 2))
	assert.Equal(t, uint64(3), f.Reduce(-2))
	assert.Equal(t, uint64(2), f.Reduce(7))
}

func TestInverseRoundTrip(t *testing.T) {
	for _, order := range []uint64{2, 3, 5, 7, 11} {
		f, err := New(order)
		require.NoError(t, err)
		for a := uint64(1); a < order; a++ {
			inv := f.Inv(a)
			assert.Equal(t, uint64(1), f.Mul(a, inv), "q=%d a=%d", order, a)
		}
	}
}

func TestInverseOfZeroPanics(t *testing.T) {
	f, err := New(7)
	require.NoError(t, err)
	assert.Panics(t, func() { f.Inv(0) })
}

func TestVectorOps(t *testing.T) {
	f, err := New(3)
	require.NoError(t, err)

	sum := f.VecAdd([]uint64{1, 2, 0}, []uint64{2, 2, 1})
	assert.Equal(t, []uint64{0, 1, 1}, sum)

	scaled := f.VecScale(2, []uint64{1, 2, 0})
	assert.Equal(t, []uint64{2, 1, 0}, scaled)

	assert.Panics(t, func() { f.VecAdd([]uint64{1}, []uint64{1, 2}) })
}
