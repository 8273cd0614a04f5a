package curve

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldInverse(t *testing.T) {
	f := H1().Field()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		x := new(big.Int).Rand(rng, f.P)
		if x.Sign() == 0 {
			continue
		}
		inv, err := f.Inv(x)
		require.NoError(t, err)
		assert.Equal(t, 0, f.Mul(x, inv).Cmp(big.NewInt(1)))
		assert.Equal(t, 0, inv.Cmp(new(big.Int).ModInverse(x, f.P)))
	}
}

func TestFieldInverseOfZero(t *testing.T) {
	f := H1().Scalars()
	_, err := f.Inv(new(big.Int))
	assert.ErrorIs(t, err, ErrNotInvertible)

	_, err = f.Inv(f.P)
	assert.ErrorIs(t, err, ErrNotInvertible)
}

func TestFieldReduceNegative(t *testing.T) {
	f := NewField(big.NewInt(97))
	assert.Equal(t, int64(96), f.Reduce(big.NewInt(-1)).Int64())
	assert.Equal(t, int64(96), f.Sub(big.NewInt(3), big.NewInt(4)).Int64())
	assert.Equal(t, int64(0), f.Neg(big.NewInt(97)).Int64())
}

func TestFieldSqrt(t *testing.T) {
	f := H1().Field()
	rng := rand.New(rand.NewSource(8))
	x := new(big.Int).Rand(rng, f.P)
	sq := f.Square(x)

	root, ok := f.Sqrt(sq)
	require.True(t, ok)
	assert.Equal(t, 0, f.Square(root).Cmp(sq))

	small := NewField(big.NewInt(7))
	_, ok = small.Sqrt(big.NewInt(3))
	assert.False(t, ok)
}
