package biasednonce

import (
	"bytes"
	"crypto/sha512"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/ecdsa-biased/pkg/curve"
)

func TestHashTransform(t *testing.T) {
	digest := bytes.Repeat([]byte{0xff}, 64)

	// order as wide as the digest: unchanged
	z := HashTransform(digest, 512)
	assert.Equal(t, 512, z.BitLen())

	// narrower order: the low bits are dropped
	z = HashTransform(digest, 256)
	assert.Equal(t, 256, z.BitLen())
	want := new(big.Int).SetBytes(digest[:32])
	assert.Equal(t, 0, z.Cmp(want))

	// wider order never shifts left
	z = HashTransform([]byte{0x01, 0x02}, 512)
	assert.Equal(t, int64(0x0102), z.Int64())
}

func TestHashMessage(t *testing.T) {
	msg := []byte("Hello Alice.")
	h := sha512.Sum512(msg)

	z := HashMessage(curve.H1(), msg)
	assert.Equal(t, 0, z.Cmp(new(big.Int).SetBytes(h[:])), "512-bit order keeps the whole digest")

	z = HashMessage(curve.Secp256k1(), msg)
	assert.Equal(t, 0, z.Cmp(new(big.Int).SetBytes(h[:32])))
}

func TestDefaultNonceModel(t *testing.T) {
	m := DefaultNonceModel(512)
	require.NoError(t, m.Validate())
	assert.Equal(t, 16, m.Limbs())
	assert.Equal(t, int64(0x01010101), m.A.Int64())

	m = DefaultNonceModel(curve.Secp256k1().OrderBits())
	require.NoError(t, m.Validate())
	assert.Equal(t, 8, m.Limbs())
}

func TestNonceModelValidate(t *testing.T) {
	tests := []struct {
		name  string
		model NonceModel
	}{
		{"missing constants", NonceModel{Bits: 512}},
		{"width not bytes", NonceModel{A: big.NewInt(1), Base: big.NewInt(256), Bits: 12}},
		{"base not power of two", NonceModel{A: big.NewInt(1), Base: big.NewInt(1000), Bits: 64}},
		{"base too small", NonceModel{A: big.NewInt(1), Base: big.NewInt(16), Bits: 64}},
		{"width not whole limbs", NonceModel{A: big.NewInt(1), Base: new(big.Int).Lsh(big.NewInt(1), 32), Bits: 40}},
		{"multiplier overflows limb", NonceModel{A: big.NewInt(2), Base: big.NewInt(256), Bits: 64}},
		{"zero multiplier", NonceModel{A: new(big.Int), Base: big.NewInt(256), Bits: 64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.model.Validate())
		})
	}

	ok := NonceModel{A: big.NewInt(1), Base: big.NewInt(256), Bits: 64}
	assert.NoError(t, ok.Validate())
}

func TestNonceCompose(t *testing.T) {
	m := DefaultNonceModel(512)
	digits := make([]byte, 64)
	for i := range digits {
		digits[i] = byte(i*7 + 3)
	}

	// only the first 16 bytes land below 2^512
	want := new(big.Int)
	for i := 15; i >= 0; i-- {
		want.Lsh(want, 32)
		want.Add(want, big.NewInt(int64(digits[i])))
	}
	want.Mul(want, m.A)
	assert.Equal(t, 0, m.Compose(digits).Cmp(want))
	assert.Equal(t, 0, m.Compose(digits[:16]).Cmp(want))

	digits[40] ^= 0xff
	assert.Equal(t, 0, m.Compose(digits).Cmp(want), "bytes past the limb count must not matter")
	assert.Less(t, want.BitLen(), 513)
}

func TestNonceGenerate(t *testing.T) {
	m := DefaultNonceModel(512)
	k1, err := m.Generate(seededReader(1))
	require.NoError(t, err)
	k2, err := m.Generate(seededReader(1))
	require.NoError(t, err)
	assert.Equal(t, 0, k1.Cmp(k2), "same seed, same nonce")

	digits, err := m.Digits(seededReader(1))
	require.NoError(t, err)
	assert.Len(t, digits, 64)
	assert.Equal(t, 0, m.Compose(digits).Cmp(k1))

	// every surviving limb is a multiple of A below 2^32
	limb := new(big.Int)
	mask := big.NewInt(0xffffffff)
	for i := 0; i < m.Limbs(); i++ {
		limb.Rsh(k1, uint(32*i)).And(limb, mask)
		assert.Equal(t, int64(0), new(big.Int).Mod(limb, m.A).Int64())
	}

	_, err = m.Generate(bytes.NewReader([]byte{1, 2, 3}))
	assert.Error(t, err, "short reader")
}
