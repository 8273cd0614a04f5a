package biasednonce

import (
	"bytes"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	x := big.NewInt(1234567890)
	want := sha256.Sum256([]byte("1234567890"))
	assert.Equal(t, want[:], DeriveKey(x))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	rng := seededReader(8)
	x, _ := new(big.Int).SetString("7396963955028486781259636759955710221728027870127891401948045075227018276406171608196879852445821149636963347385981489789351021719121707781745606465825173", 10)

	for _, size := range []int{0, 1, 15, 16, 17, 31, 32, 100} {
		plaintext := make([]byte, size)
		_, _ = rng.Read(plaintext)

		ciphertext, err := Encrypt(plaintext, x)
		require.NoError(t, err)
		assert.Equal(t, 0, len(ciphertext)%16)
		assert.Greater(t, len(ciphertext), size, "padding always adds at least one byte")

		got, err := Decrypt(ciphertext, x)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(plaintext, got), "size %d: round trip mismatch", size)
	}
}

func TestEncryptIsECB(t *testing.T) {
	x := big.NewInt(99)
	block := bytes.Repeat([]byte("A"), 16)
	ciphertext, err := Encrypt(append(append([]byte{}, block...), block...), x)
	require.NoError(t, err)
	require.Len(t, ciphertext, 48)
	assert.Equal(t, ciphertext[:16], ciphertext[16:32], "equal plaintext blocks encrypt equally")
}

func TestDecryptWrongKey(t *testing.T) {
	plaintext := []byte("CTF{b1as3d_n0nc3s_l34k_k3ys}")
	ciphertext, err := Encrypt(plaintext, big.NewInt(1))
	require.NoError(t, err)

	for i := int64(2); i < 10; i++ {
		got, err := Decrypt(ciphertext, big.NewInt(i))
		if err != nil {
			assert.ErrorIs(t, err, ErrDecryption)
			continue
		}
		assert.NotEqual(t, plaintext, got)
	}
}

func TestDecryptMalformed(t *testing.T) {
	x := big.NewInt(5)
	_, err := Decrypt(nil, x)
	assert.ErrorIs(t, err, ErrDecryption)
	_, err = Decrypt(make([]byte, 17), x)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestPKCS7Trimming(t *testing.T) {
	out, err := pkcs7Trimming([]byte{'a', 'b', 3, 3, 3}, 16)
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), out)

	for _, bad := range [][]byte{
		{'a', 0},
		{'a', 17},
		{'a', 2, 3},
		{3, 3},
	} {
		_, err := pkcs7Trimming(bad, 16)
		assert.ErrorIs(t, err, ErrDecryption, "%v", bad)
	}
}

func TestCiphertextBytes(t *testing.T) {
	raw := append([]byte{0, 0}, bytes.Repeat([]byte{0xab}, 30)...)
	v := new(big.Int).SetBytes(raw)
	assert.Equal(t, raw, CiphertextBytes(v), "leading zeros are restored")

	assert.Len(t, CiphertextBytes(big.NewInt(1)), 16)
	assert.Len(t, CiphertextBytes(new(big.Int)), 16)
}
