package biasednonce

import (
	"bytes"
	"crypto/aes"
	"crypto/sha256"
	"math/big"

	"github.com/pkg/errors"
)

// DeriveKey returns the AES-256 key SHA-256(decimal string of x).
func DeriveKey(x *big.Int) []byte {
	h := sha256.Sum256([]byte(x.String()))
	return h[:]
}

// Encrypt pads plaintext with PKCS#7 and encrypts it with AES-256-ECB under
// the key derived from x.
func Encrypt(plaintext []byte, x *big.Int) ([]byte, error) {
	block, err := aes.NewCipher(DeriveKey(x))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	content := pkcs7Padding(plaintext, block.BlockSize())
	crypted := make([]byte, len(content))
	for bs := 0; bs < len(content); bs += block.BlockSize() {
		block.Encrypt(crypted[bs:], content[bs:])
	}
	return crypted, nil
}

// Decrypt reverses Encrypt.
//
// Returns:
//   - The plaintext, or ErrDecryption if the ciphertext is not a whole number
//     of blocks or the padding is malformed (usually a wrong key).
func Decrypt(ciphertext []byte, x *big.Int) ([]byte, error) {
	block, err := aes.NewCipher(DeriveKey(x))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	size := block.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%size != 0 {
		return nil, errors.Wrapf(ErrDecryption, "ciphertext length %d is not a positive multiple of %d", len(ciphertext), size)
	}
	decrypted := make([]byte, len(ciphertext))
	for bs := 0; bs < len(ciphertext); bs += size {
		block.Decrypt(decrypted[bs:], ciphertext[bs:])
	}
	return pkcs7Trimming(decrypted, size)
}

// CiphertextBytes converts a ciphertext recorded as an integer back to bytes.
// Leading zero bytes lost by the integer encoding are restored up to the
// next whole block.
func CiphertextBytes(v *big.Int) []byte {
	raw := v.Bytes()
	size := (len(raw) + aes.BlockSize - 1) / aes.BlockSize * aes.BlockSize
	if size == 0 {
		size = aes.BlockSize
	}
	return v.FillBytes(make([]byte, size))
}

func pkcs7Padding(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padtext := bytes.Repeat([]byte{byte(padding)}, padding)
	out := make([]byte, 0, len(data)+padding)
	out = append(out, data...)
	return append(out, padtext...)
}

func pkcs7Trimming(data []byte, blockSize int) ([]byte, error) {
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, errors.Wrapf(ErrDecryption, "bad padding length %d", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, errors.Wrap(ErrDecryption, "inconsistent padding bytes")
		}
	}
	return data[:len(data)-padding], nil
}
