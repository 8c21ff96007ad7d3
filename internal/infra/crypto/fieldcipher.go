package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// FieldCipher encrypts personal data columns at rest. Ciphertexts are
// nonce||sealed, base64url encoded. Lookup gives a deterministic digest so
// encrypted emails can still back a unique index.
type FieldCipher struct {
	aead    cipher.AEAD
	hmacKey []byte
}

// NewFieldCipher accepts a 16, 24 or 32 byte AES key.
func NewFieldCipher(key []byte) (*FieldCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("invalid field encryption key: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	// Separate the lookup key from the encryption key.
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("lead-lookup"))

	return &FieldCipher{aead: aead, hmacKey: mac.Sum(nil)}, nil
}

func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *FieldCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}

	size := c.aead.NonceSize()
	if len(raw) < size+c.aead.Overhead() {
		return "", ErrMalformedCiphertext
	}

	plain, err := c.aead.Open(nil, raw[:size], raw[size:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return string(plain), nil
}

// Lookup keys the value exactly as given; callers normalise before hashing if they need to.
func (c *FieldCipher) Lookup(value string) string {
	mac := hmac.New(sha256.New, c.hmacKey)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
