// internal/cardcrypto/codec.go

// Package cardcrypto encrypts card numbers at the persistence boundary.
// The store writes the AES ciphertext plus a keyed fingerprint; the
// fingerprint is deterministic so it can back the unique index and
// lookups by number, while the ciphertext uses a random IV.
package cardcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Codec encrypts, decrypts and fingerprints card numbers.
type Codec struct {
	key        []byte
	hmacSecret []byte
}

// NewCodec validates the AES key length and returns a Codec.
func NewCodec(key, hmacSecret []byte) (*Codec, error) {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 16, 24, or 32 bytes, got %d", len(key))
	}
	if len(hmacSecret) == 0 {
		return nil, fmt.Errorf("hmac secret must not be empty")
	}
	return &Codec{key: key, hmacSecret: hmacSecret}, nil
}

// Encrypt encrypts the number with AES-CBC under a random IV and
// returns hex(iv || ciphertext).
func (c *Codec) Encrypt(number string) (string, error) {
	if number == "" {
		return "", fmt.Errorf("input data is empty")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	// PKCS#7 padding
	data := []byte(number)
	padding := aes.BlockSize - len(data)%aes.BlockSize
	for i := 0; i < padding; i++ {
		data = append(data, byte(padding))
	}

	ciphertext := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, data)

	return hex.EncodeToString(append(iv, ciphertext...)), nil
}

// Decrypt reverses Encrypt.
func (c *Codec) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", fmt.Errorf("encrypted data is empty")
	}

	data, err := hex.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode hex: %w", err)
	}
	if len(data) < aes.BlockSize {
		return "", fmt.Errorf("encrypted data too short: %d bytes", len(data))
	}

	iv := data[:aes.BlockSize]
	ciphertext := data[aes.BlockSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("invalid ciphertext length: %d bytes", len(ciphertext))
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	padding := int(plaintext[len(plaintext)-1])
	if padding == 0 || padding > aes.BlockSize || padding > len(plaintext) {
		return "", fmt.Errorf("invalid padding value: %d", padding)
	}
	for i := len(plaintext) - padding; i < len(plaintext); i++ {
		if int(plaintext[i]) != padding {
			return "", fmt.Errorf("invalid padding byte at position %d", i)
		}
	}

	return string(plaintext[:len(plaintext)-padding]), nil
}

// Fingerprint returns a deterministic HMAC-SHA256 of the number,
// hex-encoded. Used for the unique index and number lookups.
func (c *Codec) Fingerprint(number string) string {
	h := hmac.New(sha256.New, c.hmacSecret)
	h.Write([]byte(number))
	return hex.EncodeToString(h.Sum(nil))
}
