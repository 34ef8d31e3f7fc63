// internal/cardcrypto/codec_test.go
package cardcrypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKey    = []byte("0123456789abcdef0123456789abcdef") // 32 bytes
	testSecret = []byte("fingerprint-secret")
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	codec, err := NewCodec(testKey, testSecret)
	require.NoError(t, err)

	encrypted, err := codec.Encrypt("4242424242424242")
	require.NoError(t, err)
	assert.NotContains(t, encrypted, "4242424242424242")

	decrypted, err := codec.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "4242424242424242", decrypted)
}

func TestEncryptUsesRandomIV(t *testing.T) {
	codec, err := NewCodec(testKey, testSecret)
	require.NoError(t, err)

	a, err := codec.Encrypt("378282246310005")
	require.NoError(t, err)
	b, err := codec.Encrypt("378282246310005")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "same plaintext must not produce the same ciphertext")
}

func TestFingerprintIsDeterministic(t *testing.T) {
	codec, err := NewCodec(testKey, testSecret)
	require.NoError(t, err)

	assert.Equal(t, codec.Fingerprint("79927398713"), codec.Fingerprint("79927398713"))
	assert.NotEqual(t, codec.Fingerprint("79927398713"), codec.Fingerprint("79927398714"))

	other, err := NewCodec(testKey, []byte("other-secret"))
	require.NoError(t, err)
	assert.NotEqual(t, codec.Fingerprint("79927398713"), other.Fingerprint("79927398713"))
}

func TestNewCodecValidatesInputs(t *testing.T) {
	_, err := NewCodec([]byte("short"), testSecret)
	assert.Error(t, err)

	_, err = NewCodec(testKey, nil)
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	codec, err := NewCodec(testKey, testSecret)
	require.NoError(t, err)

	_, err = codec.Decrypt("")
	assert.Error(t, err)
	_, err = codec.Decrypt("not-hex")
	assert.Error(t, err)
	_, err = codec.Decrypt("abcd")
	assert.Error(t, err)
}
