package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return hex.EncodeToString(key)
}

func TestEncryptor_RoundTrip(t *testing.T) {
	enc, err := NewEncryptor(testKey(), "")
	require.NoError(t, err)

	plaintext := []byte("key: sample\nrootProjectName: app\n")
	sealed, err := enc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)
	assert.Greater(t, len(sealed), len(plaintext))

	opened, err := enc.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestEncryptor_SamePayloadSameBytes(t *testing.T) {
	enc, err := NewEncryptor(testKey(), "")
	require.NoError(t, err)

	a, err := enc.Encrypt([]byte("payload"))
	require.NoError(t, err)
	b, err := enc.Encrypt([]byte("payload"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEncryptor_CachePersistence(t *testing.T) {
	dir := t.TempDir()
	first, err := NewEncryptor(testKey(), dir)
	require.NoError(t, err)
	sealed, err := first.Encrypt([]byte("payload"))
	require.NoError(t, err)

	second, err := NewEncryptor(testKey(), dir)
	require.NoError(t, err)
	again, err := second.Encrypt([]byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, sealed, again)

	require.NoError(t, second.ClearCache())
	fresh, err := second.Encrypt([]byte("payload"))
	require.NoError(t, err)
	assert.NotEqual(t, sealed, fresh)
}

func TestEncryptor_InvalidKey(t *testing.T) {
	for _, key := range []string{"", "zz", "00112233"} {
		_, err := NewEncryptor(key, "")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestEncryptor_Decrypt_Invalid(t *testing.T) {
	enc, err := NewEncryptor(testKey(), "")
	require.NoError(t, err)

	_, err = enc.Decrypt([]byte("short"))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = enc.Decrypt(make([]byte, NonceSize+16))
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEncryptor_WrongKey(t *testing.T) {
	enc, err := NewEncryptor(testKey(), "")
	require.NoError(t, err)
	sealed, err := enc.Encrypt([]byte("payload"))
	require.NoError(t, err)

	other, err := GenerateKey()
	require.NoError(t, err)
	dec, err := NewEncryptor(other, "")
	require.NoError(t, err)

	_, err = dec.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	assert.Len(t, key, KeySize*2)
	_, err = NewEncryptor(key, "")
	assert.NoError(t, err)
}
