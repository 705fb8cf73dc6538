package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	secret := []byte("super-secret")
	body := []byte(`{"type":"payment","data":{"id":123}}`)
	v := NewSignatureVerifier(secret)

	digest := sign(secret, body)

	assert.True(t, v.Verify(body, digest), "bare hex digest should verify")
	assert.True(t, v.Verify(body, "sha256="+digest), "sha256= prefix should verify")
	assert.True(t, v.Verify(body, "ts=1704908010,v1="+digest+",v2=abc"), "v1 segment should verify")
}

func TestVerifySignatureBodyMutation(t *testing.T) {
	secret := []byte("super-secret")
	body := []byte(`{"type":"payment","data":{"id":123}}`)
	v := NewSignatureVerifier(secret)
	digest := sign(secret, body)

	mutated := append([]byte{}, body...)
	mutated[0] = '['

	assert.False(t, v.Verify(mutated, digest))
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	body := []byte(`{"id":1}`)
	v := NewSignatureVerifier([]byte("right"))

	assert.False(t, v.Verify(body, sign([]byte("wrong"), body)))
}

func TestVerifySignatureGarbageHeader(t *testing.T) {
	v := NewSignatureVerifier([]byte("secret"))

	assert.False(t, v.Verify([]byte("{}"), ""))
	assert.False(t, v.Verify([]byte("{}"), "v1="))
	assert.False(t, v.Verify([]byte("{}"), "ts=,,,,"))
	assert.False(t, v.Verify([]byte("{}"), "not-hex-at-all"))
}

func TestVerifySignatureEmptySecretFailsClosed(t *testing.T) {
	body := []byte(`{"id":1}`)
	v := NewSignatureVerifier(nil)

	// Even a digest computed with an empty key must be rejected.
	assert.False(t, v.Verify(body, sign(nil, body)))
}
