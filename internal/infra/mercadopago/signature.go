package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureVerifier authenticates webhook deliveries via HMAC-SHA256 over the
// byte-exact request body. With an empty secret it rejects everything.
type SignatureVerifier struct {
	secret []byte
}

func NewSignatureVerifier(secret []byte) *SignatureVerifier {
	return &SignatureVerifier{secret: secret}
}

// Verify never fails open: any problem extracting or comparing the digest is
// a negative verdict, not an error.
func (v *SignatureVerifier) Verify(body []byte, header string) bool {
	if len(v.secret) == 0 {
		return false
	}

	digest := extractDigest(header)
	if digest == "" {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(digest)))
}

// extractDigest handles the two header forms the provider has shipped over
// time: a structured "ts=...,v1=<hex>" value and a bare hex digest with an
// optional "sha256=" prefix.
func extractDigest(header string) string {
	if idx := strings.Index(header, "v1="); idx >= 0 {
		rest := header[idx+len("v1="):]
		if comma := strings.Index(rest, ","); comma >= 0 {
			rest = rest[:comma]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "sha256="))
}
