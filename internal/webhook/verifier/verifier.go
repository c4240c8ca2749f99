package verifier

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Verify checks that rawBody was signed with sharedSecret. The signature
// header carries base64(HMAC-SHA256(rawBody)) as sent by the commerce
// platform. Comparison is constant-time. Returns false, never an error,
// on a missing header, empty secret or mismatch.
func Verify(rawBody []byte, signatureHeader string, sharedSecret string) bool {
	if signatureHeader == "" || sharedSecret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(sharedSecret))
	_, _ = mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}

// Sign computes the signature header value for rawBody. Used by tests and
// local tooling to produce valid deliveries.
func Sign(rawBody []byte, sharedSecret string) string {
	mac := hmac.New(sha256.New, []byte(sharedSecret))
	_, _ = mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
