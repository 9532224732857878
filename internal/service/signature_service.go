package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSignatureService implements ports.SignatureService using HMAC-SHA256.
// The string-to-sign is timestamp + "." + payload. Clock-skew policy is the
// verifier's concern, not this module's.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA256 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign computes HMAC-SHA256(secret, timestamp + "." + payload).
// Returns the lowercase hex-encoded digest. payload must be the exact
// canonical bytes delivered on the wire.
func (s *HMACSignatureService) Sign(secret string, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature against HMAC-SHA256(secret, timestamp + "." + payload).
// Constant-time comparison; returns false on any malformed input, never errors.
func (s *HMACSignatureService) Verify(secret string, timestamp string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := s.Sign(secret, timestamp, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
