package admission

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Credential format: a mode-tagged prefix followed by 32 random bytes in
// hex. Total length sits inside the 30–100 char envelope enforced at
// authentication time.
const (
	keyPrefixLive = "fb_live_"
	keyPrefixTest = "fb_test_"

	keyMinLen = 30
	keyMaxLen = 100

	// displayPrefixLen is how much of the raw key is kept for UI display.
	displayPrefixLen = 12
)

// GenerateKey mints a new API key. Returns the plaintext (shown once),
// its SHA-256 digest for storage, and the truncated display prefix.
func GenerateKey(live bool) (plaintext, digest, displayPrefix string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", "", fmt.Errorf("generate api key: %w", err)
	}

	prefix := keyPrefixTest
	if live {
		prefix = keyPrefixLive
	}
	plaintext = prefix + hex.EncodeToString(buf)
	return plaintext, Digest(plaintext), plaintext[:displayPrefixLen], nil
}

// Digest returns the hex-encoded SHA-256 digest of a raw key. Keys are
// looked up by digest; the plaintext is never persisted.
func Digest(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// validKeyFormat checks the credential envelope before any store I/O:
// a recognized mode prefix and a length inside [30, 100].
func validKeyFormat(rawKey string) bool {
	if len(rawKey) < keyMinLen || len(rawKey) > keyMaxLen {
		return false
	}
	return strings.HasPrefix(rawKey, keyPrefixLive) || strings.HasPrefix(rawKey, keyPrefixTest)
}
