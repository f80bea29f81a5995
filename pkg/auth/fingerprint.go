package auth

import (
	"crypto/sha256"
	"fmt"
	"os"
)

// pepper keeps password fingerprints unlinkable to raw hashes if the
// attempt log leaks. Overridable for deployments; never logged.
var pepper = func() string {
	if p := os.Getenv("FINGERPRINT_PEPPER"); p != "" {
		return p
	}
	return "sentinel-default-pepper"
}()

// ClientFingerprint hashes IP + User-Agent into a stable client identifier.
func ClientFingerprint(ipAddress, userAgent string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", ipAddress, userAgent)))
	return fmt.Sprintf("%x", hash)[:32]
}

// FingerprintPassword returns a peppered hash of the submitted password,
// recorded per attempt so shared-password reuse across accounts is visible
// without storing anything reversible.
func FingerprintPassword(password string) string {
	hash := sha256.Sum256([]byte(pepper + password))
	return fmt.Sprintf("%x", hash)
}
