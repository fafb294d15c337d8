package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint is a stable digest of a value's canonical JSON form
type Fingerprint string

// NewFingerprint hashes raw bytes
func NewFingerprint(data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// FingerprintOf hashes the JSON encoding of v. encoding/json sorts map keys,
// so equal values always produce equal fingerprints.
func FingerprintOf(v any) (Fingerprint, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return NewFingerprint(data), nil
}

// Short returns the first 12 hex characters
func (f Fingerprint) Short() string {
	if len(f) < 12 {
		return string(f)
	}
	return string(f[:12])
}

// String returns the string representation
func (f Fingerprint) String() string {
	return string(f)
}
