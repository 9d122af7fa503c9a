// Package fingerprint computes a stable content hash used to decide
// whether a source file's cached diagnostics are still valid. It is
// grounded directly on inspector/graph/hash.go's use of
// github.com/minio/highwayhash for the same purpose (a fast, stable
// hash of a file's byte content).
package fingerprint

import (
	"encoding/hex"

	"github.com/minio/highwayhash"
)

// key is a fixed 32-byte HighwayHash key. It only needs to be stable
// across runs of this tool, not secret - fingerprints are a cache key,
// never a security boundary.
var key = []byte("vbalint-fingerprint-key-32bytes!")

// Of returns the hex-encoded HighwayHash-64 of content.
func Of(content []byte) (string, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return "", err
	}
	if _, err := hash.Write(content); err != nil {
		return "", err
	}
	sum := hash.Sum(nil)
	return hex.EncodeToString(sum), nil
}
