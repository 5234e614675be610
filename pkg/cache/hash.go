package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the hex SHA-256 of the JSON encoding of v.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return Hash(data), nil
}

// hashKey hashes key components. Values that cannot be marshaled fall back
// to their Go syntax representation so a key is always produced.
func hashKey(v any) string {
	h, err := HashJSON(v)
	if err != nil {
		return Hash([]byte(fmt.Sprintf("%#v", v)))
	}
	return h
}
