package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
)

// Keyer derives cache keys from arbitrary request inputs so that callers
// who describe what they want (a URL, a query struct, a parameter map) do
// not have to invent key strings themselves.
//
// Contract:
// - Determinism: equal inputs yield equal keys, regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key derives the cache key for input within the named scope. Scopes
	// keep identical inputs from colliding across caches.
	Key(scope string, input any) (string, error)
}

// DefaultKeyer hashes a canonical JSON rendering of the input. Two maps
// with the same contents in different insertion order produce the same key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the keyer the Loader uses when none is supplied.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key derives a key of the form cache:<scope>:<hash16>, where hash16 is
// the first 16 hex characters of SHA-256 over the canonical JSON form of
// input. The prefix keeps keys self-describing in logs.
func (k *DefaultKeyer) Key(scope string, input any) (string, error) {
	canonical, err := canonicalize(input)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize input: %w", err)
	}

	hash := sha256.Sum256(canonical)
	hashStr := hex.EncodeToString(hash[:8])

	return fmt.Sprintf("cache:%s:%s", scope, hashStr), nil
}

// canonicalize renders v as JSON with object keys in sorted order, so the
// bytes fed to the hash do not depend on map iteration.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return jsoniter.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := jsoniter.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		// Nested maps and slices canonicalize recursively.
		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

var _ Keyer = (*DefaultKeyer)(nil)
