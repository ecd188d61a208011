package state

import "strings"

// Persister is a namespaced key-value store beneath a common root. Paths
// are '/'-joined; values are opaque bytes. Implementations must make
// GetMany/SetMany behave as single batched calls, but no transactional
// guarantee is required across separate calls.
type Persister interface {
	// Get returns the bytes at path, or a NotFound error.
	Get(path string) ([]byte, error)

	// GetMany returns the values for the paths which exist; missing paths
	// are simply absent from the returned map.
	GetMany(paths []string) (map[string][]byte, error)

	Set(path string, data []byte) error

	SetMany(entries map[string][]byte) error

	// Delete recursively removes path and everything beneath it. Deleting
	// a missing path is not an error.
	Delete(path string) error

	// Children returns the sorted immediate child names beneath path, or
	// an empty list if path has none.
	Children(path string) ([]string, error)
}

// JoinPath joins path elements with the persister separator.
func JoinPath(elems ...string) string {
	return strings.Join(elems, "/")
}
