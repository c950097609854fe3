// Package kvstore provides the durable key-value storage the city list
// persists its snapshots into.
package kvstore

// Store is a minimal durable key-value contract. Values are serialized
// snapshots owned by the caller; the store never interprets them.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Put writes or replaces the value for key.
	Put(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	Close() error
}
