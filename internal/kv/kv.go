// Package kv is the durable key-value storage used to persist the food log.
// Values are opaque bytes written wholesale on every save.
package kv

// Store loads and overwrites values by key. Load reports found=false for a
// key that was never saved.
type Store interface {
	Load(key string) (value []byte, found bool, err error)
	Save(key string, value []byte) error
}
