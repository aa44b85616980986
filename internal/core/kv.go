package core

// KV is durable string key-value storage scoped to one namespace.
// Games use it to keep saved sessions and best scores; the platform decides
// where the data lives (SQLite, memory) and which namespace a game gets.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Remove deletes a key. Removing a missing key is not an error.
	Remove(key string) error
}
