package config

// Store provides key-value access to git-issue configuration.
// Keys are flat strings: "list.state" is a literal key, not a nested path.
type Store interface {
	// Get returns the value for key and whether it was found.
	Get(key string) (string, bool)

	// Set writes key=value to the store and persists to disk.
	Set(key, value string) error

	// SetInMemory writes key=value without persisting. Defaults and
	// environment overrides go through here so they never end up in the
	// config file.
	SetInMemory(key, value string)

	// Unset removes key from the store and persists to disk.
	Unset(key string) error

	// All returns a copy of all key-value pairs.
	All() map[string]string
}
