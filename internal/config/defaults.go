package config

// Keys understood by git-issue.
const (
	KeyListState = "list.state"
	KeyListOrder = "list.order"
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

// DefaultValues returns the default config map for the known keys.
func DefaultValues() map[string]string {
	return map[string]string{
		KeyListState: "open",
		KeyListOrder: "asc",
		KeyLogLevel:  "warn",
		KeyLogFormat: "text",
	}
}

// ApplyDefaults fills any missing known keys in s with their default values.
// The defaults are held in memory only.
func ApplyDefaults(s Store) {
	all := s.All()
	for k, v := range DefaultValues() {
		if _, exists := all[k]; !exists {
			s.SetInMemory(k, v)
		}
	}
}
