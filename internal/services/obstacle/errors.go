package obstacle

// ConfigError is returned by New when a dependency is missing
type ConfigError string

// Error implements the error interface
func (e ConfigError) Error() string {
	return string(e)
}

const (
	ErrNilConfig        ConfigError = "config cannot be nil"
	ErrNilStore         ConfigError = "store cannot be nil"
	ErrNilPublisher     ConfigError = "publisher cannot be nil"
	ErrNilClock         ConfigError = "clock cannot be nil"
	ErrNilUUIDGenerator ConfigError = "UUID generator cannot be nil"
)
