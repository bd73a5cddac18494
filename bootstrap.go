package autoreg

import (
	"sync"

	"go.uber.org/zap"
)

// Bootstrap holds a write-once Provider. The first successful Register builds
// it; every later call is a no-op returning the same Provider. A failed build
// leaves the Bootstrap empty so a later call can try again.
//
// Pass the Bootstrap (or its Provider) to the code that needs it; the
// package-level functions use a process default for applications that want
// a single ambient container.
type Bootstrap struct {
	mu       sync.Mutex
	provider Provider
}

// Register builds a Provider from registrars unless one was already built.
func (b *Bootstrap) Register(options *BuildOptions, registrars ...Registrar) (Provider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	logger := zap.NewNop()
	if options != nil && options.Logger != nil {
		logger = options.Logger
	}

	if b.provider != nil {
		logger.Debug("container already registered", zap.String("provider", b.provider.ID()))
		return b.provider, nil
	}

	provider, err := BuildWithOptions(options, registrars...)
	if err != nil {
		return nil, err
	}

	b.provider = provider
	logger.Info("container registered",
		zap.String("provider", provider.ID()),
		zap.Int("registrars", len(registrars)),
	)

	return provider, nil
}

// Provider returns the built Provider, or nil before the first successful
// Register.
func (b *Bootstrap) Provider() Provider {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.provider
}

var defaultBootstrap Bootstrap

// RegisterDefault builds the process default Provider. Only the first
// successful call builds; later calls return the existing Provider.
func RegisterDefault(configuration Configuration, registrars ...Registrar) (Provider, error) {
	return defaultBootstrap.Register(&BuildOptions{Configuration: configuration}, registrars...)
}

// DefaultProvider returns the process default Provider, or nil if
// RegisterDefault has not succeeded yet.
func DefaultProvider() Provider {
	return defaultBootstrap.Provider()
}

// Get resolves T from the process default Provider.
func Get[T any]() (T, error) {
	provider := DefaultProvider()
	if provider == nil {
		var zero T
		return zero, ErrProviderNil
	}
	return Resolve[T](provider)
}

// GetType resolves serviceType from the process default Provider.
func GetType(serviceType Type) (any, error) {
	provider := DefaultProvider()
	if provider == nil {
		return nil, ErrProviderNil
	}
	return provider.GetRequiredService(serviceType)
}
