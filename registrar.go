package autoreg

import (
	"cmp"
	"slices"

	"go.uber.org/zap"
)

// Registrar contributes registrations to a shared Collection. Registrars run
// in ascending Order; equal orders keep their input order.
type Registrar interface {
	// Order returns the priority of the registrar. Lower runs first.
	Order() int

	// Register adds registrations to services. A returned error aborts the
	// build.
	Register(services Collection, configuration Configuration) error
}

type registrarFunc struct {
	order    int
	register func(Collection, Configuration) error
}

// NewRegistrar creates a Registrar that runs action with the given order.
//
//	autoreg.NewRegistrar(10, func(services autoreg.Collection) error {
//	    return services.AddSingleton(autoreg.TypeFor[Clock](), autoreg.TypeFor[*SystemClock]())
//	})
func NewRegistrar(order int, action func(services Collection) error) Registrar {
	return &registrarFunc{
		order: order,
		register: func(services Collection, _ Configuration) error {
			if action == nil {
				return nil
			}
			return action(services)
		},
	}
}

// NewConfiguredRegistrar is like NewRegistrar but action also receives the
// build configuration.
func NewConfiguredRegistrar(order int, action func(services Collection, configuration Configuration) error) Registrar {
	return &registrarFunc{
		order: order,
		register: func(services Collection, configuration Configuration) error {
			if action == nil {
				return nil
			}
			return action(services, configuration)
		},
	}
}

func (r *registrarFunc) Order() int { return r.order }

func (r *registrarFunc) Register(services Collection, configuration Configuration) error {
	return r.register(services, configuration)
}

// BuildOptions configures Build.
type BuildOptions struct {
	// Configuration is passed to every registrar. Nil means empty.
	Configuration Configuration

	// Collection receives the registrations. Defaults to a new Collection.
	Collection Collection

	// Logger receives aggregation events and is handed to the provider.
	Logger *zap.Logger

	// ValidateScopes is passed to ProviderOptions.
	ValidateScopes bool
}

// Build runs registrars against a fresh Collection in ascending order and
// builds the result.
//
//	provider, err := autoreg.Build(
//	    infrastructureModule, // order 0
//	    featureModule,        // order 100
//	)
func Build(registrars ...Registrar) (Provider, error) {
	return BuildWithOptions(nil, registrars...)
}

// BuildWithOptions is like Build with custom options.
func BuildWithOptions(options *BuildOptions, registrars ...Registrar) (Provider, error) {
	if options == nil {
		options = &BuildOptions{}
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	services := options.Collection
	if services == nil {
		services = NewCollection()
	}

	configuration := configurationOrEmpty(options.Configuration)

	sorted := make([]Registrar, 0, len(registrars))
	for _, r := range registrars {
		if r != nil {
			sorted = append(sorted, r)
		}
	}
	slices.SortStableFunc(sorted, func(a, b Registrar) int {
		return cmp.Compare(a.Order(), b.Order())
	})

	for i, r := range sorted {
		before := services.Count()
		if err := r.Register(services, configuration); err != nil {
			logger.Debug("registrar failed", zap.Int("index", i), zap.Int("order", r.Order()), zap.Error(err))
			return nil, RegistrarError{Order: r.Order(), Index: i, Cause: err}
		}

		logger.Debug("registrar applied",
			zap.Int("index", i),
			zap.Int("order", r.Order()),
			zap.Int("added", services.Count()-before),
		)
	}

	return services.BuildWithOptions(&ProviderOptions{
		Logger:         logger,
		ValidateScopes: options.ValidateScopes,
	})
}
