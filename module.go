package autoreg

import (
	"fmt"
)

// ModuleOption is one registration step of a module.
type ModuleOption func(services Collection, configuration Configuration) error

type module struct {
	name    string
	order   int
	options []ModuleOption
}

// NewModule creates a named Registrar from registration steps. Modules group
// related registrations the way a library or feature would ship them.
//
//	var StorageModule = autoreg.NewModule("storage", 10,
//	    autoreg.AddSingleton(autoreg.TypeFor[Store](), autoreg.TypeFor[*DiskStore]()),
//	    autoreg.Scan(autoreg.TypeFor[*Index](), autoreg.TypeFor[*Compactor]()),
//	)
func NewModule(name string, order int, options ...ModuleOption) Registrar {
	return &module{name: name, order: order, options: options}
}

func (m *module) Order() int { return m.order }

func (m *module) Register(services Collection, configuration Configuration) error {
	return Include(m.name, m.options...)(services, configuration)
}

func (m *module) String() string {
	return fmt.Sprintf("Module(%s, %d)", m.name, m.order)
}

// Include groups steps under a name so failures report where they came from.
func Include(name string, options ...ModuleOption) ModuleOption {
	return func(services Collection, configuration Configuration) error {
		for _, option := range options {
			if option == nil {
				continue
			}

			if err := option(services, configuration); err != nil {
				return ModuleError{Module: name, Cause: err}
			}
		}
		return nil
	}
}

// AddSingleton creates a ModuleOption mapping serviceType to implementationType as a singleton.
func AddSingleton(serviceType, implementationType Type) ModuleOption {
	return func(services Collection, _ Configuration) error {
		return services.AddSingleton(serviceType, implementationType)
	}
}

// AddScoped creates a ModuleOption mapping serviceType to implementationType as scoped.
func AddScoped(serviceType, implementationType Type) ModuleOption {
	return func(services Collection, _ Configuration) error {
		return services.AddScoped(serviceType, implementationType)
	}
}

// AddTransient creates a ModuleOption mapping serviceType to implementationType as transient.
func AddTransient(serviceType, implementationType Type) ModuleOption {
	return func(services Collection, _ Configuration) error {
		return services.AddTransient(serviceType, implementationType)
	}
}

// AddFactory creates a ModuleOption registering a factory.
func AddFactory(serviceType Type, lifetime Lifetime, factory func(r Resolver) (any, error)) ModuleOption {
	return func(services Collection, _ Configuration) error {
		return services.AddFactory(serviceType, lifetime, factory)
	}
}

// AddInstance creates a ModuleOption registering a pre-built singleton.
func AddInstance(serviceType Type, instance any) ModuleOption {
	return func(services Collection, _ Configuration) error {
		return services.AddInstance(serviceType, instance)
	}
}

// Declared creates a ModuleOption that registers implementationType under
// one declaration, optionally through factory.
func Declared(declaration ServiceDeclaration, implementationType Type, factory Factory) ModuleOption {
	return func(services Collection, _ Configuration) error {
		_, err := Register(services, declaration, implementationType, factory)
		return err
	}
}

// Scan creates a ModuleOption that registers candidates from DefaultCatalog.
func Scan(candidates ...Type) ModuleOption {
	return func(services Collection, _ Configuration) error {
		_, err := NewScanner(nil, nil).ScanTypes(candidates, services, nil)
		return err
	}
}

// ScanCatalog creates a ModuleOption that registers every type attached to
// catalog. A nil catalog scans DefaultCatalog.
func ScanCatalog(catalog *Catalog) ModuleOption {
	return func(services Collection, _ Configuration) error {
		_, err := NewScanner(catalog, nil).ScanCatalog(services, nil)
		return err
	}
}

// Configure creates a ModuleOption that decodes the configuration section
// at key into a value of type T and hands it to register.
//
//	autoreg.Configure("cache", func(services autoreg.Collection, opts CacheOptions) error {
//	    return services.AddInstance(autoreg.TypeFor[CacheOptions](), opts)
//	})
func Configure[T any](key string, register func(services Collection, value T) error) ModuleOption {
	return func(services Collection, configuration Configuration) error {
		var value T
		if err := configurationOrEmpty(configuration).Decode(key, &value); err != nil {
			return err
		}
		return register(services, value)
	}
}
