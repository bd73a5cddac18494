package autoreg

import (
	"sync"
)

// Collection is the container builder: an ordered list of service
// descriptors that is built into a Provider.
//
// Entries are kept in registration order. When several entries share a
// service type the last one wins at resolution time.
//
// Example:
//
//	services := autoreg.NewCollection()
//	services.AddSingleton(autoreg.TypeFor[Logger](), autoreg.TypeFor[*ConsoleLogger]())
//
//	provider, err := services.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
type Collection interface {
	// Add appends a descriptor after validating it.
	Add(descriptor *Descriptor) error

	// AddSingleton maps serviceType to implementationType with Singleton lifetime.
	AddSingleton(serviceType, implementationType Type) error

	// AddScoped maps serviceType to implementationType with Scoped lifetime.
	AddScoped(serviceType, implementationType Type) error

	// AddTransient maps serviceType to implementationType with Transient lifetime.
	AddTransient(serviceType, implementationType Type) error

	// AddFactory maps serviceType to a factory function.
	AddFactory(serviceType Type, lifetime Lifetime, factory func(r Resolver) (any, error)) error

	// AddInstance registers a pre-built singleton value.
	AddInstance(serviceType Type, instance any) error

	// Contains reports whether serviceType has at least one entry.
	Contains(serviceType Type) bool

	// ToSlice returns the entries in registration order.
	ToSlice() []*Descriptor

	// Count returns the number of entries.
	Count() int

	// Build creates a Provider from the registered entries using default options.
	Build() (Provider, error)

	// BuildWithOptions creates a Provider with custom options.
	BuildWithOptions(options *ProviderOptions) (Provider, error)
}

type collection struct {
	mu          sync.RWMutex
	descriptors []*Descriptor
}

// NewCollection creates a new empty Collection.
func NewCollection() Collection {
	return &collection{}
}

func (c *collection) Add(descriptor *Descriptor) error {
	if descriptor == nil {
		return ErrDescriptorNil
	}

	if err := descriptor.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.descriptors = append(c.descriptors, descriptor)
	c.mu.Unlock()

	return nil
}

func (c *collection) AddSingleton(serviceType, implementationType Type) error {
	return c.addType(serviceType, implementationType, Singleton)
}

func (c *collection) AddScoped(serviceType, implementationType Type) error {
	return c.addType(serviceType, implementationType, Scoped)
}

func (c *collection) AddTransient(serviceType, implementationType Type) error {
	return c.addType(serviceType, implementationType, Transient)
}

func (c *collection) addType(serviceType, implementationType Type, lifetime Lifetime) error {
	return c.Add(&Descriptor{
		ServiceType:        serviceType,
		ImplementationType: implementationType,
		Lifetime:           lifetime,
	})
}

func (c *collection) AddFactory(serviceType Type, lifetime Lifetime, factory func(r Resolver) (any, error)) error {
	if factory == nil {
		return ValidationError{ServiceType: serviceType, Cause: ErrFactoryNil}
	}

	return c.Add(&Descriptor{
		ServiceType: serviceType,
		Factory:     factory,
		Lifetime:    lifetime,
	})
}

func (c *collection) AddInstance(serviceType Type, instance any) error {
	if instance == nil {
		return ValidationError{ServiceType: serviceType, Cause: ErrNilInstance}
	}

	return c.Add(&Descriptor{
		ServiceType: serviceType,
		Instance:    instance,
		Lifetime:    Singleton,
	})
}

func (c *collection) Contains(serviceType Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, d := range c.descriptors {
		if d.ServiceType.Equal(serviceType) {
			return true
		}
	}
	return false
}

func (c *collection) ToSlice() []*Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	descriptors := make([]*Descriptor, len(c.descriptors))
	copy(descriptors, c.descriptors)
	return descriptors
}

func (c *collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.descriptors)
}

func (c *collection) Build() (Provider, error) {
	return c.BuildWithOptions(nil)
}

func (c *collection) BuildWithOptions(options *ProviderOptions) (Provider, error) {
	p := newProvider(c.ToSlice(), options)

	if options != nil && options.ValidateScopes {
		if err := p.validateScopes(); err != nil {
			return nil, err
		}
	}

	return p, nil
}
