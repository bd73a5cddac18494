package autoreg

import (
	"fmt"
	"reflect"

	"github.com/junioryono/autoreg/internal/reflection"
)

// Descriptor is one entry of a Collection: a service type mapped to exactly
// one source of instances, with a lifetime.
type Descriptor struct {
	// ServiceType is the type consumers resolve.
	ServiceType Type

	// ImplementationType is default-constructed when neither Factory nor
	// Instance is set. It is open only when ServiceType is open.
	ImplementationType Type

	// Factory creates instances. It receives the resolver of the current
	// resolution.
	Factory func(r Resolver) (any, error)

	// Instance is a pre-built singleton value.
	Instance any

	// Lifetime determines instance caching behavior.
	Lifetime Lifetime
}

// IsOpenGeneric reports whether the descriptor maps an open service type.
func (d *Descriptor) IsOpenGeneric() bool {
	return d.ServiceType.IsOpen()
}

func (d *Descriptor) String() string {
	switch {
	case d.Factory != nil:
		return fmt.Sprintf("%s => factory (%s)", d.ServiceType, d.Lifetime)
	case d.Instance != nil:
		return fmt.Sprintf("%s => instance %T (%s)", d.ServiceType, d.Instance, d.Lifetime)
	default:
		return fmt.Sprintf("%s => %s (%s)", d.ServiceType, d.ImplementationType, d.Lifetime)
	}
}

// Validate checks the descriptor's configuration.
func (d *Descriptor) Validate() error {
	if !d.ServiceType.IsValid() {
		return ValidationError{Cause: ErrServiceTypeNil}
	}

	if !d.Lifetime.IsValid() {
		return ValidationError{ServiceType: d.ServiceType, Cause: LifetimeError{Value: int(d.Lifetime)}}
	}

	sources := 0
	if d.ImplementationType.IsValid() {
		sources++
	}
	if d.Factory != nil {
		sources++
	}
	if d.Instance != nil {
		sources++
	}

	switch {
	case sources == 0:
		return ValidationError{ServiceType: d.ServiceType, Cause: ErrImplementationTypeNil}
	case sources > 1:
		return ValidationError{
			ServiceType: d.ServiceType,
			Cause:       fmt.Errorf("descriptor must set exactly one of implementation type, factory or instance: %w", ErrInvalidArgument),
		}
	}

	if d.ServiceType.IsOpen() {
		return d.validateOpenGeneric()
	}

	if d.Instance != nil {
		return d.validateInstance()
	}

	if d.ImplementationType.IsValid() {
		return d.validateImplementation()
	}

	return nil
}

func (d *Descriptor) validateOpenGeneric() error {
	if !d.ImplementationType.IsValid() {
		return ValidationError{ServiceType: d.ServiceType, Cause: ErrOpenGenericFactory}
	}

	if !d.ImplementationType.IsOpen() {
		return ValidationError{ServiceType: d.ServiceType, Cause: ErrOpenServiceClosedImpl}
	}

	if d.ImplementationType.IsAbstract() {
		return ValidationError{
			ServiceType: d.ServiceType,
			Cause:       fmt.Errorf("implementation type %s is abstract: %w", d.ImplementationType, ErrInvalidArgument),
		}
	}

	if d.ServiceType.Arity() != d.ImplementationType.Arity() {
		return ValidationError{
			ServiceType: d.ServiceType,
			Cause: ArityMismatchError{
				Definition: d.ImplementationType.String(),
				Expected:   d.ImplementationType.Arity(),
				Actual:     d.ServiceType.Arity(),
			},
		}
	}

	return nil
}

func (d *Descriptor) validateInstance() error {
	if d.Lifetime != Singleton {
		return ValidationError{
			ServiceType: d.ServiceType,
			Cause:       fmt.Errorf("instances can only be registered as %s, got %s: %w", Singleton, d.Lifetime, ErrInvalidArgument),
		}
	}

	if actual := reflect.TypeOf(d.Instance); !actual.AssignableTo(d.ServiceType.Reflect()) {
		return ValidationError{
			ServiceType: d.ServiceType,
			Cause:       TypeMismatchError{Expected: d.ServiceType.Reflect(), Actual: actual, Context: "instance"},
		}
	}

	return nil
}

func (d *Descriptor) validateImplementation() error {
	impl := d.ImplementationType

	if impl.IsOpen() {
		return ValidationError{
			ServiceType: d.ServiceType,
			Cause:       fmt.Errorf("implementation type %s must be bound for closed service type: %w", impl, ErrInvalidArgument),
		}
	}

	if !impl.IsConcrete() {
		return ValidationError{
			ServiceType: d.ServiceType,
			Cause:       fmt.Errorf("implementation type %s is not instantiable: %w", impl, ErrInvalidArgument),
		}
	}

	if !impl.Reflect().AssignableTo(d.ServiceType.Reflect()) {
		return ValidationError{
			ServiceType: d.ServiceType,
			Cause:       TypeMismatchError{Expected: d.ServiceType.Reflect(), Actual: impl.Reflect(), Context: "implementation type"},
		}
	}

	if ctor, ok := impl.Constructor(); ok {
		if err := reflection.ValidateConstructor(ctor, impl.Reflect()); err != nil {
			return ValidationError{ServiceType: d.ServiceType, Cause: fmt.Errorf("%w: %w", err, ErrInvalidArgument)}
		}
	}

	return nil
}
