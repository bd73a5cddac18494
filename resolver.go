package autoreg

import (
	"context"
	"fmt"
	"reflect"
	"slices"
)

var contextType = reflect.TypeFor[context.Context]()

// resolution is the Resolver handed to factories and constructors. It carries
// the chain of service types being resolved so cycles are reported instead
// of recursing.
type resolution struct {
	scope *scope
	path  []Type
}

func (r *resolution) GetRequiredService(serviceType Type) (any, error) {
	return r.resolve(serviceType)
}

func (r *resolution) GetService(serviceType Type) (any, error) {
	if !r.Contains(serviceType) {
		return nil, nil
	}
	return r.resolve(serviceType)
}

func (r *resolution) Contains(serviceType Type) bool {
	if !serviceType.IsValid() {
		return false
	}
	if serviceType.Reflect() == contextType {
		return true
	}
	return r.scope.provider.serves(serviceType)
}

func (r *resolution) Invoke(function any) error {
	if function == nil {
		return fmt.Errorf("invoke: %w", ErrConstructorNil)
	}

	fn := reflect.ValueOf(function)
	if fn.Kind() != reflect.Func {
		return fmt.Errorf("invoke: expected a function, got %T: %w", function, ErrInvalidArgument)
	}

	return r.invoke(function)
}

func (r *resolution) resolve(serviceType Type) (any, error) {
	if !serviceType.IsValid() {
		return nil, ResolutionError{Cause: ErrServiceTypeNil}
	}

	if serviceType.IsOpen() {
		return nil, ResolutionError{ServiceType: serviceType, Cause: ErrOpenServiceType}
	}

	if serviceType.Reflect() == contextType {
		return r.scope.ctx, nil
	}

	for _, t := range r.path {
		if t.Equal(serviceType) {
			path := append(slices.Clone(r.path), serviceType)
			return nil, ResolutionError{ServiceType: serviceType, Cause: CircularDependencyError{Path: path}}
		}
	}

	p := r.scope.provider
	d, impl, ok, err := p.lookup(serviceType)
	if !ok {
		return nil, ResolutionError{ServiceType: serviceType, Cause: ErrServiceNotFound, Available: p.available()}
	}
	if err != nil {
		return nil, ResolutionError{ServiceType: serviceType, Cause: err}
	}

	next := &resolution{scope: r.scope, path: append(slices.Clone(r.path), serviceType)}
	key := instanceKey{descriptor: d, serviceType: serviceType.Reflect()}

	switch d.Lifetime {
	case Singleton:
		next.scope = p.root
		return p.root.getOrCreate(key, func() (any, error) {
			return next.create(d, serviceType, impl)
		})
	case Scoped:
		return r.scope.getOrCreate(key, func() (any, error) {
			return next.create(d, serviceType, impl)
		})
	default:
		return next.create(d, serviceType, impl)
	}
}

// create produces a new instance for d and records it with the owning scope.
func (r *resolution) create(d *Descriptor, serviceType, impl Type) (any, error) {
	if d.Instance != nil {
		return d.Instance, nil
	}

	var (
		instance any
		err      error
		source   string
	)

	if d.Factory != nil {
		source = "factory result"
		instance, err = d.Factory(r)
	} else {
		source = "implementation " + impl.String()
		instance, err = r.activate(impl)
	}

	if err != nil {
		return nil, ResolutionError{ServiceType: serviceType, Cause: err}
	}

	if instance == nil {
		return nil, ResolutionError{ServiceType: serviceType, Cause: ErrNilInstance}
	}

	if actual := reflect.TypeOf(instance); !actual.AssignableTo(serviceType.Reflect()) {
		return nil, ResolutionError{
			ServiceType: serviceType,
			Cause:       TypeMismatchError{Expected: serviceType.Reflect(), Actual: actual, Context: source},
		}
	}

	r.scope.track(instance)
	return instance, nil
}
