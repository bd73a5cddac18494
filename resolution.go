package autoreg

import (
	"fmt"
	"reflect"
)

// Resolve resolves T from r with type safety.
//
//	logger, err := autoreg.Resolve[Logger](provider)
//	repo, err := autoreg.Resolve[GenericRepository[User]](scope)
func Resolve[T any](r Resolver) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrProviderNil
	}

	instance, err := r.GetRequiredService(TypeFor[T]())
	if err != nil {
		return zero, err
	}

	return cast[T](instance)
}

// MustResolve is like Resolve but panics on error. Use it in initialization
// code where a missing service is a programming error.
func MustResolve[T any](r Resolver) T {
	service, err := Resolve[T](r)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", reflect.TypeFor[T](), err))
	}
	return service
}

// TryResolve resolves T from r, returning false when T is not registered.
func TryResolve[T any](r Resolver) (T, bool, error) {
	var zero T
	if r == nil {
		return zero, false, ErrProviderNil
	}

	t := TypeFor[T]()
	if !r.Contains(t) {
		return zero, false, nil
	}

	instance, err := r.GetRequiredService(t)
	if err != nil {
		return zero, false, err
	}

	service, err := cast[T](instance)
	return service, err == nil, err
}

// Invoke calls function on r with its parameters resolved.
func Invoke(r Resolver, function any) error {
	if r == nil {
		return ErrProviderNil
	}
	return r.Invoke(function)
}

func cast[T any](instance any) (T, error) {
	service, ok := instance.(T)
	if !ok {
		var zero T
		return zero, TypeMismatchError{
			Expected: reflect.TypeFor[T](),
			Actual:   reflect.TypeOf(instance),
			Context:  "type assertion",
		}
	}
	return service, nil
}
