package autoreg

import (
	"fmt"
	"reflect"

	"go.uber.org/dig"
)

var errorType = reflect.TypeFor[error]()

// activate default-constructs impl. Types without a constructor are
// allocated as zero values; pointer types get a fresh pointee.
func (r *resolution) activate(impl Type) (any, error) {
	ctor, ok := impl.Constructor()
	if !ok {
		return zeroInstance(impl.Reflect()), nil
	}

	c, err := r.container(ctor.Type(), impl.Reflect())
	if err != nil {
		return nil, ConstructorInvocationError{Constructor: ctor.Type(), Cause: err}
	}

	if err := c.Provide(ctor.Interface()); err != nil {
		return nil, ConstructorInvocationError{Constructor: ctor.Type(), Cause: err}
	}

	var instance any
	sink := reflect.MakeFunc(
		reflect.FuncOf([]reflect.Type{impl.Reflect()}, nil, false),
		func(args []reflect.Value) []reflect.Value {
			instance = args[0].Interface()
			return nil
		},
	)

	if err := c.Invoke(sink.Interface()); err != nil {
		return nil, ConstructorInvocationError{Constructor: ctor.Type(), Cause: dig.RootCause(err)}
	}

	return instance, nil
}

func (r *resolution) invoke(function any) error {
	c, err := r.container(reflect.TypeOf(function), nil)
	if err != nil {
		return err
	}

	if err := c.Invoke(function); err != nil {
		return dig.RootCause(err)
	}
	return nil
}

// container builds a dig container for a single call. Every dependency of
// fnType that the provider can serve is provided lazily through r;
// dependencies it cannot serve are left out so dig reports them, or leaves
// optional ones zero.
func (r *resolution) container(fnType, exclude reflect.Type) (*dig.Container, error) {
	info, err := r.scope.provider.analyzer.Analyze(fnType)
	if err != nil {
		return nil, err
	}

	c := dig.New(dig.RecoverFromPanics())

	for _, dep := range info.Dependencies {
		if dep.Type == exclude {
			continue
		}

		depType := TypeOf(dep.Type)
		if !r.Contains(depType) {
			continue
		}

		if err := c.Provide(r.lazy(depType)); err != nil {
			return nil, fmt.Errorf("provide %s: %w", depType, err)
		}
	}

	return c, nil
}

// lazy returns a constructor func() (T, error) resolving t through r.
func (r *resolution) lazy(t Type) any {
	rt := t.Reflect()

	return reflect.MakeFunc(
		reflect.FuncOf(nil, []reflect.Type{rt, errorType}, false),
		func([]reflect.Value) []reflect.Value {
			out := reflect.New(rt).Elem()

			v, err := r.GetRequiredService(t)
			if err != nil {
				return []reflect.Value{out, reflect.ValueOf(&err).Elem()}
			}

			out.Set(reflect.ValueOf(v))
			return []reflect.Value{out, reflect.Zero(errorType)}
		},
	).Interface()
}

func zeroInstance(rt reflect.Type) any {
	switch rt.Kind() {
	case reflect.Pointer:
		return reflect.New(rt.Elem()).Interface()
	case reflect.Map:
		return reflect.MakeMap(rt).Interface()
	default:
		return reflect.New(rt).Elem().Interface()
	}
}
