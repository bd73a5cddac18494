package autoreg

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ========================================
// Error Kinds
// ========================================
// Every error returned by this package matches exactly one kind through
// errors.Is. The kinds are never returned on their own.

var (
	// ErrInvalidArgument is the kind of errors caused by a bad argument:
	// a missing implementation type, a generic arity mismatch, an invalid lifetime.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupported is the kind of errors caused by a registration shape the
	// container cannot serve.
	ErrUnsupported = errors.ErrUnsupported
)

// ========================================
// Sentinel Errors
// ========================================

var (
	// Registration errors.
	ErrImplementationTypeNil = kindError(ErrInvalidArgument, "implementation type cannot be nil")
	ErrServiceTypeNil        = kindError(ErrInvalidArgument, "service type cannot be nil")
	ErrCollectionNil         = kindError(ErrInvalidArgument, "service collection cannot be nil")
	ErrDescriptorNil         = kindError(ErrInvalidArgument, "descriptor cannot be nil")
	ErrConstructorNil        = kindError(ErrInvalidArgument, "constructor cannot be nil")
	ErrFactoryNil            = kindError(ErrInvalidArgument, "factory cannot be nil")
	ErrOpenGenericFactory    = kindError(ErrUnsupported, "cannot provide an instantiation function for open generic types")
	ErrOpenServiceClosedImpl = kindError(ErrInvalidArgument, "open generic service type requires an open generic implementation type")
	ErrNoInstantiation       = kindError(ErrInvalidArgument, "no instantiation bound for type arguments")
	ErrCaptiveDependency     = kindError(ErrInvalidArgument, "singleton service cannot depend on scoped service")

	// Resolution errors.
	ErrServiceNotFound  = errors.New("service not found")
	ErrOpenServiceType  = kindError(ErrInvalidArgument, "open generic types cannot be resolved")
	ErrNilInstance      = errors.New("activation produced a nil instance")
	ErrProviderNil      = errors.New("service provider has not been registered")
	ErrProviderDisposed = errors.New("service provider has been disposed")
	ErrScopeDisposed    = errors.New("scope has been disposed")
)

var (
	_ error = LifetimeError{}
	_ error = RegistrationError{}
	_ error = ValidationError{}
	_ error = ArityMismatchError{}
	_ error = ResolutionError{}
	_ error = TypeMismatchError{}
	_ error = CircularDependencyError{}
	_ error = ConstructorInvocationError{}
	_ error = ModuleError{}
	_ error = RegistrarError{}
	_ error = DisposalError{}
)

// kindedError is a sentinel with a stable message that unwraps to its kind.
type kindedError struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) error {
	return &kindedError{kind: kind, msg: msg}
}

func (e *kindedError) Error() string {
	return e.msg
}

func (e *kindedError) Unwrap() error {
	return e.kind
}

// ========================================
// Typed Errors
// ========================================

// LifetimeError indicates an invalid service lifetime value.
type LifetimeError struct {
	Value any
}

func (e LifetimeError) Error() string {
	return fmt.Sprintf("invalid service lifetime: %v", e.Value)
}

func (e LifetimeError) Unwrap() error {
	return ErrInvalidArgument
}

// RegistrationError wraps errors raised while recording a registration.
type RegistrationError struct {
	ServiceType        Type
	ImplementationType Type
	Operation          string // "register", "bind", "add"
	Cause              error
}

func (e RegistrationError) Error() string {
	if e.ImplementationType.IsValid() {
		return fmt.Sprintf("failed to %s %s as %s: %v",
			e.Operation, e.ImplementationType, formatType(e.ServiceType), e.Cause)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, formatType(e.ServiceType), e.Cause)
}

func (e RegistrationError) Unwrap() error {
	return e.Cause
}

// ValidationError indicates a descriptor failed validation.
type ValidationError struct {
	ServiceType Type
	Cause       error
}

func (e ValidationError) Error() string {
	if e.ServiceType.IsValid() {
		return fmt.Sprintf("%s: %v", e.ServiceType, e.Cause)
	}
	return e.Cause.Error()
}

func (e ValidationError) Unwrap() error {
	return e.Cause
}

// ArityMismatchError indicates type arguments that do not line up with the
// parameters of a generic definition.
type ArityMismatchError struct {
	Definition string
	Expected   int
	Actual     int
}

func (e ArityMismatchError) Error() string {
	return fmt.Sprintf("generic arity mismatch for %s: expected %d type arguments, got %d",
		e.Definition, e.Expected, e.Actual)
}

func (e ArityMismatchError) Unwrap() error {
	return ErrInvalidArgument
}

// ResolutionError wraps errors that occur during service resolution.
type ResolutionError struct {
	ServiceType Type
	Cause       error
	Available   []Type // registered service types, used for suggestions
}

func (e ResolutionError) Error() string {
	var b strings.Builder

	if e.Cause == nil || errors.Is(e.Cause, ErrServiceNotFound) {
		b.WriteString(fmt.Sprintf("service not found: %s", formatType(e.ServiceType)))
	} else {
		b.WriteString(fmt.Sprintf("unable to resolve %s: %v", formatType(e.ServiceType), e.Cause))
	}

	if similar := findSimilarTypes(e.ServiceType, e.Available); len(similar) > 0 {
		b.WriteString("\n\nDid you mean one of these?\n")
		for _, t := range similar {
			b.WriteString(fmt.Sprintf("  • %s\n", t))
		}
	}

	return b.String()
}

func (e ResolutionError) Unwrap() error {
	if e.Cause == nil {
		return ErrServiceNotFound
	}
	return e.Cause
}

// findSimilarTypes finds registered types whose name resembles the target.
func findSimilarTypes(target Type, available []Type) []Type {
	if !target.IsValid() || len(available) == 0 {
		return nil
	}

	targetName := strings.ToLower(target.shortName())

	var similar []Type
	for _, t := range available {
		if t.Equal(target) {
			continue
		}

		name := strings.ToLower(t.shortName())
		if name == targetName || strings.Contains(name, targetName) || strings.Contains(targetName, name) {
			similar = append(similar, t)
		}

		if len(similar) >= 5 {
			break
		}
	}

	return similar
}

// TypeMismatchError indicates an activated instance is not assignable to the
// requested service type.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Context  string // "factory result", "constructor result", ...
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, formatReflectType(e.Expected), formatReflectType(e.Actual))
}

// CircularDependencyError indicates a resolution chain that reaches a type
// already being resolved.
type CircularDependencyError struct {
	Path []Type
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	for i, t := range e.Path {
		b.WriteString(fmt.Sprintf("    %s", t))
		if i == len(e.Path)-1 {
			b.WriteString(" (cycle)")
		}
		b.WriteString("\n")
		if i < len(e.Path)-1 {
			b.WriteString("      ↓\n")
		}
	}

	return b.String()
}

// ConstructorInvocationError wraps a failure of an implementation constructor.
type ConstructorInvocationError struct {
	Constructor reflect.Type
	Cause       error
}

func (e ConstructorInvocationError) Error() string {
	return fmt.Sprintf("failed to invoke %s: %v", formatReflectType(e.Constructor), e.Cause)
}

func (e ConstructorInvocationError) Unwrap() error {
	return e.Cause
}

// ModuleError wraps errors from a named module.
type ModuleError struct {
	Module string
	Cause  error
}

func (e ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, e.Cause)
}

func (e ModuleError) Unwrap() error {
	return e.Cause
}

// RegistrarError wraps the error returned by a registrar during aggregation.
type RegistrarError struct {
	Order int
	Index int // position after sorting
	Cause error
}

func (e RegistrarError) Error() string {
	return fmt.Sprintf("registrar #%d (order %d): %v", e.Index, e.Order, e.Cause)
}

func (e RegistrarError) Unwrap() error {
	return e.Cause
}

// DisposalError aggregates disposal errors.
type DisposalError struct {
	Context string // "provider", "scope"
	Errors  []error
}

func (e DisposalError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s disposal failed: %v", e.Context, e.Errors[0])
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s disposal failed with %d errors:", e.Context, len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
	}
	return sb.String()
}

func (e DisposalError) Unwrap() []error {
	return e.Errors
}

// IsNotFound reports whether err is caused by a missing registration.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrServiceNotFound)
}

// IsCircularDependency reports whether err is caused by a resolution cycle.
func IsCircularDependency(err error) bool {
	var cycle CircularDependencyError
	return errors.As(err, &cycle)
}

// formatType formats a Type for error messages.
func formatType(t Type) string {
	if !t.IsValid() {
		return "<nil>"
	}
	return t.String()
}

// formatReflectType formats a reflect.Type for error messages.
func formatReflectType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Func:
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
