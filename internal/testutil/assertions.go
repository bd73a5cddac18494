package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/autoreg"
)

// AssertServiceResolvable checks if a service can be resolved
func AssertServiceResolvable[T any](t *testing.T, r autoreg.Resolver) T {
	t.Helper()
	service, err := autoreg.Resolve[T](r)
	require.NoError(t, err, "failed to resolve service of type %T", *new(T))
	require.NotNil(t, service, "resolved service is nil")
	return service
}

// AssertServiceNotFound checks if a service resolution fails with not found error
func AssertServiceNotFound[T any](t *testing.T, r autoreg.Resolver) {
	t.Helper()
	_, err := autoreg.Resolve[T](r)
	require.Error(t, err)
	assert.True(t, autoreg.IsNotFound(err), "expected service not found error, got: %v", err)
}

// AssertSameInstance checks that two resolutions return the same instance
func AssertSameInstance[T any](t *testing.T, r autoreg.Resolver) T {
	t.Helper()
	first := AssertServiceResolvable[T](t, r)
	second := AssertServiceResolvable[T](t, r)
	assert.Same(t, any(first), any(second), "expected the same instance of %T", first)
	return first
}

// AssertDifferentInstances checks that two resolutions return different instances
func AssertDifferentInstances[T any](t *testing.T, r autoreg.Resolver) {
	t.Helper()
	first := AssertServiceResolvable[T](t, r)
	second := AssertServiceResolvable[T](t, r)
	assert.NotSame(t, any(first), any(second), "expected different instances of %T", first)
}

// AssertInvalidArgument checks that err is an invalid argument error
func AssertInvalidArgument(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, autoreg.ErrInvalidArgument)
	assert.False(t, errors.Is(err, autoreg.ErrUnsupported), "invalid argument error must not be unsupported: %v", err)
}

// AssertUnsupported checks that err is an unsupported error
func AssertUnsupported(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, autoreg.ErrUnsupported)
	assert.False(t, errors.Is(err, autoreg.ErrInvalidArgument), "unsupported error must not be invalid argument: %v", err)
}

// AssertResult checks a registration result
func AssertResult(t *testing.T, result autoreg.RegistrationResult, service, implementation autoreg.Type, lifetime autoreg.Lifetime) {
	t.Helper()
	assert.True(t, result.ServiceType.Equal(service), "service type: expected %s, got %s", service, result.ServiceType)
	assert.True(t, result.ImplementationType.Equal(implementation),
		"implementation type: expected %s, got %s", implementation, result.ImplementationType)
	assert.Equal(t, lifetime, result.Lifetime)
}
