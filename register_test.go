package autoreg_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/autoreg"
	"github.com/junioryono/autoreg/internal/testutil"
)

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name           string
		services       autoreg.Collection
		declaration    autoreg.ServiceDeclaration
		implementation autoreg.Type
		factory        autoreg.Factory
		assertErr      func(t *testing.T, err error)
	}{
		{
			name:           "nil implementation type",
			services:       autoreg.NewCollection(),
			declaration:    autoreg.As[testutil.IService](autoreg.Singleton),
			implementation: autoreg.Type{},
			assertErr: func(t *testing.T, err error) {
				testutil.AssertInvalidArgument(t, err)
				assert.ErrorIs(t, err, autoreg.ErrImplementationTypeNil)
			},
		},
		{
			name:           "nil collection",
			services:       nil,
			declaration:    autoreg.Self(autoreg.Singleton),
			implementation: autoreg.TypeFor[*testutil.Service1](),
			assertErr: func(t *testing.T, err error) {
				testutil.AssertInvalidArgument(t, err)
				assert.ErrorIs(t, err, autoreg.ErrCollectionNil)
			},
		},
		{
			name:           "invalid lifetime",
			services:       autoreg.NewCollection(),
			declaration:    autoreg.Self(autoreg.Lifetime(42)),
			implementation: autoreg.TypeFor[*testutil.Service1](),
			assertErr: func(t *testing.T, err error) {
				testutil.AssertInvalidArgument(t, err)
				var lifetimeErr autoreg.LifetimeError
				assert.ErrorAs(t, err, &lifetimeErr)
			},
		},
		{
			name:           "open generic to open generic with factory",
			services:       autoreg.NewCollection(),
			declaration:    autoreg.Service(testutil.IGenericServiceDef.Type(), autoreg.Singleton),
			implementation: testutil.GenericServiceDef.Type(),
			factory:        new(testutil.FactoryRecorder).Factory(),
			assertErr: func(t *testing.T, err error) {
				testutil.AssertUnsupported(t, err)
				assert.ErrorIs(t, err, autoreg.ErrOpenGenericFactory)
				assert.Contains(t, err.Error(), "cannot provide an instantiation function for open generic types")
			},
		},
		{
			name:           "open implementation against non-generic service",
			services:       autoreg.NewCollection(),
			declaration:    autoreg.As[testutil.IService](autoreg.Transient),
			implementation: testutil.GenericServiceDef.Type(),
			assertErr: func(t *testing.T, err error) {
				testutil.AssertInvalidArgument(t, err)
				var arityErr autoreg.ArityMismatchError
				require.ErrorAs(t, err, &arityErr)
				assert.Equal(t, 1, arityErr.Expected)
				assert.Equal(t, 0, arityErr.Actual)
			},
		},
		{
			name:           "open generic arity mismatch",
			services:       autoreg.NewCollection(),
			declaration:    autoreg.Service(testutil.IPairServiceDef.Type(), autoreg.Scoped),
			implementation: testutil.GenericServiceDef.Type(),
			assertErr: func(t *testing.T, err error) {
				testutil.AssertInvalidArgument(t, err)
				var arityErr autoreg.ArityMismatchError
				require.ErrorAs(t, err, &arityErr)
				assert.Equal(t, 1, arityErr.Expected)
				assert.Equal(t, 2, arityErr.Actual)
			},
		},
		{
			name:           "closed generic service with mismatched arity",
			services:       autoreg.NewCollection(),
			declaration:    autoreg.Service(testutil.IPairStringIntService, autoreg.Scoped),
			implementation: testutil.GenericServiceDef.Type(),
			assertErr: func(t *testing.T, err error) {
				testutil.AssertInvalidArgument(t, err)
				var arityErr autoreg.ArityMismatchError
				assert.ErrorAs(t, err, &arityErr)
			},
		},
		{
			name:           "open service with closed implementation",
			services:       autoreg.NewCollection(),
			declaration:    autoreg.Service(testutil.IGenericServiceDef.Type(), autoreg.Singleton),
			implementation: testutil.GenericStringService,
			assertErr: func(t *testing.T, err error) {
				testutil.AssertInvalidArgument(t, err)
				assert.ErrorIs(t, err, autoreg.ErrOpenServiceClosedImpl)
			},
		},
		{
			name:           "implementation not assignable to service",
			services:       autoreg.NewCollection(),
			declaration:    autoreg.As[testutil.TestLogger](autoreg.Singleton),
			implementation: autoreg.TypeFor[*testutil.Service1](),
			assertErr: func(t *testing.T, err error) {
				require.Error(t, err)
				var regErr autoreg.RegistrationError
				require.ErrorAs(t, err, &regErr)
				assert.Equal(t, "add", regErr.Operation)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := autoreg.Register(tt.services, tt.declaration, tt.implementation, tt.factory)
			tt.assertErr(t, err)
			assert.Equal(t, autoreg.RegistrationResult{}, result)

			if tt.services != nil {
				assert.Equal(t, 0, tt.services.Count(), "failed registration must not add entries")
			}
		})
	}
}

func TestRegister_SelfRegistration(t *testing.T) {
	t.Parallel()

	services := autoreg.NewCollection()
	impl := autoreg.TypeFor[*testutil.Service1]()

	result, err := autoreg.Register(services, autoreg.Self(autoreg.Transient), impl, nil)
	require.NoError(t, err)
	testutil.AssertResult(t, result, impl, impl, autoreg.Transient)

	provider, err := services.Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })

	service := testutil.AssertServiceResolvable[*testutil.Service1](t, provider)
	assert.IsType(t, &testutil.Service1{}, service)

	// No interface entry is created implicitly.
	testutil.AssertServiceNotFound[testutil.IService](t, provider)
}

func TestRegister_InterfaceRegistration(t *testing.T) {
	t.Parallel()

	services := autoreg.NewCollection()
	impl := autoreg.TypeFor[*testutil.Service1]()

	result, err := autoreg.Register(services, autoreg.As[testutil.IService](autoreg.Singleton), impl, nil)
	require.NoError(t, err)
	testutil.AssertResult(t, result, autoreg.TypeFor[testutil.IService](), impl, autoreg.Singleton)

	provider, err := services.Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })

	service := testutil.AssertSameInstance[testutil.IService](t, provider)
	assert.IsType(t, &testutil.Service1{}, service)
	testutil.AssertServiceNotFound[*testutil.Service1](t, provider)
}

func TestRegister_LifetimeRoundTrip(t *testing.T) {
	lifetimes := []autoreg.Lifetime{autoreg.Singleton, autoreg.Scoped, autoreg.Transient}

	declarations := map[string]func(autoreg.Lifetime) autoreg.ServiceDeclaration{
		"self":      autoreg.Self,
		"interface": autoreg.As[testutil.IService],
	}

	for name, declare := range declarations {
		for _, lifetime := range lifetimes {
			t.Run(name+"/"+lifetime.String(), func(t *testing.T) {
				t.Parallel()

				withoutFactory, err := autoreg.Register(autoreg.NewCollection(), declare(lifetime),
					autoreg.TypeFor[*testutil.Service1](), nil)
				require.NoError(t, err)
				assert.Equal(t, lifetime, withoutFactory.Lifetime)

				withFactory, err := autoreg.Register(autoreg.NewCollection(), declare(lifetime),
					autoreg.TypeFor[*testutil.Service1](), new(testutil.FactoryRecorder).Factory())
				require.NoError(t, err)
				assert.Equal(t, lifetime, withFactory.Lifetime)
			})
		}
	}

	t.Run("open generic", func(t *testing.T) {
		for _, lifetime := range lifetimes {
			result, err := autoreg.Register(autoreg.NewCollection(),
				autoreg.Service(testutil.IGenericServiceDef.Type(), lifetime),
				testutil.GenericServiceDef.Type(), nil)
			require.NoError(t, err)
			assert.Equal(t, lifetime, result.Lifetime)
		}
	})

	t.Run("entry carries the lifetime", func(t *testing.T) {
		for _, lifetime := range lifetimes {
			services := autoreg.NewCollection()
			_, err := autoreg.Register(services, autoreg.Self(lifetime), autoreg.TypeFor[*testutil.Service1](), nil)
			require.NoError(t, err)

			entries := services.ToSlice()
			require.Len(t, entries, 1)
			assert.Equal(t, lifetime, entries[0].Lifetime)
		}
	})
}

func TestRegister_OpenGenericToOpenGeneric(t *testing.T) {
	t.Parallel()

	services := autoreg.NewCollection()
	result, err := autoreg.Register(services,
		autoreg.Service(testutil.IGenericServiceDef.Type(), autoreg.Transient),
		testutil.GenericServiceDef.Type(), nil)
	require.NoError(t, err)
	testutil.AssertResult(t, result, testutil.IGenericServiceDef.Type(), testutil.GenericServiceDef.Type(), autoreg.Transient)

	entries := services.ToSlice()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsOpenGeneric())

	provider, err := services.Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })

	t.Run("resolves any bound instantiation", func(t *testing.T) {
		str := testutil.AssertServiceResolvable[testutil.IGenericService[string]](t, provider)
		assert.IsType(t, &testutil.GenericService[string]{}, str)

		num := testutil.AssertServiceResolvable[testutil.IGenericService[int]](t, provider)
		assert.IsType(t, &testutil.GenericService[int]{}, num)
	})

	t.Run("resolves through Type values", func(t *testing.T) {
		instance, err := provider.GetRequiredService(testutil.IGenericStringService)
		require.NoError(t, err)
		assert.IsType(t, &testutil.GenericService[string]{}, instance)
	})

	t.Run("unbound instantiation is not found", func(t *testing.T) {
		testutil.AssertServiceNotFound[testutil.IGenericService[float64]](t, provider)
	})

	t.Run("open type cannot be resolved", func(t *testing.T) {
		_, err := provider.GetRequiredService(testutil.IGenericServiceDef.Type())
		testutil.AssertInvalidArgument(t, err)
	})
}

func TestRegister_OpenImplementationClosedService(t *testing.T) {
	t.Parallel()

	services := autoreg.NewCollection()

	stringResult, err := autoreg.Register(services,
		autoreg.Service(testutil.IGenericStringService, autoreg.Singleton),
		testutil.GenericServiceDef.Type(), nil)
	require.NoError(t, err)
	testutil.AssertResult(t, stringResult, testutil.IGenericStringService, testutil.GenericStringService, autoreg.Singleton)
	assert.False(t, stringResult.ImplementationType.IsOpen())
	assert.Equal(t, []reflect.Type{reflect.TypeFor[string]()}, stringResult.ImplementationType.GenericArguments())

	intResult, err := autoreg.Register(services,
		autoreg.Service(testutil.IGenericIntService, autoreg.Transient),
		testutil.GenericServiceDef.Type(), nil)
	require.NoError(t, err)
	testutil.AssertResult(t, intResult, testutil.IGenericIntService, testutil.GenericIntService, autoreg.Transient)

	// Two independent entries.
	assert.Equal(t, 2, services.Count())

	provider, err := services.Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })

	str := testutil.AssertSameInstance[testutil.IGenericService[string]](t, provider)
	assert.IsType(t, &testutil.GenericService[string]{}, str)

	testutil.AssertDifferentInstances[testutil.IGenericService[int]](t, provider)
}

func TestRegister_Factory(t *testing.T) {
	t.Run("receives service and implementation types", func(t *testing.T) {
		t.Parallel()

		recorder := &testutil.FactoryRecorder{}
		services := autoreg.NewCollection()

		_, err := autoreg.Register(services, autoreg.As[testutil.IService](autoreg.Transient),
			autoreg.TypeFor[*testutil.Service1](), recorder.Factory())
		require.NoError(t, err)

		entries := services.ToSlice()
		require.Len(t, entries, 1)
		assert.NotNil(t, entries[0].Factory)
		assert.False(t, entries[0].ImplementationType.IsValid())

		provider, err := services.Build()
		require.NoError(t, err)
		t.Cleanup(func() { _ = provider.Close() })

		testutil.AssertServiceResolvable[testutil.IService](t, provider)

		calls := recorder.Calls()
		require.Len(t, calls, 1)
		assert.True(t, calls[0].ServiceType.Equal(autoreg.TypeFor[testutil.IService]()))
		assert.True(t, calls[0].ImplementationType.Equal(autoreg.TypeFor[*testutil.Service1]()))
	})

	t.Run("receives the closed implementation", func(t *testing.T) {
		t.Parallel()

		recorder := &testutil.FactoryRecorder{}
		services := autoreg.NewCollection()

		_, err := autoreg.Register(services, autoreg.Service(testutil.IGenericStringService, autoreg.Transient),
			testutil.GenericServiceDef.Type(), recorder.Factory())
		require.NoError(t, err)

		provider, err := services.Build()
		require.NoError(t, err)
		t.Cleanup(func() { _ = provider.Close() })

		instance := testutil.AssertServiceResolvable[testutil.IGenericService[string]](t, provider)
		assert.IsType(t, &testutil.GenericService[string]{}, instance)

		calls := recorder.Calls()
		require.Len(t, calls, 1)
		assert.True(t, calls[0].ImplementationType.Equal(testutil.GenericStringService))
		assert.False(t, calls[0].ImplementationType.IsOpen())
	})

	t.Run("invocation count follows lifetime", func(t *testing.T) {
		tests := []struct {
			lifetime autoreg.Lifetime
			expected int
		}{
			// two resolutions from the root, two from each of two scopes
			{autoreg.Singleton, 1},
			{autoreg.Scoped, 3},
			{autoreg.Transient, 6},
		}

		for _, tt := range tests {
			t.Run(tt.lifetime.String(), func(t *testing.T) {
				t.Parallel()

				recorder := &testutil.FactoryRecorder{}
				services := autoreg.NewCollection()

				_, err := autoreg.Register(services, autoreg.As[testutil.IService](tt.lifetime),
					autoreg.TypeFor[*testutil.Service1](), recorder.Factory())
				require.NoError(t, err)

				provider, err := services.Build()
				require.NoError(t, err)
				t.Cleanup(func() { _ = provider.Close() })

				resolveTwice := func(r autoreg.Resolver) {
					for range 2 {
						testutil.AssertServiceResolvable[testutil.IService](t, r)
					}
				}

				resolveTwice(provider)
				for range 2 {
					scope, err := provider.CreateScope(context.Background())
					require.NoError(t, err)
					resolveTwice(scope)
					require.NoError(t, scope.Close())
				}

				assert.Equal(t, tt.expected, recorder.Count())
			})
		}
	})

	t.Run("factory error is surfaced", func(t *testing.T) {
		t.Parallel()

		recorder := &testutil.FactoryRecorder{Err: testutil.ErrTest}
		services := autoreg.NewCollection()

		_, err := autoreg.Register(services, autoreg.Self(autoreg.Singleton),
			autoreg.TypeFor[*testutil.Service1](), recorder.Factory())
		require.NoError(t, err)

		provider, err := services.Build()
		require.NoError(t, err)
		t.Cleanup(func() { _ = provider.Close() })

		_, err = autoreg.Resolve[*testutil.Service1](provider)
		assert.ErrorIs(t, err, testutil.ErrTest)
	})

	t.Run("factory result must be assignable", func(t *testing.T) {
		t.Parallel()

		services := autoreg.NewCollection()
		factory := func(autoreg.Resolver, autoreg.Type, autoreg.Type) (any, error) {
			return "not a service", nil
		}

		_, err := autoreg.Register(services, autoreg.As[testutil.IService](autoreg.Transient),
			autoreg.TypeFor[*testutil.Service1](), factory)
		require.NoError(t, err)

		provider, err := services.Build()
		require.NoError(t, err)
		t.Cleanup(func() { _ = provider.Close() })

		_, err = autoreg.Resolve[testutil.IService](provider)
		var mismatch autoreg.TypeMismatchError
		assert.ErrorAs(t, err, &mismatch)
	})

	t.Run("factory resolves dependencies", func(t *testing.T) {
		t.Parallel()

		services := autoreg.NewCollection()
		require.NoError(t, services.AddSingleton(autoreg.TypeFor[testutil.TestLogger](), autoreg.TypeFor[*testutil.TestLoggerImpl]()))

		factory := func(r autoreg.Resolver, _ autoreg.Type, _ autoreg.Type) (any, error) {
			logger, err := autoreg.Resolve[testutil.TestLogger](r)
			if err != nil {
				return nil, err
			}
			return testutil.NewServiceWithLogger(logger), nil
		}

		_, err := autoreg.Register(services, autoreg.Self(autoreg.Transient),
			autoreg.TypeFor[*testutil.ServiceWithLogger](), factory)
		require.NoError(t, err)

		provider, err := services.Build()
		require.NoError(t, err)
		t.Cleanup(func() { _ = provider.Close() })

		service := testutil.AssertServiceResolvable[*testutil.ServiceWithLogger](t, provider)
		logger := testutil.AssertServiceResolvable[testutil.TestLogger](t, provider)
		assert.Same(t, logger, service.Logger)
		assert.Equal(t, []string{"ServiceWithLogger created"}, logger.Logs())
	})
}

type tableService[T any] interface {
	Value() T
}

type tableImpl[T any] struct{ value T }

func (s *tableImpl[T]) Value() T { return s.value }

type stringOnlyImpl[T any] struct{ value T }

func (s *stringOnlyImpl[T]) Value() T { return s.value }

// These definitions are never closed by hand: their instance tables are the
// only source of generic identity.
var (
	tableServiceDef = autoreg.OpenInterface("tableService", []string{"T"}, autoreg.Instances(
		autoreg.Instance[tableService[string]](reflect.TypeFor[string]()),
		autoreg.Instance[tableService[int]](reflect.TypeFor[int]()),
	))
	tableImplDef = autoreg.OpenGeneric("tableImpl", []string{"T"}, autoreg.Instances(
		autoreg.Instance[*tableImpl[string]](reflect.TypeFor[string]()),
		autoreg.Instance[*tableImpl[int]](reflect.TypeFor[int]()),
	))
	stringOnlyImplDef = autoreg.OpenGeneric("stringOnlyImpl", []string{"T"}, autoreg.Instances(
		autoreg.Instance[*stringOnlyImpl[string]](reflect.TypeFor[string]()),
	))
)

func TestRegister_InstanceTables(t *testing.T) {
	t.Run("closed types keep their definition", func(t *testing.T) {
		t.Parallel()

		closed := autoreg.TypeFor[tableService[string]]()
		assert.True(t, closed.IsGeneric())
		assert.False(t, closed.IsOpen())
		assert.Same(t, tableServiceDef, closed.Definition())
		assert.Equal(t, []reflect.Type{reflect.TypeFor[string]()}, closed.GenericArguments())

		impl := autoreg.TypeFor[*tableImpl[int]]()
		assert.Same(t, tableImplDef, impl.Definition())
	})

	t.Run("open registration serves later closed types", func(t *testing.T) {
		t.Parallel()

		provider := testutil.NewCollectionBuilder(t).
			WithDeclaration(autoreg.Service(tableServiceDef.Type(), autoreg.Transient), tableImplDef.Type(), nil).
			BuildProvider()

		str := testutil.AssertServiceResolvable[tableService[string]](t, provider)
		assert.IsType(t, &tableImpl[string]{}, str)

		num := testutil.AssertServiceResolvable[tableService[int]](t, provider)
		assert.IsType(t, &tableImpl[int]{}, num)
	})

	t.Run("closed service binds the open implementation", func(t *testing.T) {
		t.Parallel()

		services := autoreg.NewCollection()
		result, err := autoreg.Register(services,
			autoreg.As[tableService[string]](autoreg.Singleton),
			tableImplDef.Type(), nil)
		require.NoError(t, err)
		testutil.AssertResult(t, result,
			autoreg.TypeFor[tableService[string]](), autoreg.TypeFor[*tableImpl[string]](), autoreg.Singleton)

		provider, err := services.Build()
		require.NoError(t, err)
		t.Cleanup(func() { _ = provider.Close() })

		testutil.AssertSameInstance[tableService[string]](t, provider)
	})

	t.Run("missing implementation instantiation is not served", func(t *testing.T) {
		t.Parallel()

		provider := testutil.NewCollectionBuilder(t).
			WithDeclaration(autoreg.Service(tableServiceDef.Type(), autoreg.Scoped), stringOnlyImplDef.Type(), nil).
			BuildProvider()

		intService := autoreg.TypeFor[tableService[int]]()
		assert.True(t, provider.Contains(autoreg.TypeFor[tableService[string]]()))
		assert.False(t, provider.Contains(intService))

		instance, err := provider.GetService(intService)
		assert.NoError(t, err)
		assert.Nil(t, instance)

		_, err = provider.GetRequiredService(intService)
		assert.ErrorIs(t, err, autoreg.ErrNoInstantiation)
	})
}
