package autoreg

// Register records one declaration of implementationType into services and
// returns what was registered.
//
// The service type is the declaration's service type, or implementationType
// itself when the declaration has none. When implementationType is open
// generic:
//   - and the service type is open too, the open mapping is recorded as is;
//     a factory is rejected with ErrOpenGenericFactory because it cannot be
//     bound to type arguments that are not known yet;
//   - and the service type is closed, the implementation is closed with the
//     service type's arguments, by position.
//
// With a factory, the recorded entry calls factory(resolver, serviceType,
// implementation) for every instance the lifetime asks for; otherwise the
// implementation is default-constructed.
func Register(services Collection, declaration ServiceDeclaration, implementationType Type, factory Factory) (RegistrationResult, error) {
	serviceType := declaration.ServiceType()

	if !implementationType.IsValid() {
		return RegistrationResult{}, RegistrationError{ServiceType: serviceType, Operation: "register", Cause: ErrImplementationTypeNil}
	}

	if !serviceType.IsValid() {
		serviceType = implementationType
	}

	fail := func(op string, err error) (RegistrationResult, error) {
		return RegistrationResult{}, RegistrationError{
			ServiceType:        serviceType,
			ImplementationType: implementationType,
			Operation:          op,
			Cause:              err,
		}
	}

	if services == nil {
		return fail("register", ErrCollectionNil)
	}

	if !declaration.Lifetime().IsValid() {
		return fail("register", LifetimeError{Value: int(declaration.Lifetime())})
	}

	switch {
	case implementationType.IsOpen() && serviceType.IsOpen():
		if factory != nil {
			return fail("register", ErrOpenGenericFactory)
		}
		if serviceType.Arity() != implementationType.Arity() {
			return fail("register", ArityMismatchError{
				Definition: implementationType.String(),
				Expected:   implementationType.Arity(),
				Actual:     serviceType.Arity(),
			})
		}

	case serviceType.IsOpen():
		return fail("register", ErrOpenServiceClosedImpl)

	case implementationType.IsOpen():
		args := serviceType.GenericArguments()
		if len(args) != implementationType.Arity() {
			return fail("bind", ArityMismatchError{
				Definition: implementationType.String(),
				Expected:   implementationType.Arity(),
				Actual:     len(args),
			})
		}

		closed, err := implementationType.MakeGeneric(args...)
		if err != nil {
			return fail("bind", err)
		}
		implementationType = closed
	}

	descriptor := &Descriptor{
		ServiceType: serviceType,
		Lifetime:    declaration.Lifetime(),
	}

	if factory != nil {
		impl := implementationType
		descriptor.Factory = func(r Resolver) (any, error) {
			return factory(r, serviceType, impl)
		}
	} else {
		descriptor.ImplementationType = implementationType
	}

	if err := services.Add(descriptor); err != nil {
		return fail("add", err)
	}

	return RegistrationResult{
		ServiceType:        serviceType,
		ImplementationType: implementationType,
		Lifetime:           declaration.Lifetime(),
	}, nil
}
