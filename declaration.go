package autoreg

// ServiceDeclaration is one requested registration attached to an
// implementation type: the service type to register it as and the lifetime.
// An invalid (zero) service type means the implementation registers as itself.
//
// ServiceDeclaration is immutable; build it with Service, As or Self.
type ServiceDeclaration struct {
	serviceType Type
	lifetime    Lifetime
}

// Service declares a registration under serviceType.
//
//	autoreg.Service(GenericServiceDef.Type(), autoreg.Transient)
func Service(serviceType Type, lifetime Lifetime) ServiceDeclaration {
	return ServiceDeclaration{serviceType: serviceType, lifetime: lifetime}
}

// As declares a registration under T.
//
//	autoreg.As[Logger](autoreg.Singleton)
func As[T any](lifetime Lifetime) ServiceDeclaration {
	return Service(TypeFor[T](), lifetime)
}

// Self declares a registration under the implementation type itself.
func Self(lifetime Lifetime) ServiceDeclaration {
	return ServiceDeclaration{lifetime: lifetime}
}

// ServiceType returns the requested service type. It is invalid for Self
// declarations.
func (d ServiceDeclaration) ServiceType() Type {
	return d.serviceType
}

// Lifetime returns the requested lifetime.
func (d ServiceDeclaration) Lifetime() Lifetime {
	return d.lifetime
}

func (d ServiceDeclaration) String() string {
	if !d.serviceType.IsValid() {
		return "Self(" + d.lifetime.String() + ")"
	}
	return d.serviceType.String() + "(" + d.lifetime.String() + ")"
}

// RegistrationResult records what a declaration was registered as.
type RegistrationResult struct {
	ServiceType        Type
	ImplementationType Type
	Lifetime           Lifetime
}

// Factory instantiates an implementation in place of default construction.
// It receives the resolver of the current resolution, the service type being
// resolved and the final (closed) implementation type.
type Factory func(r Resolver, serviceType, implementationType Type) (any, error)
