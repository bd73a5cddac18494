// Package autoreg registers services into a dependency injection container
// from declarations attached to their implementation types.
//
// # Overview
//
// Each implementation type is paired once with one or more service
// declarations: the service type it should be resolvable as and the lifetime
// of the registration. A scanner walks a set of candidate types and records
// one container entry per declaration. Registrars group registrations and run
// in priority order against one shared collection, which is then built into a
// Provider.
//
//	func init() {
//	    autoreg.Declare[*SmtpMailer](
//	        autoreg.As[Mailer](autoreg.Singleton),
//	        autoreg.Self(autoreg.Transient),
//	    )
//	}
//
//	provider, err := autoreg.Build(
//	    autoreg.NewModule("mail", 10, autoreg.Scan(autoreg.TypeFor[*SmtpMailer]())),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	mailer, err := autoreg.Resolve[Mailer](provider)
//
// # Service Lifetimes
//
//   - Singleton: one instance per Provider
//   - Scoped: one instance per Scope; the Provider itself acts as the root scope
//   - Transient: a new instance for every resolution
//
// # Registration Rules
//
// Register computes the entry for one declaration:
//
//   - A declaration without a service type (Self) registers the implementation
//     under its own type. No interface entry is created implicitly.
//   - An open generic implementation declared against an open generic service
//     is recorded as an open mapping, resolvable for any instantiation the
//     definitions can bind. Supplying a factory for it fails with an error
//     matching ErrUnsupported.
//   - An open generic implementation declared against a closed generic service
//     is closed with the service's type arguments, by position.
//   - With a Factory, the entry calls the factory with the resolver of the
//     current resolution, the service type and the final implementation type.
//
// Argument errors match ErrInvalidArgument through errors.Is.
//
// # Generic Types
//
// Go cannot instantiate generic types at run time, so open generic shapes are
// described by a GenericDefinition: a parameter list plus a Binder producing
// closed types. Instances builds a Binder from a fixed table:
//
//	var RepositoryDef = autoreg.OpenGeneric("Repository", []string{"T"},
//	    autoreg.Instances(
//	        autoreg.Instance[*Repository[User]](reflect.TypeFor[User]()),
//	        autoreg.Instance[*Repository[Order]](reflect.TypeFor[Order]()),
//	    ))
//
// Once bound, a closed generic is recognised from its plain Go type, so
// Resolve[IRepository[User]] finds an open registration.
//
// # Construction
//
// Implementations are allocated as zero values (a fresh pointee for pointer
// types) unless their Type carries a constructor:
//
//	autoreg.TypeFor[*Mailer]().WithConstructor(NewMailer)
//
// Constructor parameters, including parameter objects embedding In, are
// resolved from the provider. Instances implementing Disposable are closed
// when their owning scope closes, in reverse creation order.
//
// # Process-wide Container
//
// Bootstrap holds a write-once Provider: the first successful Register wins
// and later calls are no-ops. RegisterDefault, DefaultProvider and Get work
// on a process default Bootstrap.
package autoreg
