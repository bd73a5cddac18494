package autoreg

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/junioryono/autoreg/internal/reflection"
)

// Resolver resolves services. Factories receive the Resolver of the
// resolution that triggered them, so nested lookups take part in cycle
// detection and scope ownership.
type Resolver interface {
	// GetRequiredService resolves serviceType. It fails with a ResolutionError
	// wrapping ErrServiceNotFound when nothing is registered for it.
	GetRequiredService(serviceType Type) (any, error)

	// GetService resolves serviceType, returning nil without error when
	// nothing is registered for it.
	GetService(serviceType Type) (any, error)

	// Contains reports whether serviceType can be resolved.
	Contains(serviceType Type) bool

	// Invoke calls function with its parameters resolved. Parameter objects
	// embedding In are supported. A trailing error result is returned.
	Invoke(function any) error
}

// Provider is a built, immutable container.
type Provider interface {
	Resolver
	Disposable

	// ID returns the unique identifier of this provider.
	ID() string

	// CreateScope creates a scope for Scoped services. The context is
	// resolvable as context.Context inside the scope.
	CreateScope(ctx context.Context) (Scope, error)
}

// ProviderOptions configures a Provider.
type ProviderOptions struct {
	// Logger receives build and disposal events. Defaults to a no-op logger.
	Logger *zap.Logger

	// ValidateScopes rejects, at build time, singletons whose constructors
	// depend on scoped services.
	ValidateScopes bool
}

type provider struct {
	id     string
	logger *zap.Logger

	descriptors []*Descriptor

	// last registration wins
	services map[reflect.Type]*Descriptor
	generics map[*GenericDefinition]*Descriptor

	analyzer *reflection.Analyzer

	root *scope

	scopes   map[*scope]struct{}
	scopesMu sync.Mutex

	disposed int32
}

func newProvider(descriptors []*Descriptor, options *ProviderOptions) *provider {
	if options == nil {
		options = &ProviderOptions{}
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &provider{
		id:          uuid.NewString(),
		logger:      logger,
		descriptors: descriptors,
		services:    make(map[reflect.Type]*Descriptor),
		generics:    make(map[*GenericDefinition]*Descriptor),
		analyzer:    reflection.New(),
		scopes:      make(map[*scope]struct{}),
	}

	for _, d := range descriptors {
		if d.ServiceType.IsOpen() {
			p.generics[d.ServiceType.Definition()] = d
			continue
		}
		p.services[d.ServiceType.Reflect()] = d
	}

	p.root = newScope(p, context.Background(), true)

	p.logger.Debug("provider built",
		zap.String("provider", p.id),
		zap.Int("descriptors", len(descriptors)),
		zap.Int("openGenerics", len(p.generics)),
	)

	return p
}

func (p *provider) ID() string {
	return p.id
}

func (p *provider) GetRequiredService(serviceType Type) (any, error) {
	if p.isDisposed() {
		return nil, ErrProviderDisposed
	}
	return p.root.GetRequiredService(serviceType)
}

func (p *provider) GetService(serviceType Type) (any, error) {
	if p.isDisposed() {
		return nil, ErrProviderDisposed
	}
	return p.root.GetService(serviceType)
}

func (p *provider) Contains(serviceType Type) bool {
	if p.isDisposed() {
		return false
	}
	return p.serves(serviceType)
}

func (p *provider) Invoke(function any) error {
	if p.isDisposed() {
		return ErrProviderDisposed
	}
	return p.root.Invoke(function)
}

func (p *provider) CreateScope(ctx context.Context) (Scope, error) {
	if p.isDisposed() {
		return nil, ErrProviderDisposed
	}

	if ctx == nil {
		ctx = context.Background()
	}

	s := newScope(p, ctx, false)

	p.scopesMu.Lock()
	p.scopes[s] = struct{}{}
	p.scopesMu.Unlock()

	return s, nil
}

// Close closes every open scope, then disposes singletons and root-owned
// instances in reverse creation order.
func (p *provider) Close() error {
	if !atomic.CompareAndSwapInt32(&p.disposed, 0, 1) {
		return nil
	}

	p.scopesMu.Lock()
	scopes := make([]*scope, 0, len(p.scopes))
	for s := range p.scopes {
		scopes = append(scopes, s)
	}
	p.scopesMu.Unlock()

	var errs []error
	for _, s := range scopes {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := p.root.dispose(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		p.logger.Warn("provider disposal failed", zap.String("provider", p.id), zap.Errors("errors", errs))
		return DisposalError{Context: "provider", Errors: errs}
	}

	return nil
}

func (p *provider) isDisposed() bool {
	return atomic.LoadInt32(&p.disposed) != 0
}

func (p *provider) removeScope(s *scope) {
	p.scopesMu.Lock()
	delete(p.scopes, s)
	p.scopesMu.Unlock()
}

// lookup finds the descriptor serving serviceType and the implementation type
// to activate. An exact closed registration wins over an open generic one.
// When the open implementation has no instantiation for the requested
// arguments the descriptor is still returned, together with the bind error.
func (p *provider) lookup(serviceType Type) (*Descriptor, Type, bool, error) {
	if serviceType.IsOpen() {
		d, ok := p.generics[serviceType.Definition()]
		if !ok {
			return nil, Type{}, false, nil
		}
		return d, d.ImplementationType, true, nil
	}

	if d, ok := p.services[serviceType.Reflect()]; ok {
		return d, d.ImplementationType, true, nil
	}

	closed := serviceType
	if !closed.IsGeneric() {
		var ok bool
		if closed, ok = lookupClosedGeneric(serviceType.Reflect()); !ok {
			return nil, Type{}, false, nil
		}
	}

	d, ok := p.generics[closed.Definition()]
	if !ok {
		return nil, Type{}, false, nil
	}

	impl, err := d.ImplementationType.MakeGeneric(closed.GenericArguments()...)
	if err != nil {
		return d, Type{}, true, err
	}

	return d, impl, true, nil
}

// serves reports whether serviceType is registered and, for open generic
// registrations, whether the implementation can be bound to its arguments.
func (p *provider) serves(serviceType Type) bool {
	_, _, ok, err := p.lookup(serviceType)
	return ok && err == nil
}

// available lists registered service types for error suggestions.
func (p *provider) available() []Type {
	types := make([]Type, 0, len(p.descriptors))
	for _, d := range p.descriptors {
		types = append(types, d.ServiceType)
	}
	return types
}
