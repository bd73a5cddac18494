package autoreg

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scope is a unit of ownership for Scoped services. In web applications a
// scope is typically created for each request.
//
//	scope, err := provider.CreateScope(r.Context())
//	if err != nil {
//	    return err
//	}
//	defer scope.Close()
//
//	service, err := autoreg.Resolve[*RequestService](scope)
type Scope interface {
	Resolver

	// Close disposes every instance created by this scope, in reverse
	// creation order. It is safe to call multiple times.
	Disposable

	// ID returns the unique ID of this scope.
	ID() string

	// Context returns the context the scope was created with.
	Context() context.Context
}

type scope struct {
	id       string
	provider *provider
	ctx      context.Context
	isRoot   bool

	cache     *instanceCache
	lifecycle lifecycle

	disposed int32
}

func newScope(p *provider, ctx context.Context, isRoot bool) *scope {
	return &scope{
		id:       uuid.NewString(),
		provider: p,
		ctx:      ctx,
		isRoot:   isRoot,
		cache:    newInstanceCache(),
	}
}

func (s *scope) ID() string {
	return s.id
}

func (s *scope) Context() context.Context {
	return s.ctx
}

func (s *scope) GetRequiredService(serviceType Type) (any, error) {
	if err := s.checkDisposed(); err != nil {
		return nil, err
	}
	return s.resolution().GetRequiredService(serviceType)
}

func (s *scope) GetService(serviceType Type) (any, error) {
	if err := s.checkDisposed(); err != nil {
		return nil, err
	}
	return s.resolution().GetService(serviceType)
}

func (s *scope) Contains(serviceType Type) bool {
	if s.checkDisposed() != nil {
		return false
	}
	return s.resolution().Contains(serviceType)
}

func (s *scope) Invoke(function any) error {
	if err := s.checkDisposed(); err != nil {
		return err
	}
	return s.resolution().Invoke(function)
}

func (s *scope) Close() error {
	if s.isRoot {
		return s.provider.Close()
	}

	s.provider.removeScope(s)
	return s.dispose()
}

func (s *scope) resolution() *resolution {
	return &resolution{scope: s}
}

func (s *scope) checkDisposed() error {
	if s.provider.isDisposed() {
		return ErrProviderDisposed
	}
	if atomic.LoadInt32(&s.disposed) != 0 {
		return ErrScopeDisposed
	}
	return nil
}

func (s *scope) getOrCreate(key instanceKey, create func() (any, error)) (any, error) {
	return s.cache.getOrCreate(key, create)
}

func (s *scope) track(instance any) {
	s.lifecycle.track(instance)
}

func (s *scope) dispose() error {
	if !atomic.CompareAndSwapInt32(&s.disposed, 0, 1) {
		return nil
	}

	instances := s.cache.len()
	s.cache.clear()

	s.provider.logger.Debug("scope disposed",
		zap.String("scope", s.id),
		zap.Bool("root", s.isRoot),
		zap.Int("instances", instances),
		zap.Int("disposables", s.lifecycle.count()),
	)

	if errs := s.lifecycle.dispose(s.ctx); len(errs) > 0 {
		s.provider.logger.Warn("scope disposal failed",
			zap.String("scope", s.id),
			zap.Bool("root", s.isRoot),
			zap.Errors("errors", errs),
		)
		return DisposalError{Context: "scope", Errors: errs}
	}

	return nil
}
