package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/junioryono/autoreg"
)

// Common test errors
var (
	ErrTest        = errors.New("test error")
	ErrConstructor = errors.New("constructor error")
	ErrDisposal    = errors.New("disposal error")
)

// IService is a non-generic service interface.
type IService interface {
	Name() string
}

// Service1 implements IService.
type Service1 struct {
	ID string
}

func (s *Service1) Name() string { return "Service1" }

// NewService1 creates a Service1 with a fresh ID.
func NewService1() *Service1 {
	return &Service1{ID: uuid.NewString()}
}

// Service2 implements IService.
type Service2 struct {
	ID string
}

func (s *Service2) Name() string { return "Service2" }

// AbstractService is an interface that also appears in scan candidate sets.
type AbstractService interface {
	IService
	Abstract()
}

// IGenericService is a generic service interface.
type IGenericService[T any] interface {
	Value() T
}

// GenericService implements IGenericService.
type GenericService[T any] struct {
	value T
}

func (s *GenericService[T]) Value() T { return s.value }

// IPairService is a generic service interface with two parameters.
type IPairService[K comparable, V any] interface {
	Pair() (K, V)
}

// PairService implements IPairService.
type PairService[K comparable, V any] struct {
	key   K
	value V
}

func (s *PairService[K, V]) Pair() (K, V) { return s.key, s.value }

// TestLogger is a test logger interface
type TestLogger interface {
	Log(msg string)
	Logs() []string
}

// TestLoggerImpl implements TestLogger
type TestLoggerImpl struct {
	mu   sync.Mutex
	logs []string
}

func NewTestLogger() TestLogger {
	return &TestLoggerImpl{}
}

func (l *TestLoggerImpl) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, msg)
}

func (l *TestLoggerImpl) Logs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.logs...)
}

// TestCache is a test cache interface
type TestCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// TestCacheImpl implements TestCache
type TestCacheImpl struct {
	mu   sync.Mutex
	data map[string]any
}

func NewTestCache() TestCache {
	return &TestCacheImpl{data: make(map[string]any)}
}

func (c *TestCacheImpl) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *TestCacheImpl) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// ServiceWithLogger depends on TestLogger through its constructor.
type ServiceWithLogger struct {
	ID     string
	Logger TestLogger
}

func NewServiceWithLogger(logger TestLogger) *ServiceWithLogger {
	logger.Log("ServiceWithLogger created")
	return &ServiceWithLogger{ID: uuid.NewString(), Logger: logger}
}

// ServiceParams is a parameter object with an optional field.
type ServiceParams struct {
	autoreg.In

	Logger TestLogger
	Cache  TestCache `optional:"true"`
}

// ServiceWithParams is built from ServiceParams.
type ServiceWithParams struct {
	Logger TestLogger
	Cache  TestCache
}

func NewServiceWithParams(params ServiceParams) *ServiceWithParams {
	return &ServiceWithParams{Logger: params.Logger, Cache: params.Cache}
}

// ContextAware captures the context of the scope that built it.
type ContextAware struct {
	Ctx context.Context
}

func NewContextAware(ctx context.Context) *ContextAware {
	return &ContextAware{Ctx: ctx}
}

// FailingService has a constructor that always fails.
type FailingService struct{}

func NewFailingService() (*FailingService, error) {
	return nil, ErrConstructor
}

// CircularA and CircularB depend on each other.
type CircularA struct{ B *CircularB }

type CircularB struct{ A *CircularA }

func NewCircularA(b *CircularB) *CircularA { return &CircularA{B: b} }

func NewCircularB(a *CircularA) *CircularB { return &CircularB{A: a} }

// DisposeRecorder collects the names of closed services in close order.
type DisposeRecorder struct {
	mu     sync.Mutex
	closed []string
}

func (r *DisposeRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, name)
}

// Closed returns the names recorded so far.
func (r *DisposeRecorder) Closed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.closed...)
}

// DisposableService records its Close call.
type DisposableService struct {
	Name     string
	Recorder *DisposeRecorder
	Err      error
	closed   bool
}

func (d *DisposableService) Close() error {
	d.closed = true
	if d.Recorder != nil {
		d.Recorder.record(d.Name)
	}
	return d.Err
}

// IsClosed reports whether Close was called.
func (d *DisposableService) IsClosed() bool {
	return d.closed
}

// ContextDisposableService records the context it was closed with.
type ContextDisposableService struct {
	ClosedWith context.Context
}

func (d *ContextDisposableService) Close(ctx context.Context) error {
	d.ClosedWith = ctx
	return nil
}
