package testutil

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/junioryono/autoreg"
)

var (
	stringType = reflect.TypeFor[string]()
	intType    = reflect.TypeFor[int]()
)

// Generic definitions for the generic fixtures. Only string and int
// instantiations are bound; any other argument fails to bind.
var (
	IGenericServiceDef = autoreg.OpenInterface("IGenericService", []string{"T"},
		autoreg.Instances(
			autoreg.Instance[IGenericService[string]](stringType),
			autoreg.Instance[IGenericService[int]](intType),
		))

	GenericServiceDef = autoreg.OpenGeneric("GenericService", []string{"T"},
		autoreg.Instances(
			autoreg.Instance[*GenericService[string]](stringType),
			autoreg.Instance[*GenericService[int]](intType),
		))

	IPairServiceDef = autoreg.OpenInterface("IPairService", []string{"K", "V"},
		autoreg.Instances(
			autoreg.Instance[IPairService[string, int]](stringType, intType),
		))

	PairServiceDef = autoreg.OpenGeneric("PairService", []string{"K", "V"},
		autoreg.Instances(
			autoreg.Instance[*PairService[string, int]](stringType, intType),
		))
)

// Closed generic fixtures.
var (
	IGenericStringService = IGenericServiceDef.MustClose(stringType)
	IGenericIntService    = IGenericServiceDef.MustClose(intType)
	GenericStringService  = GenericServiceDef.MustClose(stringType)
	GenericIntService     = GenericServiceDef.MustClose(intType)
	IPairStringIntService = IPairServiceDef.MustClose(stringType, intType)
)

// FactoryCall is one recorded factory invocation.
type FactoryCall struct {
	ServiceType        autoreg.Type
	ImplementationType autoreg.Type
}

// FactoryRecorder is an autoreg.Factory that records its calls and builds a
// fresh instance of the implementation type for each.
type FactoryRecorder struct {
	mu    sync.Mutex
	calls []FactoryCall

	// Err, when set, is returned instead of an instance.
	Err error
}

// Factory returns the recording factory.
func (f *FactoryRecorder) Factory() autoreg.Factory {
	return func(_ autoreg.Resolver, serviceType, implementationType autoreg.Type) (any, error) {
		f.mu.Lock()
		f.calls = append(f.calls, FactoryCall{ServiceType: serviceType, ImplementationType: implementationType})
		f.mu.Unlock()

		if f.Err != nil {
			return nil, f.Err
		}
		return New(implementationType)
	}
}

// Calls returns the recorded calls.
func (f *FactoryRecorder) Calls() []FactoryCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FactoryCall(nil), f.calls...)
}

// Count returns the number of recorded calls.
func (f *FactoryRecorder) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// New allocates a fresh instance of a closed pointer type. Service1 values
// get an ID.
func New(t autoreg.Type) (any, error) {
	rt := t.Reflect()
	if rt == nil || rt.Kind() != reflect.Pointer {
		return nil, fmt.Errorf("testutil: cannot allocate %s", t)
	}

	v := reflect.New(rt.Elem()).Interface()
	if s, ok := v.(*Service1); ok {
		s.ID = uuid.NewString()
	}
	return v, nil
}

// NewCatalog returns a catalog with the standard declarations:
//   - *Service1 as IService (Transient) and as itself (Singleton)
//   - GenericService[T] as IGenericService[T] (Scoped, open to open)
//   - AbstractService with a declaration that must never be registered
func NewCatalog() *autoreg.Catalog {
	c := autoreg.NewCatalog()
	c.MustAttach(autoreg.TypeFor[*Service1](),
		autoreg.As[IService](autoreg.Transient),
		autoreg.Self(autoreg.Singleton),
	)
	c.MustAttach(GenericServiceDef.Type(),
		autoreg.Service(IGenericServiceDef.Type(), autoreg.Scoped),
	)
	c.MustAttach(autoreg.TypeFor[AbstractService](),
		autoreg.As[IService](autoreg.Singleton),
	)
	return c
}
