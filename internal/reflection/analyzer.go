// Package reflection analyzes constructor and invocation functions so their
// parameters can be satisfied from a provider.
package reflection

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/dig"
)

var (
	inType  = reflect.TypeFor[dig.In]()
	errType = reflect.TypeFor[error]()
)

// Analyzer performs reflection-based analysis of functions.
// It caches analysis results per function type.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*FunctionInfo
}

// FunctionInfo contains analyzed information about a function.
type FunctionInfo struct {
	Type           reflect.Type
	Dependencies   []Dependency
	Results        []reflect.Type // non-error return types
	HasErrorReturn bool           // last return value is an error
	HasParamObject bool           // at least one parameter embeds dig.In
}

// Dependency represents a single type a function needs.
type Dependency struct {
	// Type of the dependency
	Type reflect.Type

	// Optional indicates the value may be left zero when it is not registered
	Optional bool

	// Index is the parameter position
	Index int

	// FieldName is the field name for parameter objects
	FieldName string
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		cache: make(map[reflect.Type]*FunctionInfo),
	}
}

// Analyze analyzes a function type and extracts its dependencies. Parameter
// objects embedding dig.In are flattened into their exported fields; the same
// type is only reported once.
func (a *Analyzer) Analyze(fnType reflect.Type) (*FunctionInfo, error) {
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected a function, got %v", fnType)
	}

	a.mu.RLock()
	if cached, ok := a.cache[fnType]; ok {
		a.mu.RUnlock()
		return cached, nil
	}
	a.mu.RUnlock()

	info := &FunctionInfo{Type: fnType}
	seen := make(map[reflect.Type]int)

	add := func(dep Dependency) {
		if i, ok := seen[dep.Type]; ok {
			// required wins over optional
			info.Dependencies[i].Optional = info.Dependencies[i].Optional && dep.Optional
			return
		}
		seen[dep.Type] = len(info.Dependencies)
		info.Dependencies = append(info.Dependencies, dep)
	}

	for i := 0; i < fnType.NumIn(); i++ {
		paramType := fnType.In(i)

		if dig.IsIn(paramType) {
			info.HasParamObject = true
			if err := analyzeParamObject(paramType, i, add); err != nil {
				return nil, err
			}
			continue
		}

		add(Dependency{Type: paramType, Index: i})
	}

	for i := 0; i < fnType.NumOut(); i++ {
		out := fnType.Out(i)
		if i == fnType.NumOut()-1 && out == errType {
			info.HasErrorReturn = true
			continue
		}
		info.Results = append(info.Results, out)
	}

	a.mu.Lock()
	a.cache[fnType] = info
	a.mu.Unlock()

	return info, nil
}

// analyzeParamObject walks the exported fields of a dig.In struct.
func analyzeParamObject(structType reflect.Type, index int, add func(Dependency)) error {
	if structType.Kind() != reflect.Struct {
		return fmt.Errorf("parameter object must be a struct, got %v", structType)
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Anonymous && field.Type == inType {
			continue
		}

		if !field.IsExported() {
			continue
		}

		if _, ok := field.Tag.Lookup("name"); ok {
			return fmt.Errorf("field %s.%s: named dependencies are not supported", structType, field.Name)
		}
		if _, ok := field.Tag.Lookup("group"); ok {
			return fmt.Errorf("field %s.%s: grouped dependencies are not supported", structType, field.Name)
		}

		if dig.IsIn(field.Type) {
			if err := analyzeParamObject(field.Type, index, add); err != nil {
				return err
			}
			continue
		}

		add(Dependency{
			Type:      field.Type,
			Optional:  field.Tag.Get("optional") == "true",
			Index:     index,
			FieldName: field.Name,
		})
	}

	return nil
}

// Clear clears the analysis cache.
func (a *Analyzer) Clear() {
	a.mu.Lock()
	a.cache = make(map[reflect.Type]*FunctionInfo)
	a.mu.Unlock()
}

// CacheSize returns the number of cached analyses.
func (a *Analyzer) CacheSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

// ValidateConstructor checks that ctor has the shape func(...) T or
// func(...) (T, error) with T equal to result.
func ValidateConstructor(ctor reflect.Value, result reflect.Type) error {
	if !ctor.IsValid() || ctor.Kind() != reflect.Func {
		return fmt.Errorf("constructor for %v must be a function", result)
	}
	if ctor.IsNil() {
		return fmt.Errorf("constructor for %v cannot be nil", result)
	}

	fnType := ctor.Type()
	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errType {
			return fmt.Errorf("constructor %v: second return value must be error", fnType)
		}
	default:
		return fmt.Errorf("constructor %v must return (T) or (T, error)", fnType)
	}

	if fnType.Out(0) != result {
		return fmt.Errorf("constructor %v returns %v, expected %v", fnType, fnType.Out(0), result)
	}

	return nil
}
