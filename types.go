package autoreg

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Type describes the shape of a service or implementation type.
//
// A Type is one of:
//   - a closed type, built with TypeOf or TypeFor;
//   - an open generic type, obtained from GenericDefinition.Type;
//   - a closed generic type, obtained from GenericDefinition.Close or
//     Type.MakeGeneric, which remembers the definition and arguments it was bound from.
//
// The zero Type is invalid and stands for "no type".
type Type struct {
	rtype reflect.Type
	def   *GenericDefinition
	args  []reflect.Type
	ctor  reflect.Value
}

// typeKey is the comparable identity of a Type.
type typeKey struct {
	rtype reflect.Type
	def   *GenericDefinition
}

// TypeOf returns the Type for rt. Closed generic instantiations that were bound
// through a GenericDefinition are recognised and keep their generic identity.
func TypeOf(rt reflect.Type) Type {
	if rt == nil {
		return Type{}
	}
	if closed, ok := lookupClosedGeneric(rt); ok {
		return closed
	}
	return Type{rtype: rt}
}

// TypeFor returns the Type for T.
//
//	autoreg.TypeFor[Logger]()
//	autoreg.TypeFor[*ConsoleLogger]()
func TypeFor[T any]() Type {
	return TypeOf(reflect.TypeFor[T]())
}

// WithConstructor returns a copy of t that is default-constructed by calling
// constructor. The constructor must have the shape func(deps...) T or
// func(deps...) (T, error) where T is t's reflect type; its parameters are
// resolved from the provider. A nil constructor clears it.
func (t Type) WithConstructor(constructor any) Type {
	if constructor == nil {
		t.ctor = reflect.Value{}
		return t
	}
	t.ctor = reflect.ValueOf(constructor)
	return t
}

// Constructor returns the constructor attached with WithConstructor, if any.
func (t Type) Constructor() (reflect.Value, bool) {
	return t.ctor, t.ctor.IsValid()
}

// IsValid reports whether t describes a type.
func (t Type) IsValid() bool {
	return t.rtype != nil || t.def != nil
}

// IsOpen reports whether t is a generic definition with unbound parameters.
func (t Type) IsOpen() bool {
	return t.def != nil && t.rtype == nil
}

// IsGeneric reports whether t is an open or closed generic type.
func (t Type) IsGeneric() bool {
	return t.def != nil
}

// IsAbstract reports whether t cannot be instantiated directly: interfaces and
// abstract generic definitions.
func (t Type) IsAbstract() bool {
	if t.def != nil && t.def.abstract {
		return true
	}
	return t.rtype != nil && t.rtype.Kind() == reflect.Interface
}

// IsConcrete reports whether t is an instantiable shape.
func (t Type) IsConcrete() bool {
	if !t.IsValid() || t.IsAbstract() {
		return false
	}
	if t.rtype == nil {
		return true
	}

	switch t.rtype.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return false
	}
	return true
}

// Arity returns the number of generic type parameters of t.
func (t Type) Arity() int {
	if t.def == nil {
		return 0
	}
	return len(t.def.params)
}

// GenericArguments returns the bound type arguments of a closed generic type.
func (t Type) GenericArguments() []reflect.Type {
	return slices.Clone(t.args)
}

// Definition returns the generic definition t belongs to, or nil.
func (t Type) Definition() *GenericDefinition {
	return t.def
}

// Reflect returns the reflect.Type of a closed type, or nil for open types.
func (t Type) Reflect() reflect.Type {
	return t.rtype
}

// MakeGeneric binds args to the parameters of the open type t, by position.
func (t Type) MakeGeneric(args ...reflect.Type) (Type, error) {
	if !t.IsOpen() {
		return Type{}, fmt.Errorf("%s is not an open generic type: %w", formatType(t), ErrInvalidArgument)
	}
	return t.def.Close(args...)
}

// Equal reports whether t and other describe the same type. Attached
// constructors are not part of the identity.
func (t Type) Equal(other Type) bool {
	return t.key() == other.key()
}

func (t Type) key() typeKey {
	if t.rtype != nil {
		return typeKey{rtype: t.rtype}
	}
	return typeKey{def: t.def}
}

func (t Type) String() string {
	switch {
	case t.rtype != nil:
		return t.rtype.String()
	case t.def != nil:
		return t.def.String()
	default:
		return "<nil>"
	}
}

func (t Type) shortName() string {
	switch {
	case t.rtype != nil:
		rt := t.rtype
		for rt.Kind() == reflect.Pointer {
			rt = rt.Elem()
		}
		if rt.Name() != "" {
			return rt.Name()
		}
		return rt.String()
	case t.def != nil:
		return t.def.name
	default:
		return ""
	}
}

// Binder produces the closed type for a list of type arguments. Bind is called
// with exactly as many arguments as the definition has parameters.
type Binder interface {
	Bind(args []reflect.Type) (Type, error)
}

// BinderFunc adapts an ordinary function to a Binder.
type BinderFunc func(args []reflect.Type) (Type, error)

// Bind calls f(args).
func (f BinderFunc) Bind(args []reflect.Type) (Type, error) {
	return f(args)
}

// enumerable is implemented by binders that know every instantiation they can
// produce. Definitions bind those up front.
type enumerable interface {
	Instantiations() []Instantiation
}

// GenericDefinition is an open generic shape: a named parameter list plus a
// Binder that produces closed instantiations.
//
// Go cannot instantiate generic types at run time, so every instantiation a
// program needs is supplied by the Binder, typically with Instances. The
// instantiations of an InstanceTable are bound when the definition is created,
// so TypeFor recognises them as closed generics from then on; other binders
// only produce closed generics once Close has been called for their arguments.
//
//	var GenericServiceDef = autoreg.OpenGeneric("GenericService", []string{"T"},
//	    autoreg.Instances(
//	        autoreg.Instance[*GenericService[string]](reflect.TypeFor[string]()),
//	        autoreg.Instance[*GenericService[int]](reflect.TypeFor[int]()),
//	    ))
type GenericDefinition struct {
	name     string
	params   []string
	abstract bool
	bind     Binder

	mu     sync.Mutex
	closed []Type
}

// OpenGeneric defines a concrete open generic type.
func OpenGeneric(name string, params []string, bind Binder) *GenericDefinition {
	return newGenericDefinition(name, params, bind, false)
}

// OpenInterface defines an abstract open generic type, usually an interface.
func OpenInterface(name string, params []string, bind Binder) *GenericDefinition {
	return newGenericDefinition(name, params, bind, true)
}

func newGenericDefinition(name string, params []string, bind Binder, abstract bool) *GenericDefinition {
	if len(params) == 0 {
		panic(fmt.Sprintf("autoreg: generic definition %q needs at least one type parameter", name))
	}
	if bind == nil {
		panic(fmt.Sprintf("autoreg: generic definition %q needs a binder", name))
	}

	d := &GenericDefinition{
		name:     name,
		params:   slices.Clone(params),
		abstract: abstract,
		bind:     bind,
	}

	if table, ok := bind.(enumerable); ok {
		for _, inst := range table.Instantiations() {
			if _, err := d.Close(inst.Args...); err != nil {
				panic(fmt.Sprintf("autoreg: generic definition %q: %v", name, err))
			}
		}
	}

	return d
}

// Name returns the definition name.
func (d *GenericDefinition) Name() string { return d.name }

// Params returns the type parameter names in declaration order.
func (d *GenericDefinition) Params() []string { return slices.Clone(d.params) }

// Arity returns the number of type parameters.
func (d *GenericDefinition) Arity() int { return len(d.params) }

// IsAbstract reports whether the definition was created with OpenInterface.
func (d *GenericDefinition) IsAbstract() bool { return d.abstract }

// Type returns the open Type of the definition.
func (d *GenericDefinition) Type() Type {
	return Type{def: d}
}

func (d *GenericDefinition) String() string {
	return d.name + "[" + strings.Join(d.params, ", ") + "]"
}

// Close binds args to the definition parameters by position and returns the
// closed generic type. Results are cached per argument list.
func (d *GenericDefinition) Close(args ...reflect.Type) (Type, error) {
	if len(args) != len(d.params) {
		return Type{}, ArityMismatchError{Definition: d.String(), Expected: len(d.params), Actual: len(args)}
	}
	for i, arg := range args {
		if arg == nil {
			return Type{}, fmt.Errorf("type argument %s of %s is nil: %w", d.params[i], d.name, ErrInvalidArgument)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, closed := range d.closed {
		if slices.Equal(closed.args, args) {
			return closed, nil
		}
	}

	bound, err := d.bind.Bind(slices.Clone(args))
	if err != nil {
		return Type{}, fmt.Errorf("bind %s with %s: %w", d, formatArgs(args), err)
	}
	if bound.rtype == nil {
		return Type{}, fmt.Errorf("bind %s with %s: binder returned an open type: %w", d, formatArgs(args), ErrInvalidArgument)
	}
	if !d.abstract && bound.rtype.Kind() == reflect.Interface {
		return Type{}, fmt.Errorf("bind %s with %s: binder returned interface %s for a concrete definition: %w",
			d, formatArgs(args), bound.rtype, ErrInvalidArgument)
	}

	closed := Type{
		rtype: bound.rtype,
		def:   d,
		args:  slices.Clone(args),
		ctor:  bound.ctor,
	}
	d.closed = append(d.closed, closed)
	closedGenerics.Store(closed.rtype, closed)

	return closed, nil
}

// MustClose is like Close but panics on error. It is intended for package
// level variables.
func (d *GenericDefinition) MustClose(args ...reflect.Type) Type {
	t, err := d.Close(args...)
	if err != nil {
		panic(err)
	}
	return t
}

// closedGenerics maps the reflect.Type of every bound instantiation back to its
// generic identity.
var closedGenerics sync.Map // map[reflect.Type]Type

func lookupClosedGeneric(rt reflect.Type) (Type, bool) {
	v, ok := closedGenerics.Load(rt)
	if !ok {
		return Type{}, false
	}
	return v.(Type), true
}

// Instantiation pairs a list of type arguments with the closed type they bind to.
type Instantiation struct {
	Args []reflect.Type
	Type Type
}

// Instance returns the Instantiation of T for args.
func Instance[T any](args ...reflect.Type) Instantiation {
	return Instantiation{Args: args, Type: TypeFor[T]()}
}

// InstanceTable is a Binder backed by a fixed table of instantiations.
type InstanceTable []Instantiation

// Instances returns an InstanceTable of instances.
func Instances(instances ...Instantiation) InstanceTable {
	return InstanceTable(slices.Clone(instances))
}

// Bind returns the type bound to args. Unknown argument lists fail with
// ErrNoInstantiation.
func (t InstanceTable) Bind(args []reflect.Type) (Type, error) {
	for _, inst := range t {
		if slices.Equal(inst.Args, args) {
			return inst.Type, nil
		}
	}
	return Type{}, ErrNoInstantiation
}

// Instantiations returns a copy of the table.
func (t InstanceTable) Instantiations() []Instantiation {
	return slices.Clone(t)
}

func formatArgs(args []reflect.Type) string {
	names := make([]string, len(args))
	for i, arg := range args {
		names[i] = formatReflectType(arg)
	}
	return "[" + strings.Join(names, ", ") + "]"
}
