package autoreg

import (
	"fmt"
	"slices"
	"sync"
)

// Catalog attaches service declarations to implementation types. It is the
// table a Scanner reads: each implementation is paired with its
// declarations once, typically from package init functions, and scanned
// into as many collections as needed.
//
//	func init() {
//	    autoreg.Declare[*SmtpMailer](
//	        autoreg.As[Mailer](autoreg.Singleton),
//	        autoreg.Self(autoreg.Transient),
//	    )
//	}
type Catalog struct {
	mu      sync.RWMutex
	entries map[typeKey]*catalogEntry
	order   []typeKey
}

type catalogEntry struct {
	implementation Type
	declarations   []ServiceDeclaration
}

// DefaultCatalog is the process catalog used by Declare and the package level
// scan functions.
var DefaultCatalog = NewCatalog()

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[typeKey]*catalogEntry),
	}
}

// Attach appends declarations to implementation. Declarations accumulate in
// attachment order across calls. A constructor carried by implementation
// replaces any constructor attached earlier.
func (c *Catalog) Attach(implementation Type, declarations ...ServiceDeclaration) error {
	if !implementation.IsValid() {
		return ErrImplementationTypeNil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := implementation.key()
	entry, ok := c.entries[key]
	if !ok {
		entry = &catalogEntry{implementation: implementation}
		c.entries[key] = entry
		c.order = append(c.order, key)
	} else if _, hasCtor := implementation.Constructor(); hasCtor {
		entry.implementation = implementation
	}

	entry.declarations = append(entry.declarations, declarations...)
	return nil
}

// MustAttach is like Attach but panics on error.
func (c *Catalog) MustAttach(implementation Type, declarations ...ServiceDeclaration) {
	if err := c.Attach(implementation, declarations...); err != nil {
		panic(fmt.Sprintf("autoreg: attach %s: %v", implementation, err))
	}
}

// Declarations returns the declarations attached to t, in attachment order.
func (c *Catalog) Declarations(t Type) []ServiceDeclaration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[t.key()]
	if !ok {
		return nil
	}
	return slices.Clone(entry.declarations)
}

// Types returns every type with attachments, in first-attachment order.
func (c *Catalog) Types() []Type {
	c.mu.RLock()
	defer c.mu.RUnlock()

	types := make([]Type, len(c.order))
	for i, key := range c.order {
		types[i] = c.entries[key].implementation
	}
	return types
}

// lookup returns the attached implementation (with its constructor) and
// declarations for t.
func (c *Catalog) lookup(t Type) (Type, []ServiceDeclaration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[t.key()]
	if !ok {
		return Type{}, nil, false
	}

	impl := entry.implementation
	if _, hasCtor := t.Constructor(); hasCtor {
		impl = t
	}
	return impl, slices.Clone(entry.declarations), true
}

// Declare attaches declarations to T in DefaultCatalog.
func Declare[T any](declarations ...ServiceDeclaration) {
	DefaultCatalog.MustAttach(TypeFor[T](), declarations...)
}

// DeclareGeneric attaches declarations to an open generic definition in
// DefaultCatalog.
func DeclareGeneric(definition *GenericDefinition, declarations ...ServiceDeclaration) {
	DefaultCatalog.MustAttach(definition.Type(), declarations...)
}
