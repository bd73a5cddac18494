package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/junioryono/autoreg"
)

// CollectionBuilder provides a fluent interface for building test collections
type CollectionBuilder struct {
	t          *testing.T
	collection autoreg.Collection
}

// NewCollectionBuilder creates a new CollectionBuilder
func NewCollectionBuilder(t *testing.T) *CollectionBuilder {
	return &CollectionBuilder{
		t:          t,
		collection: autoreg.NewCollection(),
	}
}

// WithSingleton adds a singleton mapping to the collection
func (b *CollectionBuilder) WithSingleton(service, implementation autoreg.Type) *CollectionBuilder {
	require.NoError(b.t, b.collection.AddSingleton(service, implementation))
	return b
}

// WithScoped adds a scoped mapping to the collection
func (b *CollectionBuilder) WithScoped(service, implementation autoreg.Type) *CollectionBuilder {
	require.NoError(b.t, b.collection.AddScoped(service, implementation))
	return b
}

// WithTransient adds a transient mapping to the collection
func (b *CollectionBuilder) WithTransient(service, implementation autoreg.Type) *CollectionBuilder {
	require.NoError(b.t, b.collection.AddTransient(service, implementation))
	return b
}

// WithFactory adds a factory to the collection
func (b *CollectionBuilder) WithFactory(service autoreg.Type, lifetime autoreg.Lifetime, factory func(autoreg.Resolver) (any, error)) *CollectionBuilder {
	require.NoError(b.t, b.collection.AddFactory(service, lifetime, factory))
	return b
}

// WithInstance adds a pre-built singleton to the collection
func (b *CollectionBuilder) WithInstance(service autoreg.Type, instance any) *CollectionBuilder {
	require.NoError(b.t, b.collection.AddInstance(service, instance))
	return b
}

// WithDeclaration registers implementation under declaration
func (b *CollectionBuilder) WithDeclaration(declaration autoreg.ServiceDeclaration, implementation autoreg.Type, factory autoreg.Factory) *CollectionBuilder {
	_, err := autoreg.Register(b.collection, declaration, implementation, factory)
	require.NoError(b.t, err)
	return b
}

// Collection returns the collection being built
func (b *CollectionBuilder) Collection() autoreg.Collection {
	return b.collection
}

// BuildProvider builds the collection and closes the provider on cleanup
func (b *CollectionBuilder) BuildProvider(opts ...*autoreg.ProviderOptions) autoreg.Provider {
	var options *autoreg.ProviderOptions
	if len(opts) > 0 {
		options = opts[0]
	}

	provider, err := b.collection.BuildWithOptions(options)
	require.NoError(b.t, err, "failed to build provider")

	b.t.Cleanup(func() {
		_ = provider.Close()
	})

	return provider
}
