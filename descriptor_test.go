package autoreg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/junioryono/autoreg"
	"github.com/junioryono/autoreg/internal/testutil"
)

func TestDescriptor_Validate(t *testing.T) {
	factory := func(autoreg.Resolver) (any, error) { return testutil.NewService1(), nil }

	tests := []struct {
		name       string
		descriptor autoreg.Descriptor
		wantErr    error
	}{
		{
			name:       "implementation",
			descriptor: autoreg.Descriptor{ServiceType: iService, ImplementationType: service1, Lifetime: autoreg.Scoped},
		},
		{
			name:       "factory",
			descriptor: autoreg.Descriptor{ServiceType: iService, Factory: factory, Lifetime: autoreg.Transient},
		},
		{
			name:       "instance",
			descriptor: autoreg.Descriptor{ServiceType: iService, Instance: testutil.NewService1()},
		},
		{
			name: "open generic",
			descriptor: autoreg.Descriptor{
				ServiceType:        testutil.IGenericServiceDef.Type(),
				ImplementationType: testutil.GenericServiceDef.Type(),
			},
		},
		{
			name:       "missing service type",
			descriptor: autoreg.Descriptor{ImplementationType: service1},
			wantErr:    autoreg.ErrServiceTypeNil,
		},
		{
			name:       "invalid lifetime",
			descriptor: autoreg.Descriptor{ServiceType: iService, ImplementationType: service1, Lifetime: 7},
			wantErr:    autoreg.ErrInvalidArgument,
		},
		{
			name:       "no source",
			descriptor: autoreg.Descriptor{ServiceType: iService},
			wantErr:    autoreg.ErrImplementationTypeNil,
		},
		{
			name:       "two sources",
			descriptor: autoreg.Descriptor{ServiceType: iService, ImplementationType: service1, Factory: factory},
			wantErr:    autoreg.ErrInvalidArgument,
		},
		{
			name:       "scoped instance",
			descriptor: autoreg.Descriptor{ServiceType: iService, Instance: testutil.NewService1(), Lifetime: autoreg.Scoped},
			wantErr:    autoreg.ErrInvalidArgument,
		},
		{
			name: "open generic factory",
			descriptor: autoreg.Descriptor{
				ServiceType: testutil.IGenericServiceDef.Type(),
				Factory:     factory,
			},
			wantErr: autoreg.ErrUnsupported,
		},
		{
			name: "open generic with closed implementation",
			descriptor: autoreg.Descriptor{
				ServiceType:        testutil.IGenericServiceDef.Type(),
				ImplementationType: testutil.GenericStringService,
			},
			wantErr: autoreg.ErrOpenServiceClosedImpl,
		},
		{
			name: "open generic with abstract implementation",
			descriptor: autoreg.Descriptor{
				ServiceType:        testutil.IGenericServiceDef.Type(),
				ImplementationType: testutil.IGenericServiceDef.Type(),
			},
			wantErr: autoreg.ErrInvalidArgument,
		},
		{
			name: "closed service with open implementation",
			descriptor: autoreg.Descriptor{
				ServiceType:        testutil.IGenericStringService,
				ImplementationType: testutil.GenericServiceDef.Type(),
			},
			wantErr: autoreg.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.descriptor.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)

			var validationErr autoreg.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestDescriptor_String(t *testing.T) {
	t.Parallel()

	d := &autoreg.Descriptor{ServiceType: iService, ImplementationType: service1, Lifetime: autoreg.Transient}
	assert.Equal(t, "testutil.IService => *testutil.Service1 (Transient)", d.String())

	open := &autoreg.Descriptor{ServiceType: testutil.IGenericServiceDef.Type(), ImplementationType: testutil.GenericServiceDef.Type()}
	assert.True(t, open.IsOpenGeneric())
	assert.Equal(t, "IGenericService[T] => GenericService[T] (Singleton)", open.String())
}
