package identifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customer struct {
	ID   int
	Name string
}

type organization struct {
	id int
}

func (o *organization) ID() int { return o.id }

type widget struct {
	Customer     *customer
	Organization *organization
}

type model struct {
	pk int64
}

func (m model) Key() any { return m.pk }

func TestDefaultResolver_PropertyPath(t *testing.T) {
	r := NewDefaultResolver("", []Source{Property("customer.id", "customer")})

	id, ok := r.Resolve(context.Background(), &widget{Customer: &customer{ID: 123}})

	require.True(t, ok)
	assert.Equal(t, "customer:123", id)
}

func TestDefaultResolver_Prefix(t *testing.T) {
	r := NewDefaultResolver("tenant-a:", []Source{Property("customer.id", "customer")})

	id, ok := r.Resolve(context.Background(), map[string]any{
		"customer": map[string]any{"id": 7},
	})

	require.True(t, ok)
	assert.Equal(t, "tenant-a:customer:7", id)
}

func TestDefaultResolver_NoLabel(t *testing.T) {
	r := NewDefaultResolver("", []Source{Property("customer.id", "")})

	id, ok := r.Resolve(context.Background(), &widget{Customer: &customer{ID: 9}})

	require.True(t, ok)
	assert.Equal(t, "9", id)
}

func TestDefaultResolver_PropertyBeforeRoute(t *testing.T) {
	// Route source declared first: property sources still win.
	r := NewDefaultResolver("", []Source{
		RouteParam("customer", "route-customer"),
		Property("customer.id", "customer"),
	})

	ctx := WithRoute(context.Background(), Params{"customer": "999"})
	id, ok := r.Resolve(ctx, &widget{Customer: &customer{ID: 123}})

	require.True(t, ok)
	assert.Equal(t, "customer:123", id)
}

func TestDefaultResolver_FallsBackToRoute(t *testing.T) {
	r := NewDefaultResolver("", []Source{
		Property("customer.id", "customer"),
		RouteParam("customer", "customer"),
	})

	ctx := WithRoute(context.Background(), Params{"customer": "55"})
	id, ok := r.Resolve(ctx, &widget{})

	require.True(t, ok)
	assert.Equal(t, "customer:55", id)
}

func TestDefaultResolver_EmptyValuesSkipped(t *testing.T) {
	tests := []struct {
		name    string
		subject any
	}{
		{"empty string", map[string]any{"customer": map[string]any{"id": ""}}},
		{"nil", map[string]any{"customer": map[string]any{"id": nil}}},
		{"zero", map[string]any{"customer": map[string]any{"id": 0}}},
		{"string zero", map[string]any{"customer": map[string]any{"id": "0"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDefaultResolver("", []Source{
				Property("customer.id", "customer"),
				Property("organization.id", "org"),
			})

			subject := tt.subject.(map[string]any)
			subject["organization"] = map[string]any{"id": 31}

			id, ok := r.Resolve(context.Background(), subject)

			require.True(t, ok)
			assert.Equal(t, "org:31", id)
		})
	}
}

func TestDefaultResolver_AccessorMethod(t *testing.T) {
	r := NewDefaultResolver("", []Source{Property("organization.id", "org")})

	id, ok := r.Resolve(context.Background(), &widget{Organization: &organization{id: 4}})

	require.True(t, ok)
	assert.Equal(t, "org:4", id)
}

func TestDefaultResolver_KeyedSubstitution(t *testing.T) {
	r := NewDefaultResolver("", []Source{
		Property("customer", "customer"),
		RouteParam("organization", "org"),
	})

	id, ok := r.Resolve(context.Background(), map[string]any{"customer": model{pk: 88}})
	require.True(t, ok)
	assert.Equal(t, "customer:88", id)

	ctx := WithRoute(context.Background(), Params{"organization": model{pk: 12}})
	id, ok = r.Resolve(ctx, nil)
	require.True(t, ok)
	assert.Equal(t, "org:12", id)
}

func TestDefaultResolver_NothingResolves(t *testing.T) {
	r := NewDefaultResolver("", []Source{
		Property("customer.id", "customer"),
		RouteParam("customer", "customer"),
	})

	_, ok := r.Resolve(context.Background(), "not a struct")
	assert.False(t, ok)

	_, ok = r.Resolve(WithRoute(context.Background(), Params{"customer": ""}), nil)
	assert.False(t, ok)

	_, ok = r.Resolve(context.Background(), nil)
	assert.False(t, ok)
}

func TestDefaultResolver_UnusableSourcesIgnored(t *testing.T) {
	r := NewDefaultResolver("", []Source{
		{Kind: KindProperty},
		{Kind: KindRoute},
		{Kind: "header", Name: "x"},
		Property("customer.id", "customer"),
	})

	id, ok := r.Resolve(context.Background(), &widget{Customer: &customer{ID: 1}})

	require.True(t, ok)
	assert.Equal(t, "customer:1", id)
}

func TestRegistry(t *testing.T) {
	Register("static", func(prefix string, _ []Source) Resolver {
		return ResolverFunc(func(context.Context, any) (string, bool) {
			return prefix + "static", true
		})
	})

	r, err := New("static", "p:", nil)
	require.NoError(t, err)
	id, ok := r.Resolve(context.Background(), nil)
	assert.True(t, ok)
	assert.Equal(t, "p:static", id)

	r, err = New("", "", nil)
	require.NoError(t, err)
	assert.IsType(t, &DefaultResolver{}, r)

	_, err = New("missing", "", nil)
	assert.ErrorIs(t, err, ErrUnknownResolver)

	assert.Contains(t, Registered(), DefaultResolverName)
}
