package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Lookup(t *testing.T) {
	ix := NewIndex([]Entity{
		{Name: "orders", Label: "first"},
		{Name: "customers"},
		{Name: "orders", Label: "second"},
	})

	e, ok := ix.Lookup("orders")
	require.True(t, ok)
	assert.Equal(t, "first", e.Label, "first declaration wins")

	assert.True(t, ix.Has("customers"))
	assert.False(t, ix.Has("addresses"))
	assert.Equal(t, 3, ix.Len())
}

func TestEntity_HasAlias(t *testing.T) {
	assert.False(t, (&Entity{Attributes: []Attribute{{Name: "id"}}}).HasAlias())
	assert.True(t, (&Entity{Attributes: []Attribute{{Name: "id", Alias: "orders.id"}}}).HasAlias())
	assert.True(t, (&Entity{Measures: []Measure{{Name: "n", Alias: "orders.count"}}}).HasAlias())
}

func TestDataSource_IsZero(t *testing.T) {
	var nilSource *DataSource
	assert.True(t, nilSource.IsZero())
	assert.True(t, (&DataSource{}).IsZero())
	assert.False(t, (&DataSource{Table: "public.orders"}).IsZero())
	assert.False(t, (&DataSource{Query: "SELECT 1"}).IsZero())
}

func TestExplore_Anchor(t *testing.T) {
	assert.Equal(t, "orders", (&Explore{Name: "orders"}).Anchor())
	assert.Equal(t, "orders", (&Explore{Name: "sales", ViewName: "orders"}).Anchor())
}

func TestExplore_Root(t *testing.T) {
	assert.Equal(t, "orders", (&Explore{Name: "orders"}).Root())
	assert.Equal(t, "orders", (&Explore{Name: "sales", ViewName: "orders"}).Root())
	assert.Equal(t, "o", (&Explore{Name: "o", ViewName: "orders", From: "orders"}).Root())
}

func TestDiagnostics(t *testing.T) {
	var ds Diagnostics
	ds.Add(SeverityError, CodeUnsupportedType, "orders", &UnsupportedTypeError{Entity: "orders", Field: "loc", Kind: "location"})
	ds.Warn(CodeUnreachable, "sales", "fallback path %s", "orders.addresses")

	assert.Len(t, ds, 2)
	assert.Equal(t, 1, ds.Count(SeverityError))
	assert.Equal(t, 1, ds.Count(SeverityWarning))
	assert.True(t, ds.HasCode(CodeUnreachable))
	assert.False(t, ds.HasCode(CodeMalformedEdge))
	assert.Contains(t, ds[0].String(), "orders.loc")

	var typed *UnsupportedTypeError
	require.True(t, errors.As(ds[0].Err, &typed))
	assert.Equal(t, "location", typed.Kind)
}

func TestMissingRequiredSectionError_Unwrap(t *testing.T) {
	err := &MissingRequiredSectionError{Section: "explores", Err: ErrNoExplores}
	assert.ErrorIs(t, err, ErrNoExplores)
	assert.Contains(t, err.Error(), "explores")
}

func TestDiagnostics_AtLeast(t *testing.T) {
	ds := Diagnostics{
		{Severity: SeverityError},
		{Severity: SeverityWarning},
		{Severity: SeverityWarning},
		{Severity: SeverityInfo},
	}

	assert.Equal(t, 1, ds.AtLeast(SeverityError))
	assert.Equal(t, 3, ds.AtLeast(SeverityWarning))
	assert.Equal(t, 4, ds.AtLeast(SeverityInfo))
	assert.Zero(t, Diagnostics{}.AtLeast(SeverityInfo))
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"error", SeverityError, true},
		{"WARNING", SeverityWarning, true},
		{"info", SeverityInfo, true},
		{"bogus", SeverityWarning, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSeverity(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
