package expr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestToCube(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"self reference", "${TABLE}.id", "{CUBE}.id"},
		{"cross reference", "${orders.customer_id} = ${customers.id}", "{orders.customer_id} = {customers.id}"},
		{"field in same view", "${amount} * 2", "{amount} * 2"},
		{"no placeholders", "COUNT(*)", "COUNT(*)"},
		{"unrecognized marker passes through", "@{constant} and {already}", "@{constant} and {already}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToCube(tt.in))
		})
	}
}

func TestToLookML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"cube self", "{CUBE}.id", "${TABLE}.id"},
		{"dollar cube self", "${CUBE}.id", "${TABLE}.id"},
		{"already lookml", "${TABLE}.status", "${TABLE}.status"},
		{"cross reference", "{orders.id} = {customers.order_id}", "${orders.id} = ${customers.order_id}"},
		{"json braces untouched", `'{"a": 1}'`, `'{"a": 1}'`},
		{"star", "*", "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToLookML(tt.in))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	in := "${TABLE}.amount + ${customers.credit}"
	assert.Equal(t, in, ToLookML(ToCube(in)))
}

func TestRenameEntity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lookml form", "${o.customer_id} = ${customers.id}", "${orders.customer_id} = ${customers.id}"},
		{"cube form", "{o.customer_id} = {customers.id}", "{orders.customer_id} = {customers.id}"},
		{"prefix of another name", "${ord.id} = ${o.id}", "${ord.id} = ${orders.id}"},
		{"self reference untouched", "${TABLE}.id = ${o}", "${TABLE}.id = ${o}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenameEntity(tt.in, "o", "orders"))
		})
	}
}

func TestReferences(t *testing.T) {
	refs := References("${orders.customer_id} = ${customers.id} AND ${orders.status} = 'x' AND ${TABLE}.id > 0")
	assert.Equal(t, []string{"orders", "customers"}, refs)

	assert.Equal(t, []string{"a", "b"}, References("{a.x} = {b.y}"))
	assert.Empty(t, References("${TABLE}.id"))
	assert.Empty(t, References("${amount}"))
}

func TestSQL_MarshalYAML(t *testing.T) {
	type doc struct {
		Single SQL `yaml:"single"`
		Multi  SQL `yaml:"multi"`
	}

	out, err := yaml.Marshal(doc{
		Single: Wrap("{CUBE}.id"),
		Multi:  Wrap("SELECT *\nFROM users"),
	})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "single: '{CUBE}.id'")
	assert.Contains(t, text, "multi: |")
	assert.True(t, strings.Contains(text, "    SELECT *\n    FROM users") || strings.Contains(text, "  SELECT *\n  FROM users"))
}

func TestSQL_IsMultiline(t *testing.T) {
	assert.False(t, Wrap("a").IsMultiline())
	assert.True(t, Wrap("a\nb").IsMultiline())
}
