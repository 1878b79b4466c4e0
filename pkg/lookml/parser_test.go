package lookml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersView = `
include: "/views/*.view.lkml"

constant: schema {
  value: "analytics"
}

view: orders {
  label: "Orders"
  sql_table_name: @{schema}.orders ;;

  set: detail {
    fields: [id, status]
  }

  dimension: id {
    primary_key: yes
    type: number
    sql: ${TABLE}.id ;;
  }

  dimension: amount_tier {
    type: tier
    tiers: [0, 10, 50.5]
    sql: ${TABLE}.amount ;;
  }

  dimension_group: created {
    type: time
    timeframes: [date, week, month]
    sql: ${TABLE}.created_at ;;
  }

  measure: count {
    type: count
    drill_fields: [detail*]
  }

  filter: date_filter {
    type: date
    description: "Filter by date"
  }
}

view: customers {
  extends: [base_customers]
  derived_table: {
    sql:
      SELECT *
      FROM customers
      ;;
  }
  dimension: id { type: number sql: ${TABLE}.id ;; }
}

explore: orders {
  label: "Order Analysis"
  always_filter: {
    filters: [orders.status: "complete"]
  }
  join: customers {
    type: left_outer
    relationship: many_to_one
    sql_on: ${orders.customer_id} = ${customers.id} ;;
  }
  join: buyers {
    from: customers
    sql_on: ${orders.buyer_id} = ${buyers.id} ;;
    relationship: many_to_one
  }
}
`

func TestParse_Tree(t *testing.T) {
	f, err := Parse(ordersView)
	require.NoError(t, err)
	require.Len(t, f.Nodes, 5)

	view := f.Nodes[2]
	assert.Equal(t, "view", view.Key)
	assert.Equal(t, "orders", view.Name)
	assert.Equal(t, NodeBlock, view.Kind)
	assert.Equal(t, "@{schema}.orders", view.String("sql_table_name"))
	assert.Len(t, view.All("dimension"), 2)

	explore := f.Nodes[4]
	filters := explore.Get("always_filter").List("filters")
	assert.Equal(t, []string{"orders.status: complete"}, filters)
}

func TestDecode(t *testing.T) {
	m, err := ParseModel(ordersView)
	require.NoError(t, err)

	assert.Equal(t, []string{"/views/*.view.lkml"}, m.Includes)
	assert.Equal(t, []Constant{{Name: "schema", Value: "analytics"}}, m.Constants)
	require.Len(t, m.Views, 2)

	orders := m.Views[0]
	assert.Equal(t, "Orders", orders.Label)
	require.Len(t, orders.Dimensions, 2)
	assert.True(t, orders.Dimensions[0].PrimaryKey)
	assert.Equal(t, "${TABLE}.id", orders.Dimensions[0].SQL)
	assert.Equal(t, []float64{0, 10, 50.5}, orders.Dimensions[1].Tiers)
	require.Len(t, orders.DimensionGroups, 1)
	assert.Equal(t, []string{"date", "week", "month"}, orders.DimensionGroups[0].Timeframes)
	assert.Equal(t, []string{"detail*"}, orders.Measures[0].DrillFields)
	assert.Equal(t, []Set{{Name: "detail", Fields: []string{"id", "status"}}}, orders.Sets)
	assert.Equal(t, "Filter by date", orders.Filters[0].Description)

	customers := m.Views[1]
	assert.Equal(t, []string{"base_customers"}, customers.Extends)
	assert.Equal(t, "SELECT *\nFROM customers", customers.DerivedTableSQL)

	require.Len(t, m.Explores, 1)
	explore := m.Explores[0]
	assert.Equal(t, "Order Analysis", explore.Label)
	require.Len(t, explore.Joins, 2)
	assert.Equal(t, "${orders.customer_id} = ${customers.id}", explore.Joins[0].SQLOn)
	assert.Equal(t, "left_outer", explore.Joins[0].Type)
	assert.Equal(t, "customers", explore.Joins[1].From)
}

func TestSubstituteConstants(t *testing.T) {
	f, err := Parse(`
constant: city { value: "Okayama" }
explore: users {
  label: "@{city} Users"
  description: "Users from @{city}, @{country}"
}`)
	require.NoError(t, err)

	f.SubstituteConstants(map[string]string{"city": "Okayama"})
	m := Decode(f)

	assert.Equal(t, "Okayama Users", m.Explores[0].Label)
	assert.Equal(t, "Users from Okayama, @{country}", m.Explores[0].Description)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing colon", `view orders {}`},
		{"unclosed block", `view: orders { label: "x"`},
		{"unclosed list", `fields: [a, b`},
		{"missing value", `label: }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected ParseError, got %v", err)
		})
	}
}

func TestDecode_InvalidTier(t *testing.T) {
	m, err := ParseModel(`view: v {
  dimension: t { type: tier tiers: [0, ten] sql: 1 ;; }
  dimension: ok { type: tier tiers: [0, 10] sql: 2 ;; }
}`)
	require.NoError(t, err)

	require.Len(t, m.Views, 1)
	dims := m.Views[0].Dimensions
	require.Len(t, dims, 2)
	assert.Empty(t, dims[0].Tiers)
	assert.Equal(t, []string{"ten"}, dims[0].InvalidTiers)
	assert.Equal(t, []float64{0, 10}, dims[1].Tiers)
	assert.Empty(t, dims[1].InvalidTiers)
}

func TestDecode_ViewHidden(t *testing.T) {
	m, err := ParseModel(`view: a { hidden: yes }
view: b { hidden: no }
view: c { label: "C" }`)
	require.NoError(t, err)
	require.Len(t, m.Views, 3)

	require.NotNil(t, m.Views[0].Hidden)
	assert.True(t, *m.Views[0].Hidden)
	require.NotNil(t, m.Views[1].Hidden)
	assert.False(t, *m.Views[1].Hidden)
	assert.Nil(t, m.Views[2].Hidden)
}

func TestModel_Merge(t *testing.T) {
	m := &Model{Includes: []string{"a"}, Constants: []Constant{{Name: "x", Value: "1"}}}
	m.Merge(&Model{
		Includes:  []string{"a", "b"},
		Constants: []Constant{{Name: "x", Value: "2"}},
		Views:     []View{{Name: "v"}},
	})

	assert.Equal(t, []string{"a", "b"}, m.Includes)
	assert.Equal(t, "2", m.ConstantMap()["x"])
	assert.Len(t, m.Views, 1)
}
