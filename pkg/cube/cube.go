// Package cube defines the Cube data model documents written as YAML and the
// records returned by the Cube meta API.
package cube

import (
	"strings"

	"github.com/leapstack-labs/lkml2cube/pkg/expr"
)

// Document is the root of a Cube model file.
type Document struct {
	Cubes []Cube `yaml:"cubes,omitempty" json:"cubes,omitempty"`
	Views []View `yaml:"views,omitempty" json:"views,omitempty"`
}

// Cube is a table-backed Cube definition.
type Cube struct {
	Name        string   `yaml:"name" json:"name"`
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	SQLTable    string   `yaml:"sql_table,omitempty" json:"sql_table,omitempty"`
	SQL         expr.SQL `yaml:"sql,omitempty" json:"sql,omitempty"`
	Extends     string   `yaml:"extends,omitempty" json:"extends,omitempty"`
	// Shown is only written for generated alias cubes, which are hidden
	Shown      *bool       `yaml:"shown,omitempty" json:"shown,omitempty"`
	Dimensions []Dimension `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	Measures   []Measure   `yaml:"measures,omitempty" json:"measures,omitempty"`
	Joins      []Join      `yaml:"joins,omitempty" json:"joins,omitempty"`
}

// Dimension is a Cube dimension.
type Dimension struct {
	Name        string   `yaml:"name" json:"name"`
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	SQL         expr.SQL `yaml:"sql" json:"sql"`
	Type        string   `yaml:"type" json:"type"`
	PrimaryKey  bool     `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	Public      *bool    `yaml:"public,omitempty" json:"public,omitempty"`
}

// Measure is a Cube measure.
type Measure struct {
	Name         string   `yaml:"name" json:"name"`
	Title        string   `yaml:"title,omitempty" json:"title,omitempty"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	Type         string   `yaml:"type" json:"type"`
	SQL          expr.SQL `yaml:"sql,omitempty" json:"sql,omitempty"`
	DrillMembers []string `yaml:"drill_members,omitempty" json:"drill_members,omitempty"`
	Public       *bool    `yaml:"public,omitempty" json:"public,omitempty"`
}

// Join is owned by the joined cube and names the cube it attaches to.
type Join struct {
	Name         string   `yaml:"name" json:"name"`
	SQL          expr.SQL `yaml:"sql" json:"sql"`
	Relationship string   `yaml:"relationship" json:"relationship"`
}

// View composes cubes through join paths.
type View struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Cubes       []ViewCube `yaml:"cubes" json:"cubes"`
}

// ViewCube is one member of a view.
type ViewCube struct {
	JoinPath string `yaml:"join_path" json:"join_path"`
	Includes string `yaml:"includes" json:"includes"`
	Alias    string `yaml:"alias" json:"alias"`
}

// Split returns one single-cube or single-view document per element, in
// order. The file writer emits one file per document.
func (d Document) Split() (cubes, views []Document) {
	for _, c := range d.Cubes {
		cubes = append(cubes, Document{Cubes: []Cube{c}})
	}
	for _, v := range d.Views {
		views = append(views, Document{Views: []View{v}})
	}
	return cubes, views
}

// Meta is the body of GET /v1/meta?extended.
type Meta struct {
	Cubes []MetaCube `json:"cubes"`
}

// MetaCube is a cube or view as reported by the meta API.
type MetaCube struct {
	Name        string       `json:"name"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Type        string       `json:"type,omitempty"`
	SQLTable    string       `json:"sql_table,omitempty"`
	SQL         string       `json:"sql,omitempty"`
	Extends     string       `json:"extends,omitempty"`
	Public      *bool        `json:"public,omitempty"`
	Dimensions  []MetaMember `json:"dimensions,omitempty"`
	Measures    []MetaMember `json:"measures,omitempty"`
}

// MetaMember is a dimension or measure as reported by the meta API.
type MetaMember struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	ShortTitle  string `json:"shortTitle,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	AggType     string `json:"aggType,omitempty"`
	SQL         string `json:"sql,omitempty"`
	Public      bool   `json:"public"`
	PrimaryKey  bool   `json:"primaryKey,omitempty"`
	// AliasMember is set on view members and points at "cube.member"
	AliasMember string `json:"aliasMember,omitempty"`
}

// ShortName strips the owning cube prefix the meta API adds to member names.
func (m MetaMember) ShortName() string {
	if i := strings.LastIndex(m.Name, "."); i >= 0 {
		return m.Name[i+1:]
	}
	return m.Name
}

// Kind returns the aggregation type for measures and the plain type otherwise.
func (m MetaMember) Kind() string {
	if m.AggType != "" {
		return m.AggType
	}
	return m.Type
}
