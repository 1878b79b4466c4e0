package lookml

import (
	"regexp"
	"strconv"
	"strings"
)

// Decode maps a parsed file onto typed records. Keys the converter does not
// use are ignored. Values that cannot be typed are kept on the field they
// belong to (see Field.InvalidTiers) so one bad attribute never fails a file.
func Decode(f *File) *Model {
	m := &Model{}
	for _, n := range f.Nodes {
		switch n.Key {
		case "include":
			if !containsString(m.Includes, n.Value) {
				m.Includes = append(m.Includes, n.Value)
			}
		case "constant":
			m.Constants = append(m.Constants, Constant{Name: n.Name, Value: n.String("value")})
		case "view":
			m.Views = append(m.Views, decodeView(n))
		case "explore":
			m.Explores = append(m.Explores, decodeExplore(n))
		}
	}
	return m
}

// ParseModel parses and decodes LookML text.
func ParseModel(input string) (*Model, error) {
	f, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return Decode(f), nil
}

func decodeView(n *Node) View {
	v := View{
		Name:         n.Name,
		Label:        n.String("label"),
		Description:  n.String("description"),
		SQLTableName: n.String("sql_table_name"),
		Extends:      n.List("extends"),
		Extension:    n.String("extension"),
		Hidden:       n.OptBool("hidden"),
	}
	if dt := n.Get("derived_table"); dt != nil {
		v.DerivedTableSQL = dt.String("sql")
	}

	for _, c := range n.Children {
		switch c.Key {
		case "dimension", "dimension_group", "measure", "filter":
			field := decodeField(c)
			switch c.Key {
			case "dimension":
				v.Dimensions = append(v.Dimensions, field)
			case "dimension_group":
				v.DimensionGroups = append(v.DimensionGroups, field)
			case "measure":
				v.Measures = append(v.Measures, field)
			case "filter":
				v.Filters = append(v.Filters, field)
			}
		case "set":
			v.Sets = append(v.Sets, Set{Name: c.Name, Fields: c.List("fields")})
		}
	}
	return v
}

func decodeField(n *Node) Field {
	f := Field{
		Name:        n.Name,
		Label:       n.String("label"),
		Description: n.String("description"),
		Type:        n.String("type"),
		SQL:         n.String("sql"),
		Hidden:      n.Bool("hidden"),
		PrimaryKey:  n.Bool("primary_key"),
		Timeframes:  n.List("timeframes"),
		DrillFields: n.List("drill_fields"),
	}

	tiers := n.List("tiers")
	if tiers == nil {
		tiers = n.List("bins")
	}
	for _, t := range tiers {
		v, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			f.InvalidTiers = append(f.InvalidTiers, t)
			continue
		}
		f.Tiers = append(f.Tiers, v)
	}
	if len(f.InvalidTiers) > 0 {
		f.Tiers = nil
	}
	return f
}

func decodeExplore(n *Node) Explore {
	e := Explore{
		Name:        n.Name,
		Label:       n.String("label"),
		Description: n.String("description"),
		ViewName:    n.String("view_name"),
		From:        n.String("from"),
		Hidden:      n.Bool("hidden"),
	}
	for _, j := range n.All("join") {
		e.Joins = append(e.Joins, Join{
			Name:         j.Name,
			From:         j.String("from"),
			ViewLabel:    j.String("view_label"),
			Type:         j.String("type"),
			Relationship: j.String("relationship"),
			SQLOn:        j.String("sql_on"),
		})
	}
	return e
}

var constantRef = regexp.MustCompile(`@\{([^}]+)\}`)

// SubstituteConstants replaces @{name} in every value of the file. Unknown
// constants are left as written.
func (f *File) SubstituteConstants(constants map[string]string) {
	if len(constants) == 0 {
		return
	}
	replace := func(s string) string {
		if !strings.Contains(s, "@{") {
			return s
		}
		return constantRef.ReplaceAllStringFunc(s, func(m string) string {
			if v, ok := constants[m[2:len(m)-1]]; ok {
				return v
			}
			return m
		})
	}
	f.Walk(func(n *Node) {
		n.Value = replace(n.Value)
		n.Name = replace(n.Name)
		for i, item := range n.Items {
			n.Items[i] = replace(item)
		}
	})
}

// Constants returns the constants declared in the file.
func (f *File) Constants() []Constant {
	var out []Constant
	for _, n := range f.Nodes {
		if n.Key == "constant" {
			out = append(out, Constant{Name: n.Name, Value: n.String("value")})
		}
	}
	return out
}

// Includes returns the include patterns declared in the file.
func (f *File) Includes() []string {
	var out []string
	for _, n := range f.Nodes {
		if n.Key == "include" && n.Kind == NodeScalar {
			out = append(out, n.Value)
		}
	}
	return out
}
