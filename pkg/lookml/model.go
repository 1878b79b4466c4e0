package lookml

// Model is the typed content of one or more LookML files.
type Model struct {
	Includes  []string
	Constants []Constant
	Views     []View
	Explores  []Explore
}

// Constant is a project constant referenced as @{name}.
type Constant struct {
	Name  string
	Value string
}

// View is a LookML view.
type View struct {
	Name            string
	Label           string
	Description     string
	SQLTableName    string
	DerivedTableSQL string
	Extends         []string
	// Extension is "required" for abstract views
	Extension       string
	Hidden          *bool
	Dimensions      []Field
	DimensionGroups []Field
	Measures        []Field
	Filters         []Field
	Sets            []Set
}

// Field is a dimension, dimension group, measure or filter. InvalidTiers
// holds tier boundaries that are not numbers; Tiers is empty when it is set.
type Field struct {
	Name         string
	Label        string
	Description  string
	Type         string
	SQL          string
	Hidden       bool
	PrimaryKey   bool
	Tiers        []float64
	InvalidTiers []string
	Timeframes   []string
	DrillFields  []string
}

// Set is a named list of fields.
type Set struct {
	Name   string
	Fields []string
}

// Explore is a LookML explore.
type Explore struct {
	Name        string
	Label       string
	Description string
	ViewName    string
	From        string
	Hidden      bool
	Joins       []Join
}

// Join attaches a view to an explore.
type Join struct {
	Name         string
	From         string
	ViewLabel    string
	Type         string
	Relationship string
	SQLOn        string
}

// Merge appends other's content to m. Includes are de-duplicated keeping
// first-seen order; later constants shadow earlier ones on lookup.
func (m *Model) Merge(other *Model) {
	for _, inc := range other.Includes {
		if !containsString(m.Includes, inc) {
			m.Includes = append(m.Includes, inc)
		}
	}
	m.Constants = append(m.Constants, other.Constants...)
	m.Views = append(m.Views, other.Views...)
	m.Explores = append(m.Explores, other.Explores...)
}

// ConstantMap returns constants by name. Later declarations win.
func (m *Model) ConstantMap() map[string]string {
	out := make(map[string]string, len(m.Constants))
	for _, c := range m.Constants {
		out[c.Name] = c.Value
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
