package core

// EntityKind is the variant of an entity, decided once at construction.
type EntityKind int

const (
	// EntityBase is backed by its own table or query.
	EntityBase EntityKind = iota
	// EntityComposed has no data source and is defined through alias references.
	EntityComposed
)

// String returns the string representation of the entity kind.
func (k EntityKind) String() string {
	switch k {
	case EntityBase:
		return "base"
	case EntityComposed:
		return "composed"
	default:
		return "unknown"
	}
}

// AttributeRole distinguishes the flavours of column-level definitions.
type AttributeRole int

const (
	// RoleDimension is a plain dimension.
	RoleDimension AttributeRole = iota
	// RoleDimensionGroup is a LookML dimension_group (time frames).
	RoleDimensionGroup
	// RoleFilter is a LookML filter field.
	RoleFilter
)

// DataSource is either a table reference or a raw query. Exactly one is set.
type DataSource struct {
	Table string
	Query string
}

// IsZero reports whether neither a table nor a query is set.
func (d *DataSource) IsZero() bool {
	return d == nil || (d.Table == "" && d.Query == "")
}

// Attribute is a named, typed column-level definition.
type Attribute struct {
	Name        string
	Label       string
	Description string
	// Kind is the DSL-specific type name (string, number, tier, yesno, time...)
	Kind string
	Role AttributeRole
	// SQL is the expression template in the owning DSL's interpolation syntax
	SQL    string
	Hidden bool
	// Tiers are ascending bucket boundaries for tier dimensions; boundaries
	// that could not be read as numbers are kept in InvalidTiers
	Tiers        []float64
	InvalidTiers []string
	PrimaryKey   bool
	// Alias is a cross-entity reference ("entity.field") used by composed entities
	Alias string
}

// Measure is a named aggregation definition.
type Measure struct {
	Name        string
	Label       string
	Description string
	Kind        string
	SQL         string
	Hidden      bool
	// DrillFields are field names or "set_name*" references to expand
	DrillFields []string
	Alias       string
}

// Edge is a join between two entities.
type Edge struct {
	// Owner is the entity that declares the edge
	Owner string
	// Target is the joined entity name
	Target string
	// Condition is the raw join condition template
	Condition    string
	Relationship string
	Type         string
	// From names the underlying view when Target is an alias (LookML "from:")
	From string
}

// Entity is a cube or view node.
type Entity struct {
	Name        string
	Label       string
	Description string
	Kind        EntityKind
	Source      *DataSource
	// Extends lists inheritance parents in declared order
	Extends []string
	// Abstract entities (LookML "extension: required") are resolved but never emitted
	Abstract bool
	// Hidden is nil when the entity leaves visibility to its parents
	Hidden     *bool
	Attributes []Attribute
	Measures   []Measure
	Filters    []Attribute
	Joins      []Edge
	// Sets maps LookML set names to their field lists
	Sets map[string][]string
}

// IsHidden reports whether the entity is explicitly hidden.
func (e *Entity) IsHidden() bool {
	return e.Hidden != nil && *e.Hidden
}

// HasAlias reports whether any attribute or measure carries an alias reference.
func (e *Entity) HasAlias() bool {
	for _, a := range e.Attributes {
		if a.Alias != "" {
			return true
		}
	}
	for _, m := range e.Measures {
		if m.Alias != "" {
			return true
		}
	}
	return false
}

// Explore is a query context: an anchor entity plus the joins attached to it.
type Explore struct {
	Name        string
	Label       string
	Description string
	// ViewName is the anchor entity, defaults to Name
	ViewName string
	// From names the anchor when the explore aliases it; join conditions
	// then reference the anchor by the explore's Name
	From   string
	Hidden bool
	Joins  []Edge
}

// Anchor returns the explore's anchor entity name.
func (e *Explore) Anchor() string {
	if e.ViewName != "" {
		return e.ViewName
	}
	return e.Name
}

// Root returns the name join conditions use for the anchor.
func (e *Explore) Root() string {
	if e.From != "" {
		return e.Name
	}
	return e.Anchor()
}

// Model is a loaded semantic model: entities plus query contexts.
type Model struct {
	Entities []Entity
	Explores []Explore
}

// ViewMember is one entry of a composite view.
type ViewMember struct {
	// Path is the dotted join path from the anchor
	Path     string
	Alias    string
	Includes string
}

// CompositeView groups an anchor entity with every reachable joined entity.
type CompositeView struct {
	Name        string
	Description string
	Anchor      string
	Members     []ViewMember
}
