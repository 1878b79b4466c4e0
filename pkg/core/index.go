package core

// Index is a name to entity lookup built once per conversion run.
// An Index is not safe for concurrent use and must not outlive its run.
type Index struct {
	entities []Entity
	byName   map[string]int
}

// NewIndex creates an index over entities. The map is built on first lookup.
func NewIndex(entities []Entity) *Index {
	return &Index{entities: entities}
}

func (ix *Index) build() {
	ix.byName = make(map[string]int, len(ix.entities))
	for i := range ix.entities {
		// first declaration wins
		if _, exists := ix.byName[ix.entities[i].Name]; !exists {
			ix.byName[ix.entities[i].Name] = i
		}
	}
}

// Lookup returns the entity with the given name.
func (ix *Index) Lookup(name string) (*Entity, bool) {
	if ix.byName == nil {
		ix.build()
	}
	i, ok := ix.byName[name]
	if !ok {
		return nil, false
	}
	return &ix.entities[i], true
}

// Has reports whether an entity with the given name exists.
func (ix *Index) Has(name string) bool {
	_, ok := ix.Lookup(name)
	return ok
}

// Len returns the number of indexed entities.
func (ix *Index) Len() int {
	return len(ix.entities)
}
