// Package expr rewrites SQL template placeholders between LookML and Cube.
//
// LookML interpolates with ${TABLE} for the owning table and ${view.field}
// for cross-view references. Cube uses {CUBE} and {cube.field}. Both
// directions are pure string functions; anything that is not a placeholder
// passes through unchanged.
package expr

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	lookmlSelf = "TABLE"
	cubeSelf   = "CUBE"
)

var (
	// lookmlPlaceholder matches ${name} and ${name.field}
	lookmlPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_.]*)\}`)
	// anyPlaceholder matches both ${name} and {name} forms
	anyPlaceholder = regexp.MustCompile(`\$?\{([A-Za-z_][A-Za-z0-9_.]*)\}`)
	// fieldReference matches ${entity.field} and {entity.field}
	fieldReference = regexp.MustCompile(`\$?\{([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\}`)
)

// ToCube rewrites a LookML template into Cube syntax.
//
//	${TABLE}.id            -> {CUBE}.id
//	${orders.customer_id}  -> {orders.customer_id}
func ToCube(s string) string {
	return lookmlPlaceholder.ReplaceAllStringFunc(s, func(m string) string {
		name := m[2 : len(m)-1]
		if name == lookmlSelf {
			name = cubeSelf
		}
		return "{" + name + "}"
	})
}

// ToLookML rewrites a Cube template into LookML syntax.
// Placeholders already in ${...} form are normalized the same way.
//
//	{CUBE}.id              -> ${TABLE}.id
//	{orders.customer_id}   -> ${orders.customer_id}
func ToLookML(s string) string {
	return anyPlaceholder.ReplaceAllStringFunc(s, func(m string) string {
		name := strings.TrimPrefix(m, "$")
		name = name[1 : len(name)-1]
		if name == cubeSelf {
			name = lookmlSelf
		}
		return "${" + name + "}"
	})
}

// References returns the entity names referenced by entity.field
// placeholders, in order of first appearance.
func References(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range fieldReference.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if name == lookmlSelf || name == cubeSelf || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// RenameEntity rewrites entity.field placeholders that name from so they
// name to instead. Each placeholder keeps its ${...} or {...} form.
func RenameEntity(s, from, to string) string {
	return fieldReference.ReplaceAllStringFunc(s, func(m string) string {
		sub := fieldReference.FindStringSubmatch(m)
		if sub[1] != from {
			return m
		}
		open := "{"
		if strings.HasPrefix(m, "$") {
			open = "${"
		}
		return open + to + "." + sub[2] + "}"
	})
}

// SQL is a rewritten expression. Values with embedded newlines are
// serialized as YAML literal blocks instead of escaped scalars.
type SQL string

// Wrap tags s for serialization.
func Wrap(s string) SQL {
	return SQL(s)
}

// IsMultiline reports whether the expression spans several lines.
func (s SQL) IsMultiline() bool {
	return strings.Contains(string(s), "\n")
}

// String returns the raw expression.
func (s SQL) String() string {
	return string(s)
}

// MarshalYAML renders multi-line expressions in literal ("|") style.
func (s SQL) MarshalYAML() (interface{}, error) {
	if !s.IsMultiline() {
		return string(s), nil
	}
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Style: yaml.LiteralStyle,
		Value: string(s),
	}, nil
}
