package lookml

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

const viewTemplate = `view: {{ .Name }} {
{{- with .Label }}
  label: {{ quote . }}
{{- end }}
{{- with .Description }}
  description: {{ quote . }}
{{- end }}
{{- with .SQLTableName }}
  sql_table_name: {{ . }} ;;
{{- end }}
{{- with .DerivedTableSQL }}
  derived_table: {
{{ sqlBlock "    " . }}
  }
{{- end }}
{{- with .Extends }}
  extends: [{{ join ", " . }}]
{{- end }}
{{- with .Extension }}
  extension: {{ . }}
{{- end }}
{{- if yes .Hidden }}
  hidden: yes
{{- end }}
{{- range .Sets }}

  set: {{ .Name }} {
    fields: [{{ join ", " .Fields }}]
  }
{{- end }}
{{- range .Dimensions }}
{{ field "dimension" . }}
{{- end }}
{{- range .DimensionGroups }}
{{ field "dimension_group" . }}
{{- end }}
{{- range .Measures }}
{{ field "measure" . }}
{{- end }}
{{- range .Filters }}
{{ field "filter" . }}
{{- end }}
}
`

const fieldTemplate = `
  {{ .Kind }}: {{ .Field.Name }} {
{{- with .Field.Label }}
    label: {{ quote . }}
{{- end }}
{{- with .Field.Description }}
    description: {{ quote . }}
{{- end }}
{{- with .Field.Type }}
    type: {{ . }}
{{- end }}
{{- with .Field.Timeframes }}
    timeframes: [{{ join ", " . }}]
{{- end }}
{{- with .Field.Tiers }}
    tiers: [{{ join ", " . }}]
{{- end }}
{{- if .Field.PrimaryKey }}
    primary_key: yes
{{- end }}
{{- with .Field.SQL }}
{{ sqlBlock "    " . }}
{{- end }}
{{- with .Field.DrillFields }}
    drill_fields: [{{ join ", " . }}]
{{- end }}
{{- if .Field.Hidden }}
    hidden: yes
{{- end }}
  }`

const exploreTemplate = `{{ range .Includes }}include: {{ quote . }}
{{ end }}{{ if .Includes }}
{{ end }}explore: {{ .Explore.Name }} {
{{- with .Explore.Label }}
  label: {{ quote . }}
{{- end }}
{{- with .Explore.Description }}
  description: {{ quote . }}
{{- end }}
{{- if .Explore.Hidden }}
  hidden: yes
{{- end }}
{{- with .Explore.ViewName }}
  view_name: {{ . }}
{{- end }}
{{- with .Explore.From }}
  from: {{ . }}
{{- end }}
{{- range .Explore.Joins }}

  join: {{ .Name }} {
{{- with .From }}
    from: {{ . }}
{{- end }}
{{- with .ViewLabel }}
    view_label: {{ quote . }}
{{- end }}
{{- with .Type }}
    type: {{ . }}
{{- end }}
{{- with .Relationship }}
    relationship: {{ . }}
{{- end }}
{{- with .SQLOn }}
    sql_on: {{ . }} ;;
{{- end }}
  }
{{- end }}
}
`

// Writer renders LookML text from typed records.
type Writer struct {
	tmpl *template.Template
}

// NewWriter creates a writer with the LookML templates parsed.
func NewWriter() (*Writer, error) {
	funcs := sprig.TxtFuncMap()
	funcs["sqlBlock"] = sqlBlock
	funcs["yes"] = func(b *bool) bool { return b != nil && *b }

	tmpl := template.New("lookml").Funcs(funcs)
	w := &Writer{tmpl: tmpl}
	tmpl.Funcs(template.FuncMap{"field": w.renderField})

	for name, text := range map[string]string{
		"view":    viewTemplate,
		"field":   fieldTemplate,
		"explore": exploreTemplate,
	} {
		if _, err := tmpl.New(name).Parse(text); err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
	}
	return w, nil
}

// View renders a view.
func (w *Writer) View(v View) (string, error) {
	return w.execute("view", v)
}

// Explore renders an explore preceded by one include line per path.
func (w *Writer) Explore(e Explore, includes []string) (string, error) {
	return w.execute("explore", struct {
		Explore  Explore
		Includes []string
	}{e, includes})
}

func (w *Writer) renderField(kind string, f Field) (string, error) {
	return w.execute("field", struct {
		Kind  string
		Field Field
	}{kind, f})
}

func (w *Writer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := w.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return buf.String(), nil
}

// sqlBlock renders "sql: ... ;;" at the given indent. Multi-line bodies go on
// their own lines, indented one level deeper.
func sqlBlock(indent, sql string) string {
	if !strings.Contains(sql, "\n") {
		return indent + "sql: " + sql + " ;;"
	}
	var sb strings.Builder
	sb.WriteString(indent + "sql:\n")
	for _, line := range strings.Split(sql, "\n") {
		sb.WriteString(indent + "  " + line + "\n")
	}
	sb.WriteString(indent + ";;")
	return sb.String()
}

// ExploreIncludes returns the include path of every view an explore uses
// that exists in views, anchor first then joins in order.
func ExploreIncludes(e Explore, views []View) []string {
	known := make(map[string]bool, len(views))
	for _, v := range views {
		known[v.Name] = true
	}

	var includes []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] || !known[name] {
			return
		}
		seen[name] = true
		includes = append(includes, "/views/"+name+".view.lkml")
	}

	add(e.ViewName)
	add(e.Name)
	for _, j := range e.Joins {
		if j.From != "" {
			add(j.From)
		} else {
			add(j.Name)
		}
	}
	return includes
}
