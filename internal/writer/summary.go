package writer

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Entry kinds in a Summary.
const (
	KindCube       = "cube"
	KindView       = "view"
	KindLookMLView = "lookml view"
	KindExplore    = "explore"
)

// kindOrder keeps summaries grouped the way files are produced.
var kindOrder = map[string]int{
	KindCube:       0,
	KindView:       1,
	KindLookMLView: 2,
	KindExplore:    3,
}

// Entry is one written file.
type Entry struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Summary lists the files of one write, grouped by kind then sorted by name.
type Summary struct {
	Entries []Entry `json:"entries"`
}

func (s *Summary) sort() {
	sort.SliceStable(s.Entries, func(i, j int) bool {
		a, b := s.Entries[i], s.Entries[j]
		if a.Kind != b.Kind {
			return kindOrder[a.Kind] < kindOrder[b.Kind]
		}
		return a.Name < b.Name
	})
}

// Count returns the number of entries of a kind.
func (s *Summary) Count(kind string) int {
	n := 0
	for _, e := range s.Entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Render writes the summary as a table.
func (s *Summary) Render(w io.Writer) {
	if len(s.Entries) == 0 {
		_, _ = fmt.Fprintln(w, "(no files generated)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Generated files")
	t.AppendHeader(table.Row{"Kind", "Name", "Path"})
	for _, e := range s.Entries {
		t.AppendRow(table.Row{e.Kind, e.Name, e.Path})
	}
	t.AppendFooter(table.Row{"", "Total", len(s.Entries)})
	t.Render()
}

// RenderMarkdown writes the summary as a markdown table.
func (s *Summary) RenderMarkdown(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Kind", "Name", "Path"})
	for _, e := range s.Entries {
		t.AppendRow(table.Row{e.Kind, e.Name, e.Path})
	}
	t.RenderMarkdown()
}
