// Package convert runs the forward (LookML -> Cube) and reverse
// (Cube -> LookML) conversion pipelines.
//
// Every call builds its own entity index and join graphs, so one Converter
// can serve concurrent runs.
package convert

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/leapstack-labs/lkml2cube/internal/joins"
	"github.com/leapstack-labs/lkml2cube/pkg/core"
	"github.com/leapstack-labs/lkml2cube/pkg/cube"
	"github.com/leapstack-labs/lkml2cube/pkg/lookml"
)

// Options configures a Converter.
type Options struct {
	// UseExploresName names Cube views after explores instead of their labels
	UseExploresName bool
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Converter translates between LookML and Cube models.
type Converter struct {
	opts   Options
	logger *slog.Logger
}

// Result is the output of one conversion run. Forward runs fill Cube,
// reverse runs fill LookML.
type Result struct {
	RunID       string
	Cube        cube.Document
	LookML      lookml.Model
	Diagnostics core.Diagnostics
}

// New creates a converter.
func New(opts Options) *Converter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Converter{opts: opts, logger: logger}
}

// run holds the state of a single conversion.
type run struct {
	id        string
	logger    *slog.Logger
	diags     core.Diagnostics
	cubeIndex map[string]int
	// graphs holds the join graph of each explore, by explore position
	graphs []*joins.Graph
}

func (c *Converter) newRun(pipeline string) *run {
	id := uuid.NewString()
	return &run{
		id:     id,
		logger: c.logger.With("run_id", id, "pipeline", pipeline),
	}
}

func (r *run) result() *Result {
	r.logger.Info("conversion finished",
		"errors", r.diags.Count(core.SeverityError),
		"warnings", r.diags.Count(core.SeverityWarning))
	for _, d := range r.diags {
		r.logger.Debug("diagnostic", "severity", d.Severity, "code", d.Code, "entity", d.Entity, "message", d.Message)
	}
	return &Result{RunID: r.id, Diagnostics: r.diags}
}
