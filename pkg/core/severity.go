package core

import (
	"fmt"
	"strings"
)

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a conversion diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError indicates an item was dropped from the output.
	SeverityError Severity = iota
	// SeverityWarning indicates the output was produced in a degraded form.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// =============================================================================
// Diagnostic
// =============================================================================

// Diagnostic codes, one per recoverable error class.
const (
	CodeUnsupportedType = "unsupported-type"
	CodeMalformedEdge   = "malformed-edge"
	CodeUnreachable     = "unreachable"
	CodeUnknownParent   = "unknown-parent"
	CodeInheritCycle    = "inherit-cycle"
	CodeJoinCycle       = "join-cycle"
	CodeTooFewTiers     = "too-few-tiers"
	CodeInvalidTier     = "invalid-tier"
	CodeUndefinedSet    = "undefined-set"
	CodeMissingSource   = "missing-source"
	CodeUnknownEntity   = "unknown-entity"
	CodeHeuristicAnchor = "heuristic-anchor"
	CodeSkippedMember   = "skipped-member"
	CodeDuplicateName   = "duplicate-name"
)

// Diagnostic is a recovered problem reported alongside a partial result.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	// Entity names the view, cube or explore the diagnostic relates to
	Entity  string `json:"entity,omitempty"`
	Message string `json:"message"`
	// Err is the typed error behind the diagnostic, if any
	Err error `json:"-"`
}

// String formats the diagnostic for logs and plain-text output.
func (d Diagnostic) String() string {
	if d.Entity != "" {
		return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code, d.Entity, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
}

// Diagnostics is an ordered list of diagnostics collected during one run.
type Diagnostics []Diagnostic

// Add appends a diagnostic built from a typed error.
func (ds *Diagnostics) Add(sev Severity, code, entity string, err error) {
	*ds = append(*ds, Diagnostic{
		Severity: sev,
		Code:     code,
		Entity:   entity,
		Message:  err.Error(),
		Err:      err,
	})
}

// Warn appends a warning diagnostic with a formatted message.
func (ds *Diagnostics) Warn(code, entity, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Entity:   entity,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Merge appends all diagnostics from other.
func (ds *Diagnostics) Merge(other Diagnostics) {
	*ds = append(*ds, other...)
}

// Count returns the number of diagnostics at the given severity.
func (ds Diagnostics) Count(sev Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// AtLeast returns the number of diagnostics at sev or more severe.
func (ds Diagnostics) AtLeast(sev Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity <= sev {
			n++
		}
	}
	return n
}

// HasCode reports whether any diagnostic carries the given code.
func (ds Diagnostics) HasCode(code string) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}
