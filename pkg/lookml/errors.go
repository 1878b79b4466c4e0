package lookml

import "fmt"

// ParseError represents a parsing error with position information.
type ParseError struct {
	File    string
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken        = "unexpected token %s, expected %s"
	ErrUnterminatedString     = "unterminated string literal"
	ErrUnterminatedExpression = "expression is missing its closing ;;"
)
