package lookml

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

//nolint:revive // TOKEN_* names follow the lexer convention used across the repo
const (
	TOKEN_EOF TokenType = iota
	TOKEN_ILLEGAL

	// TOKEN_LITERAL is an unquoted value or key: orders, yes, 10, detail*, +orders
	TOKEN_LITERAL
	// TOKEN_STRING is a double-quoted string with the quotes removed
	TOKEN_STRING
	// TOKEN_EXPR is the raw body of an expression value terminated by ;;
	TOKEN_EXPR

	TOKEN_COLON    // :
	TOKEN_COMMA    // ,
	TOKEN_LBRACE   // {
	TOKEN_RBRACE   // }
	TOKEN_LBRACKET // [
	TOKEN_RBRACKET // ]
)

var tokenNames = map[TokenType]string{
	TOKEN_EOF:      "EOF",
	TOKEN_ILLEGAL:  "ILLEGAL",
	TOKEN_LITERAL:  "LITERAL",
	TOKEN_STRING:   "STRING",
	TOKEN_EXPR:     "EXPR",
	TOKEN_COLON:    ":",
	TOKEN_COMMA:    ",",
	TOKEN_LBRACE:   "{",
	TOKEN_RBRACE:   "}",
	TOKEN_LBRACKET: "[",
	TOKEN_RBRACKET: "]",
}

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

// Token is a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position represents a location in the source.
type Position struct {
	Line   int
	Column int
	Offset int
}

// expressionKeys take a raw value terminated by ";;".
var expressionKeys = map[string]bool{
	"expression":               true,
	"expression_custom_filter": true,
	"html":                     true,
	"sql":                      true,
	"sql_always_having":        true,
	"sql_always_where":         true,
	"sql_distinct_key":         true,
	"sql_end":                  true,
	"sql_foreign_key":          true,
	"sql_latitude":             true,
	"sql_longitude":            true,
	"sql_on":                   true,
	"sql_preamble":             true,
	"sql_start":                true,
	"sql_step":                 true,
	"sql_table_name":           true,
	"sql_trigger_value":        true,
	"sql_where":                true,
}

// IsExpressionKey reports whether values of key are raw ";;"-terminated expressions.
func IsExpressionKey(key string) bool {
	return expressionKeys[key]
}
