package lookml

import "strings"

// Lexer tokenizes LookML input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	prev     Token // last emitted token
	exprNext bool  // next token is a raw expression
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	tok := l.next()
	if tok.Type == TOKEN_COLON && l.prev.Type == TOKEN_LITERAL && IsExpressionKey(l.prev.Literal) {
		l.exprNext = true
	}
	l.prev = tok
	return tok
}

func (l *Lexer) next() Token {
	if l.exprNext {
		l.exprNext = false
		return l.readExpression()
	}

	l.skipWhitespaceAndComments()
	pos := l.currentPos()

	var tok Token
	switch l.ch {
	case 0:
		return Token{Type: TOKEN_EOF, Pos: pos}
	case ':':
		tok = Token{Type: TOKEN_COLON, Literal: ":", Pos: pos}
	case ',':
		tok = Token{Type: TOKEN_COMMA, Literal: ",", Pos: pos}
	case '{':
		tok = Token{Type: TOKEN_LBRACE, Literal: "{", Pos: pos}
	case '}':
		tok = Token{Type: TOKEN_RBRACE, Literal: "}", Pos: pos}
	case '[':
		tok = Token{Type: TOKEN_LBRACKET, Literal: "[", Pos: pos}
	case ']':
		tok = Token{Type: TOKEN_RBRACKET, Literal: "]", Pos: pos}
	case '"':
		s, ok := l.readString()
		if !ok {
			return Token{Type: TOKEN_ILLEGAL, Literal: ErrUnterminatedString, Pos: pos}
		}
		return Token{Type: TOKEN_STRING, Literal: s, Pos: pos}
	default:
		if isLiteralChar(l.ch) {
			return Token{Type: TOKEN_LITERAL, Literal: l.readLiteral(), Pos: pos}
		}
		tok = Token{Type: TOKEN_ILLEGAL, Literal: string(l.ch), Pos: pos}
	}

	l.readChar()
	return tok
}

// skipWhitespaceAndComments skips whitespace and # line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

// readString reads a double-quoted string. Backslash escapes the next char.
func (l *Lexer) readString() (string, bool) {
	var sb strings.Builder
	l.readChar() // opening quote
	for l.ch != '"' {
		if l.ch == 0 {
			return sb.String(), false
		}
		if l.ch == '\\' && (l.peekChar() == '"' || l.peekChar() == '\\') {
			l.readChar()
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	l.readChar() // closing quote
	return sb.String(), true
}

// readLiteral reads an unquoted key or value.
func (l *Lexer) readLiteral() string {
	start := l.pos
	for isLiteralChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readExpression reads everything up to the next ";;" and trims it.
func (l *Lexer) readExpression() Token {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}
	pos := l.currentPos()
	start := l.pos
	for !(l.ch == ';' && l.peekChar() == ';') {
		if l.ch == 0 {
			return Token{Type: TOKEN_ILLEGAL, Literal: ErrUnterminatedExpression, Pos: pos}
		}
		l.readChar()
	}
	body := l.input[start:l.pos]
	l.readChar()
	l.readChar()
	return Token{Type: TOKEN_EXPR, Literal: trimExpression(body), Pos: pos}
}

// trimExpression strips surrounding blank space and the common indentation
// of multi-line bodies.
func trimExpression(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "\n") {
		return s
	}
	lines := strings.Split(s, "\n")
	indent := -1
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i := 1; i < len(lines); i++ {
		if len(lines[i]) >= indent && indent > 0 {
			lines[i] = lines[i][indent:]
		} else {
			lines[i] = strings.TrimLeft(lines[i], " \t")
		}
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}
	return strings.Join(lines, "\n")
}

func isLiteralChar(ch byte) bool {
	switch ch {
	case 0, ' ', '\t', '\n', '\r', ':', ',', '{', '}', '[', ']', '"', '#':
		return false
	}
	return true
}
