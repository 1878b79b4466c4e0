// Package lookml reads and writes LookML.
//
// Parsing happens in two steps. Parse turns text into a generic tree of
// key/value nodes, which is where constants are substituted. Decode then maps
// the tree onto typed views and explores.
//
// # Grammar
//
//	file   → pair*
//	pair   → LITERAL ':' value
//	value  → STRING | EXPR | list | LITERAL ['{' pair* '}'] | '{' pair* '}'
//	list   → '[' [item (',' item)* [',']] ']'
//	item   → STRING | LITERAL [':' (STRING | LITERAL)]
package lookml

import "fmt"

// NodeKind tells which value field of a Node is populated.
type NodeKind int

const (
	// NodeScalar holds Value.
	NodeScalar NodeKind = iota
	// NodeList holds Items.
	NodeList
	// NodeBlock holds Children and, for named blocks, Name.
	NodeBlock
)

// Node is one key/value pair of a LookML document.
type Node struct {
	Key      string
	Name     string
	Kind     NodeKind
	Value    string
	Items    []string
	Children []*Node
	Pos      Position
}

// File is a parsed LookML document.
type File struct {
	Path  string
	Nodes []*Node
}

// Parser parses LookML into a File.
type Parser struct {
	lexer  *Lexer
	token  Token // current token
	peek   Token // lookahead token
	errors []error
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses LookML text.
func Parse(input string) (*File, error) {
	p := NewParser(input)
	nodes := p.parsePairs(TOKEN_EOF)
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return &File{Nodes: nodes}, nil
}

// ---------- Token Helpers ----------

func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.unexpected(t.String())
	return false
}

func (p *Parser) unexpected(want string) {
	if p.token.Type == TOKEN_ILLEGAL {
		p.addError(p.token.Literal)
		return
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, want))
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

// ---------- Grammar ----------

// parsePairs parses pairs until the end token. It stops at the first error.
func (p *Parser) parsePairs(end TokenType) []*Node {
	var nodes []*Node
	for !p.check(end) && !p.check(TOKEN_EOF) && len(p.errors) == 0 {
		node := p.parsePair()
		if node == nil {
			break
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func (p *Parser) parsePair() *Node {
	if !p.check(TOKEN_LITERAL) {
		p.unexpected("key")
		return nil
	}
	node := &Node{Key: p.token.Literal, Pos: p.token.Pos}
	p.nextToken()
	if !p.expect(TOKEN_COLON) {
		return nil
	}

	switch p.token.Type {
	case TOKEN_STRING, TOKEN_EXPR:
		node.Value = p.token.Literal
		p.nextToken()
	case TOKEN_LBRACKET:
		node.Kind = NodeList
		node.Items = p.parseList()
	case TOKEN_LBRACE:
		node.Kind = NodeBlock
		node.Children = p.parseBlock()
	case TOKEN_LITERAL:
		if p.peek.Type == TOKEN_LBRACE {
			node.Kind = NodeBlock
			node.Name = p.token.Literal
			p.nextToken()
			node.Children = p.parseBlock()
		} else {
			node.Value = p.token.Literal
			p.nextToken()
		}
	default:
		p.unexpected("value")
		return nil
	}
	return node
}

func (p *Parser) parseBlock() []*Node {
	p.expect(TOKEN_LBRACE)
	children := p.parsePairs(TOKEN_RBRACE)
	if len(p.errors) == 0 {
		p.expect(TOKEN_RBRACE)
	}
	return children
}

func (p *Parser) parseList() []string {
	p.expect(TOKEN_LBRACKET)
	items := []string{}
	for !p.check(TOKEN_RBRACKET) {
		if !p.check(TOKEN_STRING) && !p.check(TOKEN_LITERAL) {
			p.unexpected("list item")
			return items
		}
		item := p.token.Literal
		p.nextToken()

		// filters: [orders.status: "complete"]
		if p.check(TOKEN_COLON) {
			p.nextToken()
			if !p.check(TOKEN_STRING) && !p.check(TOKEN_LITERAL) {
				p.unexpected("list item value")
				return items
			}
			item += ": " + p.token.Literal
			p.nextToken()
		}
		items = append(items, item)

		if !p.check(TOKEN_COMMA) {
			break
		}
		p.nextToken()
	}
	p.expect(TOKEN_RBRACKET)
	return items
}

// ---------- Tree Helpers ----------

// Get returns the first child with the given key.
func (n *Node) Get(key string) *Node {
	for _, c := range n.Children {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// All returns every child with the given key, in order.
func (n *Node) All(key string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Key == key {
			out = append(out, c)
		}
	}
	return out
}

// String returns the scalar value of the named child, or "".
func (n *Node) String(key string) string {
	if c := n.Get(key); c != nil && c.Kind == NodeScalar {
		return c.Value
	}
	return ""
}

// Bool reports whether the named child is "yes" (or "true").
func (n *Node) Bool(key string) bool {
	v := n.String(key)
	return v == "yes" || v == "true"
}

// OptBool is Bool for an optional key: it returns nil when the key is absent.
func (n *Node) OptBool(key string) *bool {
	if n.Get(key) == nil {
		return nil
	}
	b := n.Bool(key)
	return &b
}

// List returns the items of the named list child, or nil.
func (n *Node) List(key string) []string {
	if c := n.Get(key); c != nil && c.Kind == NodeList {
		return c.Items
	}
	return nil
}

// Walk calls fn for n and every descendant, depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Walk calls fn for every node in the file, depth first.
func (f *File) Walk(fn func(*Node)) {
	for _, n := range f.Nodes {
		n.Walk(fn)
	}
}
