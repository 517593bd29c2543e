// Package expression provides parsing and evaluation of step conditions.
//
// The grammar is deliberately small: one comparison of two operands with one
// of the operators ==, < or >. Operands are resolved against the run's shared
// data at evaluation time.
package expression

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals and identifiers
	TokenIdent  // variable name or bare word
	TokenInt    // integer literal
	TokenFloat  // float literal
	TokenString // quoted string literal

	// Operators
	TokenEQ // ==
	TokenLT // <
	TokenGT // >
)

// String returns the string representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenIdent:
		return "IDENT"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	case TokenString:
		return "STRING"
	case TokenEQ:
		return "=="
	case TokenLT:
		return "<"
	case TokenGT:
		return ">"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // Position in the input string
}
