package expression

import "strconv"

// Parser parses condition strings into Comparison values.
type Parser struct {
	lexer    *Lexer
	curToken Token
}

// NewParser creates a new Parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	return p
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.lexer.NextToken()
}

// Parse parses the condition and returns its tagged comparison form.
func (p *Parser) Parse() (*Comparison, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	var op Operator
	switch p.curToken.Type {
	case TokenEQ:
		op = OpEQ
	case TokenLT:
		op = OpLT
	case TokenGT:
		op = OpGT
	case TokenEOF:
		return nil, NewParseError(p.curToken.Pos, "comparison operator", "end of input")
	default:
		return nil, NewParseError(p.curToken.Pos, "comparison operator", p.curToken.Literal)
	}
	p.nextToken()

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	// The whole input must be one comparison.
	if p.curToken.Type != TokenEOF {
		return nil, NewParseError(p.curToken.Pos, "end of condition", p.curToken.Literal)
	}

	return &Comparison{Left: left, Operator: op, Right: right}, nil
}

// parseOperand parses a literal or a variable reference.
func (p *Parser) parseOperand() (Operand, error) {
	tok := p.curToken
	switch tok.Type {
	case TokenIdent:
		p.nextToken()
		return Operand{Variable: tok.Literal}, nil

	case TokenInt:
		val, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return Operand{}, NewParseError(tok.Pos, "integer", tok.Literal)
		}
		p.nextToken()
		return Operand{Literal: val}, nil

	case TokenFloat:
		val, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return Operand{}, NewParseError(tok.Pos, "float", tok.Literal)
		}
		p.nextToken()
		return Operand{Literal: val}, nil

	case TokenString:
		p.nextToken()
		return Operand{Literal: tok.Literal}, nil

	case TokenEOF:
		return Operand{}, NewParseError(tok.Pos, "operand", "end of input")

	default:
		return Operand{}, NewParseError(tok.Pos, "operand", tok.Literal)
	}
}

// ParseCondition is a convenience function to parse a condition string.
func ParseCondition(input string) (*Comparison, error) {
	return NewParser(input).Parse()
}
