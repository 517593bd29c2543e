package expression

// Operand is one side of a comparison: either a literal value or a variable
// reference resolved against shared data at evaluation time.
type Operand struct {
	// Literal holds a string, int64 or float64 when the operand was written
	// as a literal. Nil for variable references.
	Literal any
	// Variable is the shared-data key or dotted path when the operand is a
	// reference.
	Variable string
}

// IsVariable reports whether the operand resolves through shared data.
func (o Operand) IsVariable() bool {
	return o.Variable != ""
}

// Operator is one of the three supported comparison operators.
type Operator string

const (
	OpEQ Operator = "=="
	OpLT Operator = "<"
	OpGT Operator = ">"
)

// Comparison is the tagged form of a condition: left operand, operator,
// right operand.
type Comparison struct {
	Left     Operand
	Operator Operator
	Right    Operand
}
