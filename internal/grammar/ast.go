package grammar

// RuleNode is the parse tree of one rule: lhs "==>" rhs ";".
type RuleNode struct {
	Source string
	Pos    Position
	LHS    ProductNode
	RHS    []ProductNode
}

// ProductNode is a comma-separated list of paths.
type ProductNode struct {
	Pos   Position
	Paths []PathNode
}

// PathNode is a chain of ids joined by "->".
type PathNode struct {
	Pos Position
	IDs []IdentNode
}

// IdentNode is TYPE_NAME with an optional integer label.
type IdentNode struct {
	Pos      Position
	Type     string
	Label    int
	HasLabel bool
}
