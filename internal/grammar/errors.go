package grammar

import (
	"errors"
	"fmt"
)

// ErrGrammar matches every error produced while compiling rule text:
// errors.Is(err, ErrGrammar) holds for both *SyntaxError and *SemanticError.
var ErrGrammar = errors.New("grammar error")

// Position locates a token in rule source. Line and Col are 1-based.
type Position struct {
	Offset int
	Line   int
	Col    int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// SyntaxError reports rule text that does not match the rule grammar.
type SyntaxError struct {
	Source string
	Pos    Position
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s (in %q)", e.Pos, e.Msg, e.Source)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrGrammar }

// SemanticError reports a well-formed rule that cannot be lowered.
type SemanticError struct {
	Source string
	Pos    Position
	Msg    string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at %s: %s (in %q)", e.Pos, e.Msg, e.Source)
}

func (e *SemanticError) Is(target error) bool { return target == ErrGrammar }
