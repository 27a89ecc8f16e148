package compiler

import (
	"fmt"

	"github.com/juju/errors"
)

// ErrorKind classifies a compile-time failure per the taxonomy the driver
// reports on: a bad character or unterminated literal, a grammar mismatch,
// or a name that does not resolve / resolves twice in one scope.
type ErrorKind string

const (
	LexErrorKind      ErrorKind = "lex error"
	SyntaxErrorKind   ErrorKind = "syntax error"
	SemanticErrorKind ErrorKind = "semantic error"
)

// CompileError is a fatal error tied to the line of the token that raised it.
// Compilation of a file aborts at the first one; there is no recovery.
type CompileError struct {
	Kind   ErrorKind
	Line   int
	Reason string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Reason)
}

func newCompileError(kind ErrorKind, line int, format string, args ...interface{}) error {
	return errors.Trace(&CompileError{Kind: kind, Line: line, Reason: fmt.Sprintf(format, args...)})
}

// NewLexError reports a bad character, an unterminated literal, or an
// out-of-range integer constant.
func NewLexError(line int, format string, args ...interface{}) error {
	return newCompileError(LexErrorKind, line, format, args...)
}

// NewSyntaxError reports an unexpected token kind or lexeme at a grammar production.
func NewSyntaxError(line int, format string, args ...interface{}) error {
	return newCompileError(SyntaxErrorKind, line, format, args...)
}

// NewSemanticError reports an undeclared identifier, a redeclaration within
// one scope, or a receiverless call/`this` reference inside a function.
func NewSemanticError(line int, format string, args ...interface{}) error {
	return newCompileError(SemanticErrorKind, line, format, args...)
}
