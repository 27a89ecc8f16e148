package compiler

import "fmt"

// TokenScanner is the stream of tokens the parser consumes. Tokenizer
// implements it.
type TokenScanner interface {
	Token() Token
	Err() error
	Scan() bool
}

// SubroutineKind distinguishes the three subroutine declaration forms; it
// decides the constructor/method prologue and whether an implicit-self call
// or a bare `this` is legal in the body.
type SubroutineKind string

const (
	FunctionSubroutine    SubroutineKind = "function"
	MethodSubroutine      SubroutineKind = "method"
	ConstructorSubroutine SubroutineKind = "constructor"
)

var binaryOps = map[string]Operation{
	"+": AddOp, "-": SubOp, "*": MulOp, "/": DivOp,
	"&": AndOp, "|": OrOp, "<": LtOp, ">": GtOp, "=": EqOp,
}

// JackCompiler is a recursive-descent parser fused with a code generator: it
// emits VM instructions as it recognizes each grammar production, with no
// intermediate AST. One instance compiles exactly one class.
type JackCompiler struct {
	scanner    TokenScanner
	symbols    *SymbolTable
	writer     *VMWriter
	className  string
	kind       SubroutineKind
	labelCount uint64
	current    Token
}

// NewJackCompiler wraps scanner in a fresh compiler with empty symbol table
// and emission buffer.
func NewJackCompiler(scanner TokenScanner) *JackCompiler {
	return &JackCompiler{
		scanner: scanner,
		symbols: NewSymbolTable(),
		writer:  NewVMWriter(),
	}
}

// Compile tokenizes and translates the whole class, returning its emission
// buffer. On any error the buffer is discarded and the file is not written
// by the caller.
func (c *JackCompiler) Compile() (*VMWriter, error) {
	if err := c.advance(); err != nil {
		return nil, err
	}
	if err := c.compileClass(); err != nil {
		c.writer.Discard()
		return nil, err
	}
	return c.writer, nil
}

func (c *JackCompiler) newLabel(prefix string) string {
	label := fmt.Sprintf("%s_%d", prefix, c.labelCount)
	c.labelCount++
	return label
}

// advance consumes current and loads the next token. At EOF it is idempotent:
// once the scanner has served its synthetic EOF token, further calls leave
// current unchanged.
func (c *JackCompiler) advance() error {
	if !c.scanner.Scan() {
		return c.scanner.Err()
	}
	c.current = c.scanner.Token()
	return nil
}

// consume asserts current.Lexeme matches each of lexemes in turn, advancing
// past each match; called with no arguments it just advances unconditionally.
// A mismatch is a syntax error.
func (c *JackCompiler) consume(lexemes ...string) error {
	if len(lexemes) == 0 {
		return c.advance()
	}
	for _, lexeme := range lexemes {
		if !c.current.Is(lexeme) {
			return NewSyntaxError(c.current.Line, "expected %q, got %q", lexeme, c.current.Lexeme)
		}
		if err := c.advance(); err != nil {
			return err
		}
	}
	return nil
}

func parseIdentifier(tok Token) (string, error) {
	if tok.Type != Identifier {
		return "", NewSyntaxError(tok.Line, "expected identifier, got %q", tok.Lexeme)
	}
	return tok.Lexeme, nil
}

func parseType(tok Token) (string, error) {
	if tok.Is("int", "char", "boolean") {
		return tok.Lexeme, nil
	}
	return parseIdentifier(tok)
}

func (c *JackCompiler) variableAccess(line int, name string) (Segment, MachineWord, error) {
	symbol, ok := c.symbols.Lookup(name)
	if !ok {
		return "", 0, NewSemanticError(line, "undeclared identifier %q", name)
	}
	segment, ok := segmentForKind[symbol.Kind]
	if !ok {
		return "", 0, NewSemanticError(line, "identifier %q has no storage segment", name)
	}
	return segment, symbol.Index, nil
}

// Class := 'class' id '{' ClassVarDec* SubroutineDec* '}'
func (c *JackCompiler) compileClass() error {
	if err := c.consume("class"); err != nil {
		return err
	}

	name, err := parseIdentifier(c.current)
	if err != nil {
		return err
	}
	c.className = name
	if err := c.advance(); err != nil {
		return err
	}

	if err := c.consume("{"); err != nil {
		return err
	}

	for c.current.Type == Keyword && c.current.Is("static", "field") {
		if err := c.compileClassVarDec(); err != nil {
			return err
		}
	}
	for c.current.Type == Keyword && c.current.Is("constructor", "function", "method") {
		if err := c.compileSubroutineDec(); err != nil {
			return err
		}
	}

	if err := c.consume("}"); err != nil {
		return err
	}
	if c.current.Type != EOF {
		return NewSyntaxError(c.current.Line, "unexpected token %q after class body", c.current.Lexeme)
	}
	return nil
}

// ClassVarDec := ('static'|'field') Type id (',' id)* ';'
func (c *JackCompiler) compileClassVarDec() error {
	var kind SymbolKind
	switch {
	case c.current.Is("static"):
		kind = StaticSymbol
	case c.current.Is("field"):
		kind = FieldSymbol
	default:
		return NewSyntaxError(c.current.Line, "expected \"static\" or \"field\", got %q", c.current.Lexeme)
	}
	if err := c.advance(); err != nil {
		return err
	}
	_, err := c.compileVarSequence(kind)
	return err
}

// compileVarSequence parses "Type id (',' id)* ';'" and registers each name
// in the symbol table under kind, returning how many were declared. Shared
// by ClassVarDec, ParameterList's sibling VarDec, and subroutine-local VarDec.
func (c *JackCompiler) compileVarSequence(kind SymbolKind) (MachineWord, error) {
	declType, err := parseType(c.current)
	if err != nil {
		return 0, err
	}
	if err := c.advance(); err != nil {
		return 0, err
	}

	var count MachineWord
	for {
		nameTok := c.current
		name, err := parseIdentifier(nameTok)
		if err != nil {
			return 0, err
		}
		if err := c.advance(); err != nil {
			return 0, err
		}
		if _, err := c.symbols.Define(nameTok.Line, name, declType, kind); err != nil {
			return 0, err
		}
		count++

		if !c.current.Is(",") {
			break
		}
		if err := c.consume(","); err != nil {
			return 0, err
		}
	}
	return count, c.consume(";")
}

// SubroutineDec := ('constructor'|'function'|'method') ('void'|Type) id
//
//	'(' ParameterList ')' SubroutineBody
func (c *JackCompiler) compileSubroutineDec() error {
	c.symbols.StartSubroutine()

	var kind SubroutineKind
	switch {
	case c.current.Is("constructor"):
		kind = ConstructorSubroutine
	case c.current.Is("function"):
		kind = FunctionSubroutine
	case c.current.Is("method"):
		kind = MethodSubroutine
	default:
		return NewSyntaxError(c.current.Line, "expected a subroutine declaration, got %q", c.current.Lexeme)
	}
	declLine := c.current.Line
	if err := c.advance(); err != nil {
		return err
	}

	if kind == MethodSubroutine {
		if _, err := c.symbols.Define(declLine, "this", c.className, ArgumentSymbol); err != nil {
			return err
		}
	}

	if !c.current.Is("void") {
		if _, err := parseType(c.current); err != nil {
			return err
		}
	}
	if err := c.advance(); err != nil {
		return err
	}

	nameTok := c.current
	name, err := parseIdentifier(nameTok)
	if err != nil {
		return err
	}
	if err := c.advance(); err != nil {
		return err
	}

	if err := c.consume("("); err != nil {
		return err
	}
	if !c.current.Is(")") {
		if err := c.compileParameterList(); err != nil {
			return err
		}
	}
	if err := c.consume(")"); err != nil {
		return err
	}

	return c.compileSubroutineBody(name, kind)
}

// ParameterList := (Type id (',' Type id)*)?
func (c *JackCompiler) compileParameterList() error {
	for {
		declType, err := parseType(c.current)
		if err != nil {
			return err
		}
		if err := c.advance(); err != nil {
			return err
		}

		nameTok := c.current
		name, err := parseIdentifier(nameTok)
		if err != nil {
			return err
		}
		if err := c.advance(); err != nil {
			return err
		}

		if _, err := c.symbols.Define(nameTok.Line, name, declType, ArgumentSymbol); err != nil {
			return err
		}

		if !c.current.Is(",") {
			return nil
		}
		if err := c.consume(","); err != nil {
			return err
		}
	}
}

// SubroutineBody := '{' VarDec* Statements '}'
//
// The function header is only emitted once every local has been counted, so
// its local count is exact. The prologue (constructor allocation, method
// `this` binding) follows immediately, before the body's own statements.
func (c *JackCompiler) compileSubroutineBody(name string, kind SubroutineKind) error {
	previousKind := c.kind
	c.kind = kind
	defer func() { c.kind = previousKind }()

	if err := c.consume("{"); err != nil {
		return err
	}

	var nlocals MachineWord
	for c.current.Is("var") {
		if err := c.consume("var"); err != nil {
			return err
		}
		count, err := c.compileVarSequence(LocalSymbol)
		if err != nil {
			return err
		}
		nlocals += count
	}

	c.writer.WriteFunction(c.className+"."+name, nlocals)

	switch kind {
	case ConstructorSubroutine:
		c.writer.WritePush(ConstantSegment, c.symbols.Count(FieldSymbol))
		c.writer.WriteCall("Memory.alloc", 1)
		c.writer.WritePop(PointerSegment, 0)
	case MethodSubroutine:
		c.writer.WritePush(ArgumentSegment, 0)
		c.writer.WritePop(PointerSegment, 0)
	}

	if err := c.compileStatements(); err != nil {
		return err
	}
	return c.consume("}")
}

// Statements := Statement*
func (c *JackCompiler) compileStatements() error {
	for !c.current.Is("}") {
		var err error
		switch {
		case c.current.Is("let"):
			err = c.compileLet()
		case c.current.Is("if"):
			err = c.compileIf()
		case c.current.Is("while"):
			err = c.compileWhile()
		case c.current.Is("do"):
			err = c.compileDo()
		case c.current.Is("return"):
			err = c.compileReturn()
		default:
			return NewSyntaxError(c.current.Line, "unexpected token %q, expected a statement", c.current.Lexeme)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// pushArrayElementAddress emits "push base; compile index; add", leaving the
// element's address on the stack. Shared by the array form of `let` and by
// an array reference appearing as a term.
func (c *JackCompiler) pushArrayElementAddress(line int, name string) error {
	segment, index, err := c.variableAccess(line, name)
	if err != nil {
		return err
	}
	c.writer.WritePush(segment, index)
	if err := c.compileExpression(); err != nil {
		return err
	}
	c.writer.WriteArithmetic(AddOp)
	return nil
}

// Let := 'let' id ('[' Expr ']')? '=' Expr ';'
//
// The array form spills the RHS through temp 0 because evaluating it may
// itself touch `pointer 1` via a nested array reference.
func (c *JackCompiler) compileLet() error {
	if err := c.consume("let"); err != nil {
		return err
	}

	nameTok := c.current
	name, err := parseIdentifier(nameTok)
	if err != nil {
		return err
	}
	if err := c.advance(); err != nil {
		return err
	}

	isArray := c.current.Is("[")
	if isArray {
		if err := c.consume("["); err != nil {
			return err
		}
		if err := c.pushArrayElementAddress(nameTok.Line, name); err != nil {
			return err
		}
		if err := c.consume("]"); err != nil {
			return err
		}
	}

	if err := c.consume("="); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.consume(";"); err != nil {
		return err
	}

	if isArray {
		c.writer.WritePop(TempSegment, 0)
		c.writer.WritePop(PointerSegment, 1)
		c.writer.WritePush(TempSegment, 0)
		c.writer.WritePop(ThatSegment, 0)
		return nil
	}

	segment, index, err := c.variableAccess(nameTok.Line, name)
	if err != nil {
		return err
	}
	c.writer.WritePop(segment, index)
	return nil
}

// If := 'if' '(' Expr ')' '{' Statements '}' ('else' '{' Statements '}')?
//
// Two labels are allocated unconditionally, whether or not an else branch
// follows.
func (c *JackCompiler) compileIf() error {
	if err := c.consume("if", "("); err != nil {
		return err
	}

	falseLabel := c.newLabel("IF_FALSE")
	endLabel := c.newLabel("IF_END")

	if err := c.compileExpression(); err != nil {
		return err
	}
	c.writer.WriteArithmetic(NotOp)
	c.writer.WriteIf(falseLabel)

	if err := c.consume(")", "{"); err != nil {
		return err
	}
	if err := c.compileStatements(); err != nil {
		return err
	}
	if err := c.consume("}"); err != nil {
		return err
	}

	c.writer.WriteGoto(endLabel)
	c.writer.WriteLabel(falseLabel)

	if c.current.Is("else") {
		if err := c.consume("else", "{"); err != nil {
			return err
		}
		if err := c.compileStatements(); err != nil {
			return err
		}
		if err := c.consume("}"); err != nil {
			return err
		}
	}

	c.writer.WriteLabel(endLabel)
	return nil
}

// While := 'while' '(' Expr ')' '{' Statements '}'
func (c *JackCompiler) compileWhile() error {
	if err := c.consume("while", "("); err != nil {
		return err
	}

	loopLabel := c.newLabel("WHILE_LOOP")
	endLabel := c.newLabel("WHILE_END")

	c.writer.WriteLabel(loopLabel)
	if err := c.compileExpression(); err != nil {
		return err
	}
	c.writer.WriteArithmetic(NotOp)
	c.writer.WriteIf(endLabel)

	if err := c.consume(")", "{"); err != nil {
		return err
	}
	if err := c.compileStatements(); err != nil {
		return err
	}
	if err := c.consume("}"); err != nil {
		return err
	}

	c.writer.WriteGoto(loopLabel)
	c.writer.WriteLabel(endLabel)
	return nil
}

// Do := 'do' SubroutineCall ';'
func (c *JackCompiler) compileDo() error {
	if err := c.consume("do"); err != nil {
		return err
	}
	if err := c.compileSubroutineCall(""); err != nil {
		return err
	}
	c.writer.WritePop(TempSegment, 0)
	return c.consume(";")
}

// Return := 'return' Expr? ';'
func (c *JackCompiler) compileReturn() error {
	if err := c.consume("return"); err != nil {
		return err
	}

	if c.current.Is(";") {
		c.writer.WritePush(ConstantSegment, 0)
	} else {
		if err := c.compileExpression(); err != nil {
			return err
		}
	}
	c.writer.WriteReturn()
	return c.consume(";")
}

// Expr := Term (Op Term)*
//
// Strictly left-associative, all operators at the same precedence: no
// precedence climbing.
func (c *JackCompiler) compileExpression() error {
	if err := c.compileTerm(); err != nil {
		return err
	}
	for c.current.Type == Symbol {
		op, ok := binaryOps[c.current.Lexeme]
		if !ok {
			break
		}
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.compileTerm(); err != nil {
			return err
		}
		c.writer.WriteArithmetic(op)
	}
	return nil
}

// ExprList := (Expr (',' Expr)*)?
func (c *JackCompiler) compileExpressionList() (MachineWord, error) {
	if c.current.Is(")") {
		return 0, nil
	}

	var count MachineWord
	if err := c.compileExpression(); err != nil {
		return 0, err
	}
	count++

	for c.current.Is(",") {
		if err := c.consume(","); err != nil {
			return 0, err
		}
		if err := c.compileExpression(); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// Term := intConst | stringConst | KeywordConst | id | id '[' Expr ']'
//
//	| SubroutineCall | '(' Expr ')' | UnaryOp Term
func (c *JackCompiler) compileTerm() error {
	tok := c.current
	switch {
	case tok.Type == IntegerConstant:
		value, err := tok.AsInt()
		if err != nil {
			return err
		}
		c.writer.WritePush(ConstantSegment, value)
		return c.advance()

	case tok.Type == StringConstant:
		c.writer.WriteStringConstant(tok.Lexeme)
		return c.advance()

	case tok.Type == Keyword:
		return c.compileKeywordConstant(tok)

	case tok.Is("("):
		if err := c.consume("("); err != nil {
			return err
		}
		if err := c.compileExpression(); err != nil {
			return err
		}
		return c.consume(")")

	case tok.Is("-", "~"):
		op := NegOp
		if tok.Is("~") {
			op = NotOp
		}
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.compileTerm(); err != nil {
			return err
		}
		c.writer.WriteArithmetic(op)
		return nil

	case tok.Type == Identifier:
		return c.compileIdentifierTerm()

	default:
		return NewSyntaxError(tok.Line, "unexpected token %q in expression", tok.Lexeme)
	}
}

func (c *JackCompiler) compileKeywordConstant(tok Token) error {
	switch tok.Lexeme {
	case "true":
		c.writer.WritePush(ConstantSegment, 0)
		c.writer.WriteArithmetic(NotOp)
	case "false", "null":
		c.writer.WritePush(ConstantSegment, 0)
	case "this":
		if c.kind == FunctionSubroutine {
			return NewSemanticError(tok.Line, "\"this\" has no bound receiver inside a function")
		}
		c.writer.WritePush(PointerSegment, 0)
	default:
		return NewSyntaxError(tok.Line, "unexpected keyword %q in expression", tok.Lexeme)
	}
	return c.advance()
}

// compileIdentifierTerm resolves the one-token lookahead needed at an
// identifier in term position: the token after the identifier, inspected
// without commitment, decides between an array reference, a subroutine
// call, and a plain variable reference.
func (c *JackCompiler) compileIdentifierTerm() error {
	nameTok := c.current
	if err := c.advance(); err != nil {
		return err
	}

	switch {
	case c.current.Is("["):
		if err := c.consume("["); err != nil {
			return err
		}
		if err := c.pushArrayElementAddress(nameTok.Line, nameTok.Lexeme); err != nil {
			return err
		}
		if err := c.consume("]"); err != nil {
			return err
		}
		c.writer.WritePop(PointerSegment, 1)
		c.writer.WritePush(ThatSegment, 0)
		return nil

	case c.current.Is("("), c.current.Is("."):
		return c.compileSubroutineCall(nameTok.Lexeme)

	default:
		segment, index, err := c.variableAccess(nameTok.Line, nameTok.Lexeme)
		if err != nil {
			return err
		}
		c.writer.WritePush(segment, index)
		return nil
	}
}

// SubroutineCall := id '(' ExprList ')' | id '.' id '(' ExprList ')'
//
// name == "" means the call's identifier has not been consumed yet (the
// `do` statement's entry point); otherwise it was already consumed by
// compileIdentifierTerm's lookahead.
func (c *JackCompiler) compileSubroutineCall(name string) error {
	line := c.current.Line
	if name == "" {
		tok := c.current
		var err error
		name, err = parseIdentifier(tok)
		if err != nil {
			return err
		}
		line = tok.Line
		if err := c.advance(); err != nil {
			return err
		}
	}

	switch {
	case c.current.Is("."):
		return c.compileQualifiedCall(name)
	case c.current.Is("("):
		return c.compileSelfCall(name, line)
	default:
		return NewSyntaxError(c.current.Line, "expected %q or %q after %q, got %q", "(", ".", name, c.current.Lexeme)
	}
}

// compileQualifiedCall handles `name.id(args)`: a method call on an
// instance if name resolves in the symbol table (the instance is pushed as
// argument 0), otherwise a static call on a class named name.
func (c *JackCompiler) compileQualifiedCall(name string) error {
	if err := c.consume("."); err != nil {
		return err
	}

	methodTok := c.current
	methodName, err := parseIdentifier(methodTok)
	if err != nil {
		return err
	}
	if err := c.advance(); err != nil {
		return err
	}

	var nargs MachineWord
	callee := name
	if symbol, ok := c.symbols.Lookup(name); ok {
		c.writer.WritePush(segmentForKind[symbol.Kind], symbol.Index)
		nargs++
		callee = symbol.Type
	}
	callee = callee + "." + methodName

	if err := c.consume("("); err != nil {
		return err
	}
	argc, err := c.compileExpressionList()
	if err != nil {
		return err
	}
	if err := c.consume(")"); err != nil {
		return err
	}

	c.writer.WriteCall(callee, nargs+argc)
	return nil
}

// compileSelfCall handles `name(args)`: a call on the implicit receiver,
// legal only inside a method or constructor.
func (c *JackCompiler) compileSelfCall(name string, line int) error {
	if c.kind == FunctionSubroutine {
		return NewSemanticError(line, "call to %q has no bound receiver inside a function", name)
	}

	c.writer.WritePush(PointerSegment, 0)
	if err := c.consume("("); err != nil {
		return err
	}
	argc, err := c.compileExpressionList()
	if err != nil {
		return err
	}
	if err := c.consume(")"); err != nil {
		return err
	}

	c.writer.WriteCall(c.className+"."+name, argc+1)
	return nil
}
