package compiler

import (
	"io"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

var keywords = map[string]bool{
	"class": true, "constructor": true, "function": true, "method": true,
	"field": true, "static": true, "var": true, "int": true, "char": true,
	"boolean": true, "void": true, "true": true, "false": true, "null": true,
	"this": true, "let": true, "do": true, "if": true, "else": true,
	"while": true, "return": true,
}

const symbolChars = `{}()[].,;+-*/&|<>=~`

// Tokenizer is a hand-written, single-cursor scanner over Jack source text.
// It reads the whole file up front, then walks it one byte at a time.
type Tokenizer struct {
	src   []byte
	pos   int
	line  int
	token Token
	err   error
	eofed bool
}

// NewTokenizer reads all of r and prepares a Tokenizer over its contents.
func NewTokenizer(r io.Reader) (*Tokenizer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Annotate(err, "reading source")
	}
	return &Tokenizer{src: data, line: 1}, nil
}

// Err returns the lexical error that stopped Scan, if any.
func (t *Tokenizer) Err() error {
	return t.err
}

// Token returns the token most recently produced by Scan.
func (t *Tokenizer) Token() Token {
	return t.token
}

// Scan advances to the next token and reports whether one was produced.
// It yields exactly one synthetic EOF token and then returns false forever;
// a lexical error also makes it return false, with Err() set.
func (t *Tokenizer) Scan() bool {
	if t.err != nil {
		return false
	}

	if err := t.skipSpaceAndComments(); err != nil {
		t.err = err
		return false
	}

	if t.pos >= len(t.src) {
		if t.eofed {
			return false
		}
		t.eofed = true
		t.token = Token{Type: EOF, Line: t.line}
		return true
	}

	line := t.line
	c := t.src[t.pos]

	switch {
	case c == '"':
		return t.scanString(line)
	case isDigit(c):
		return t.scanInt(line)
	case isIdentStart(c):
		return t.scanIdentOrKeyword(line)
	case strings.IndexByte(symbolChars, c) >= 0:
		t.pos++
		t.token = Token{Type: Symbol, Lexeme: string(c), Line: line}
		return true
	default:
		t.err = NewLexError(line, "unexpected character %q", c)
		return false
	}
}

func (t *Tokenizer) skipSpaceAndComments() error {
	for t.pos < len(t.src) {
		c := t.src[t.pos]
		switch {
		case c == '\n':
			t.line++
			t.pos++
		case c == ' ' || c == '\t' || c == '\r':
			t.pos++
		case c == '/' && t.pos+1 < len(t.src) && t.src[t.pos+1] == '/':
			t.pos += 2
			for t.pos < len(t.src) && t.src[t.pos] != '\n' {
				t.pos++
			}
		case c == '/' && t.pos+1 < len(t.src) && t.src[t.pos+1] == '*':
			t.pos += 2
			if err := t.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (t *Tokenizer) skipBlockComment() error {
	startLine := t.line
	for t.pos+1 < len(t.src) {
		if t.src[t.pos] == '\n' {
			t.line++
		}
		if t.src[t.pos] == '*' && t.src[t.pos+1] == '/' {
			t.pos += 2
			return nil
		}
		t.pos++
	}
	t.pos = len(t.src)
	return NewLexError(startLine, "unterminated block comment")
}

func (t *Tokenizer) scanString(line int) bool {
	t.pos++ // opening quote
	start := t.pos
	for t.pos < len(t.src) && t.src[t.pos] != '"' && t.src[t.pos] != '\n' {
		t.pos++
	}
	if t.pos >= len(t.src) || t.src[t.pos] != '"' {
		t.err = NewLexError(line, "unterminated string constant")
		return false
	}
	t.token = Token{Type: StringConstant, Lexeme: string(t.src[start:t.pos]), Line: line}
	t.pos++ // closing quote
	return true
}

func (t *Tokenizer) scanInt(line int) bool {
	start := t.pos
	for t.pos < len(t.src) && isDigit(t.src[t.pos]) {
		t.pos++
	}
	lexeme := string(t.src[start:t.pos])
	value, err := strconv.Atoi(lexeme)
	if err != nil || value < 0 || value > maxIntConstant {
		t.err = NewLexError(line, "integer constant %q out of range [0, %d]", lexeme, maxIntConstant)
		return false
	}
	t.token = Token{Type: IntegerConstant, Lexeme: lexeme, Line: line}
	return true
}

func (t *Tokenizer) scanIdentOrKeyword(line int) bool {
	start := t.pos
	t.pos++
	for t.pos < len(t.src) && isIdentPart(t.src[t.pos]) {
		t.pos++
	}
	lexeme := string(t.src[start:t.pos])
	tokenType := Identifier
	if keywords[lexeme] {
		tokenType = Keyword
	}
	t.token = Token{Type: tokenType, Lexeme: lexeme, Line: line}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
