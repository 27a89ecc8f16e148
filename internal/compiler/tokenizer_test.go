package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []Token {
	t.Helper()
	tok, err := NewTokenizer(strings.NewReader(src))
	require.NoError(t, err)

	var tokens []Token
	for tok.Scan() {
		tokens = append(tokens, tok.Token())
	}
	require.NoError(t, tok.Err())
	return tokens
}

func TestTokenizer_KeywordsSymbolsAndIdentifiers(t *testing.T) {
	tokens := scanAll(t, `class Foo { field int x; }`)

	require.Len(t, tokens, 9)
	assert.Equal(t, Keyword, tokens[0].Type)
	assert.Equal(t, "class", tokens[0].Lexeme)
	assert.Equal(t, Identifier, tokens[1].Type)
	assert.Equal(t, "Foo", tokens[1].Lexeme)
	assert.Equal(t, Symbol, tokens[2].Type)
	assert.Equal(t, EOF, tokens[len(tokens)-1].Type)
}

func TestTokenizer_StripsLineAndBlockComments(t *testing.T) {
	tokens := scanAll(t, "// leading comment\nlet /* inline */ x = 1;")

	var lexemes []string
	for _, tok := range tokens {
		if tok.Type != EOF {
			lexemes = append(lexemes, tok.Lexeme)
		}
	}
	assert.Equal(t, []string{"let", "x", "=", "1", ";"}, lexemes)
}

func TestTokenizer_BlockCommentSpansNewlines(t *testing.T) {
	tokens := scanAll(t, "let /* one\ntwo\nthree */ x = 1;")
	assert.Equal(t, 3, tokens[1].Line) // x, after a two-newline comment
}

func TestTokenizer_StringConstant(t *testing.T) {
	tokens := scanAll(t, `"Hello, World!"`)
	require.Len(t, tokens, 2)
	assert.Equal(t, StringConstant, tokens[0].Type)
	assert.Equal(t, "Hello, World!", tokens[0].Lexeme)
}

func TestTokenizer_IntegerConstantInRange(t *testing.T) {
	tokens := scanAll(t, "32767")
	require.Len(t, tokens, 2)
	assert.Equal(t, IntegerConstant, tokens[0].Type)
	assert.Equal(t, "32767", tokens[0].Lexeme)
}

func TestTokenizer_IntegerConstantOutOfRangeIsLexError(t *testing.T) {
	tok, err := NewTokenizer(strings.NewReader("32768"))
	require.NoError(t, err)

	assert.False(t, tok.Scan())
	require.Error(t, tok.Err())
}

func TestTokenizer_UnterminatedStringIsLexError(t *testing.T) {
	tok, err := NewTokenizer(strings.NewReader(`"unterminated`))
	require.NoError(t, err)

	assert.False(t, tok.Scan())
	require.Error(t, tok.Err())
}

func TestTokenizer_StringMayNotSpanNewline(t *testing.T) {
	tok, err := NewTokenizer(strings.NewReader("\"broken\nstring\""))
	require.NoError(t, err)

	assert.False(t, tok.Scan())
	require.Error(t, tok.Err())
}

func TestTokenizer_UnterminatedBlockCommentIsLexError(t *testing.T) {
	tok, err := NewTokenizer(strings.NewReader("/* never closed"))
	require.NoError(t, err)

	assert.False(t, tok.Scan())
	require.Error(t, tok.Err())
}

func TestTokenizer_UnexpectedCharacterIsLexError(t *testing.T) {
	tok, err := NewTokenizer(strings.NewReader("let x = 1 @ 2;"))
	require.NoError(t, err)

	for tok.Scan() {
	}
	require.Error(t, tok.Err())
}

func TestTokenizer_LineNumbersTrackNewlines(t *testing.T) {
	tokens := scanAll(t, "let x\n= 1;")
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[2].Line) // "="
}

func TestTokenizer_EOFIsServedExactlyOnce(t *testing.T) {
	tok, err := NewTokenizer(strings.NewReader(""))
	require.NoError(t, err)

	require.True(t, tok.Scan())
	assert.Equal(t, EOF, tok.Token().Type)
	assert.False(t, tok.Scan())
	assert.NoError(t, tok.Err())
}
