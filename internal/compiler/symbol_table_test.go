package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTable_SubroutineScopeShadowsClassScope(t *testing.T) {
	table := NewSymbolTable()

	_, err := table.Define(1, "x", "int", FieldSymbol)
	require.NoError(t, err)
	_, err = table.Define(2, "count", "int", StaticSymbol)
	require.NoError(t, err)

	table.StartSubroutine()
	_, err = table.Define(3, "x", "int", ArgumentSymbol)
	require.NoError(t, err)

	symbol, ok := table.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, ArgumentSymbol, symbol.Kind)
	assert.Equal(t, MachineWord(0), symbol.Index)

	countSymbol, ok := table.Lookup("count")
	require.True(t, ok)
	assert.Equal(t, StaticSymbol, countSymbol.Kind)
}

func TestSymbolTable_IndicesAreDensePerKind(t *testing.T) {
	table := NewSymbolTable()
	a, err := table.Define(1, "a", "int", FieldSymbol)
	require.NoError(t, err)
	b, err := table.Define(2, "b", "int", FieldSymbol)
	require.NoError(t, err)
	c, err := table.Define(3, "c", "int", StaticSymbol)
	require.NoError(t, err)

	assert.Equal(t, MachineWord(0), a.Index)
	assert.Equal(t, MachineWord(1), b.Index)
	assert.Equal(t, MachineWord(0), c.Index)
	assert.Equal(t, MachineWord(2), table.Count(FieldSymbol))
	assert.Equal(t, MachineWord(1), table.Count(StaticSymbol))
}

func TestSymbolTable_RedeclarationInSameScopeIsError(t *testing.T) {
	table := NewSymbolTable()
	_, err := table.Define(1, "x", "int", FieldSymbol)
	require.NoError(t, err)

	_, err = table.Define(2, "x", "int", FieldSymbol)
	assert.Error(t, err)
}

func TestSymbolTable_SameNameAllowedAcrossClassAndSubroutineScope(t *testing.T) {
	table := NewSymbolTable()
	_, err := table.Define(1, "x", "int", FieldSymbol)
	require.NoError(t, err)

	table.StartSubroutine()
	_, err = table.Define(2, "x", "int", LocalSymbol)
	assert.NoError(t, err)
}

func TestSymbolTable_StartSubroutineClearsOnlySubroutineScope(t *testing.T) {
	table := NewSymbolTable()
	_, err := table.Define(1, "f", "int", FieldSymbol)
	require.NoError(t, err)

	table.StartSubroutine()
	_, err = table.Define(2, "a", "int", ArgumentSymbol)
	require.NoError(t, err)

	table.StartSubroutine()

	_, ok := table.Lookup("a")
	assert.False(t, ok)

	_, ok = table.Lookup("f")
	assert.True(t, ok)
	assert.Equal(t, MachineWord(0), table.Count(ArgumentSymbol))
}

func TestSymbolTable_LookupMissingNameIsNotFound(t *testing.T) {
	table := NewSymbolTable()
	_, ok := table.Lookup("nope")
	assert.False(t, ok)
}
