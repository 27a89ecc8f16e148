package compiler

// SymbolTable tracks identifier bindings across two scopes: class-wide
// (Static, Field) and subroutine-local (Argument, Local). Lookup favors the
// subroutine scope, so a local shadows a field or static of the same name.
type SymbolTable struct {
	class      map[string]Symbol
	subroutine map[string]Symbol
	classCount map[SymbolKind]MachineWord
	subCount   map[SymbolKind]MachineWord
}

// NewSymbolTable returns an empty table with both scopes cleared.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		class:      make(map[string]Symbol),
		subroutine: make(map[string]Symbol),
		classCount: make(map[SymbolKind]MachineWord),
		subCount:   make(map[SymbolKind]MachineWord),
	}
}

// StartSubroutine clears the subroutine scope and zeros its counters. The
// class scope and its counters are untouched.
func (t *SymbolTable) StartSubroutine() {
	t.subroutine = make(map[string]Symbol)
	t.subCount = make(map[SymbolKind]MachineWord)
}

func (t *SymbolTable) scopeFor(kind SymbolKind) (map[string]Symbol, map[SymbolKind]MachineWord) {
	switch kind {
	case StaticSymbol, FieldSymbol:
		return t.class, t.classCount
	default:
		return t.subroutine, t.subCount
	}
}

// Define inserts a new Symbol with the current counter value for kind as its
// index, then advances that counter. Re-declaring a name already bound in
// the target scope is a semantic error.
func (t *SymbolTable) Define(line int, name, declaredType string, kind SymbolKind) (Symbol, error) {
	table, counts := t.scopeFor(kind)
	if _, exists := table[name]; exists {
		return Symbol{}, NewSemanticError(line, "redeclaration of %q in this scope", name)
	}

	index := counts[kind]
	symbol := Symbol{Name: name, Type: declaredType, Kind: kind, Index: index}
	table[name] = symbol
	counts[kind] = index + 1
	return symbol, nil
}

// Lookup returns the subroutine-scope binding for name if one exists,
// otherwise the class-scope binding, otherwise false.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	if symbol, ok := t.subroutine[name]; ok {
		return symbol, true
	}
	if symbol, ok := t.class[name]; ok {
		return symbol, true
	}
	return Symbol{}, false
}

// Count returns the number of symbols of kind declared so far in its scope.
func (t *SymbolTable) Count(kind SymbolKind) MachineWord {
	_, counts := t.scopeFor(kind)
	return counts[kind]
}
