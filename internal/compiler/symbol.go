package compiler

// SymbolKind is the storage class of an identifier binding.
type SymbolKind string

const (
	InvalidSymbol  SymbolKind = ""
	StaticSymbol   SymbolKind = "static"
	FieldSymbol    SymbolKind = "field"
	ArgumentSymbol SymbolKind = "argument"
	LocalSymbol    SymbolKind = "local"
)

// Symbol is one identifier binding: its declared type, its storage kind,
// and its 0-based slot within that kind in its scope.
type Symbol struct {
	Name  string
	Type  string
	Kind  SymbolKind
	Index MachineWord
}
