package compiler

import (
	"fmt"
	"io"
	"strings"
)

// Segment names a VM memory segment an instruction can push/pop against.
type Segment string

const (
	ConstantSegment Segment = "constant"
	ArgumentSegment Segment = "argument"
	LocalSegment    Segment = "local"
	StaticSegment   Segment = "static"
	ThisSegment     Segment = "this"
	ThatSegment     Segment = "that"
	PointerSegment  Segment = "pointer"
	TempSegment     Segment = "temp"
)

// segmentForKind maps a symbol's storage kind to the VM segment that holds it.
var segmentForKind = map[SymbolKind]Segment{
	StaticSymbol:   StaticSegment,
	FieldSymbol:    ThisSegment,
	ArgumentSymbol: ArgumentSegment,
	LocalSymbol:    LocalSegment,
}

// Operation is one of the VM's arithmetic/logical instructions. Mul and Div
// have no direct VM opcode; WriteArithmetic lowers them to runtime calls.
type Operation string

const (
	AddOp Operation = "add"
	SubOp Operation = "sub"
	NegOp Operation = "neg"
	EqOp  Operation = "eq"
	GtOp  Operation = "gt"
	LtOp  Operation = "lt"
	AndOp Operation = "and"
	OrOp  Operation = "or"
	NotOp Operation = "not"
	MulOp Operation = "mul"
	DivOp Operation = "div"
)

// VMWriter buffers the VM instructions emitted while compiling one class.
// Nothing reaches the underlying file until Flush is called; Discard drops
// the buffer entirely, which the parser uses when compilation aborts.
type VMWriter struct {
	lines []string
}

// NewVMWriter returns an empty emission buffer.
func NewVMWriter() *VMWriter {
	return &VMWriter{}
}

func (w *VMWriter) emit(format string, args ...interface{}) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func (w *VMWriter) WritePush(segment Segment, index MachineWord) {
	w.emit("push %s %d", segment, index)
}

func (w *VMWriter) WritePop(segment Segment, index MachineWord) {
	w.emit("pop %s %d", segment, index)
}

// WriteArithmetic emits the instruction for op, routing multiplication and
// division through the runtime Math library since the VM has no opcode for
// either.
func (w *VMWriter) WriteArithmetic(op Operation) {
	switch op {
	case MulOp:
		w.WriteCall("Math.multiply", 2)
	case DivOp:
		w.WriteCall("Math.divide", 2)
	default:
		w.emit(string(op))
	}
}

// WriteStringConstant emits the push/call sequence that builds a String
// object for a literal: String.new with the length, then one
// String.appendChar per character. Each appendChar returns the same handle,
// so exactly one value is left on the stack throughout.
func (w *VMWriter) WriteStringConstant(s string) {
	w.WritePush(ConstantSegment, MachineWord(len(s)))
	w.WriteCall("String.new", 1)
	for _, r := range s {
		w.WritePush(ConstantSegment, MachineWord(r))
		w.WriteCall("String.appendChar", 2)
	}
}

func (w *VMWriter) WriteLabel(label string) { w.emit("label %s", label) }
func (w *VMWriter) WriteGoto(label string)  { w.emit("goto %s", label) }
func (w *VMWriter) WriteIf(label string)    { w.emit("if-goto %s", label) }

func (w *VMWriter) WriteCall(name string, nargs MachineWord) {
	w.emit("call %s %d", name, nargs)
}

func (w *VMWriter) WriteFunction(name string, nlocals MachineWord) {
	w.emit("function %s %d", name, nlocals)
}

func (w *VMWriter) WriteReturn() { w.emit("return") }

// Flush joins the buffered instructions with a single LF between each and
// writes them to out. It is a no-op on an empty buffer.
func (w *VMWriter) Flush(out io.Writer) error {
	_, err := io.WriteString(out, strings.Join(w.lines, "\n"))
	return err
}

// Discard drops the buffered instructions, used when compilation of the
// class aborts partway through.
func (w *VMWriter) Discard() {
	w.lines = nil
}
