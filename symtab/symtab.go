// Package symtab is a flat, level-tagged stack of declared names plus a
// parallel set of "tentative" names added for identifiers used before
// their declaration is seen. It performs no semantic checking itself;
// the parser consults Find/FindTentative and decides what each result
// means.
package symtab

import (
	"fmt"
	"io"
)

// Kind is the declaration kind a Symbol was entered under.
type Kind int

const (
	Const Kind = iota
	Var
	Param
	Func
)

func (k Kind) String() string {
	switch k {
	case Const:
		return "CONST"
	case Var:
		return "VAR"
	case Param:
		return "PAR"
	case Func:
		return "FUNC"
	default:
		return "?"
	}
}

// Symbol is one entered name.
type Symbol struct {
	Name  string
	Kind  Kind
	Level int32
	Arity int32 // meaningful only when Kind == Func; -1 otherwise
}

type tentative struct {
	name  string
	level int32
}

// Table is the symbol table for one compilation: a stack of Symbols and a
// set of tentative names, both partitioned by block nesting level.
type Table struct {
	entries   []Symbol
	tentative []tentative
	level     int32
}

// New returns an empty Table. The first EnterBlock call brings it to
// level 0.
func New() *Table {
	return &Table{level: -1}
}

// Level returns the current block nesting level.
func (t *Table) Level() int32 {
	return t.level
}

// EnterBlock opens a new, deeper scope.
func (t *Table) EnterBlock() {
	t.level++
}

// LeaveBlock pops every entry and every tentative name recorded at the
// current level, then returns to the enclosing level.
func (t *Table) LeaveBlock() {
	i := len(t.entries)
	for i > 0 && t.entries[i-1].Level == t.level {
		i--
	}
	t.entries = t.entries[:i]

	kept := t.tentative[:0]
	for _, e := range t.tentative {
		if e.level != t.level {
			kept = append(kept, e)
		}
	}
	t.tentative = kept
	t.level--
}

// Add enters a new Symbol at the current level. arity is ignored unless
// kind is Func, in which case -1 means "no parameters checked" (callers
// pass the real parameter count).
func (t *Table) Add(name string, kind Kind, arity int32) {
	t.entries = append(t.entries, Symbol{Name: name, Kind: kind, Level: t.level, Arity: arity})
}

// Find searches the stack back to front for name with the given kind. If
// checkLevel is true, only an entry at the current level matches. If
// arity is not -1, only a Func entry with that exact arity matches.
func (t *Table) Find(name string, kind Kind, checkLevel bool, arity int32) bool {
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		if e.Name != name || e.Kind != kind {
			continue
		}
		if arity != -1 && e.Arity != arity {
			continue
		}
		if checkLevel && e.Level != t.level {
			continue
		}
		return true
	}
	return false
}

// AddTentative records name as used-before-declared at the current
// level, if it isn't already tentative.
func (t *Table) AddTentative(name string) {
	if t.FindTentative(name) {
		return
	}
	t.tentative = append(t.tentative, tentative{name: name, level: t.level})
}

// DeleteTentative removes name from the tentative set, if present.
func (t *Table) DeleteTentative(name string) {
	for i, e := range t.tentative {
		if e.name == name {
			t.tentative = append(t.tentative[:i], t.tentative[i+1:]...)
			return
		}
	}
}

// FindTentative reports whether name is currently tentative.
func (t *Table) FindTentative(name string) bool {
	for _, e := range t.tentative {
		if e.name == name {
			return true
		}
	}
	return false
}

// RemainingAtCurrentLevel returns the tentative names recorded at the
// current level, in the order they were added. Call it before
// LeaveBlock, which would otherwise discard them silently.
func (t *Table) RemainingAtCurrentLevel() []string {
	var names []string
	for _, e := range t.tentative {
		if e.level == t.level {
			names = append(names, e.name)
		}
	}
	return names
}

// Dump writes one line per entry in stack order, the way table.cpp's
// dumpSymbolTable does.
func (t *Table) Dump(w io.Writer) {
	for _, e := range t.entries {
		fmt.Fprintf(w, "[%d] %-10s %s\n", e.Level, e.Name, e.Kind)
	}
}

// DumpTentative writes the tentative set on one line, the way table.cpp's
// dumpTempNames does.
func (t *Table) DumpTentative(w io.Writer) {
	fmt.Fprint(w, "remain symbols:")
	for _, e := range t.tentative {
		fmt.Fprintf(w, " %s", e.name)
	}
	fmt.Fprintln(w)
}
