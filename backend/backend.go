// Package backend defines the interface contract a PL/0 front end hands
// to a code generator. Object-code emission itself is out of scope; this
// package only draws the boundary and supplies one explicitly
// non-production implementation so the CLI driver has something concrete
// to call.
package backend

import (
	"io"

	"github.com/pl0-lang/pl0c/ast"
	"github.com/pl0-lang/pl0c/symtab"
)

// Target is the collaborator a real code generator implements. The
// parser, or a driver standing in for one, depends only on this
// interface and never on a concrete generator.
type Target interface {
	Emit(w io.Writer, prog *ast.Program, env *symtab.Table) error
}

// IRPrinter satisfies Target by writing the textual form of the AST
// produced by ast.Fprint. It is not a real backend: its output is not a
// linkable object file, only a placeholder for one. cmd/pl0c uses it as
// the default Target because no real object-emitting backend is in
// scope.
type IRPrinter struct{}

func (IRPrinter) Emit(w io.Writer, prog *ast.Program, env *symtab.Table) error {
	ast.Fprint(w, prog)
	return nil
}
