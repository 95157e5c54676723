package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a one-indented-line-per-node textual rendering of prog to
// w. It is the in-scope half of the "textual IR" the CLI contract names:
// a visitor over the tree the parser already built, not a separate
// lowering.
func Fprint(w io.Writer, prog *Program) {
	p := &printer{w: w}
	p.block(prog.Body, 0)
}

type printer struct {
	w io.Writer
}

func (p *printer) line(depth int, format string, args ...interface{}) {
	fmt.Fprint(p.w, strings.Repeat("  ", depth))
	fmt.Fprintf(p.w, format, args...)
	fmt.Fprintln(p.w)
}

func (p *printer) block(b *Block, depth int) {
	p.line(depth, "block")
	if b.Constants != nil {
		for i, n := range b.Constants.Names {
			p.line(depth+1, "const %s = %d", n, b.Constants.Values[i])
		}
	}
	if b.Variables != nil {
		for _, n := range b.Variables.Names {
			p.line(depth+1, "var %s", n)
		}
	}
	for _, f := range b.Functions {
		p.line(depth+1, "function %s(%s)", f.Name, strings.Join(f.Params, ", "))
		p.block(f.Body, depth+2)
	}
	p.stmt(b.Body, depth+1)
}

func (p *printer) stmt(s Stmt, depth int) {
	switch n := s.(type) {
	case *Null:
		p.line(depth, "null")
	case *Assign:
		p.line(depth, "assign %s := %s", n.Name, exprString(n.Rhs))
	case *BeginEnd:
		p.line(depth, "begin")
		for _, s := range n.Stmts {
			p.stmt(s, depth+1)
		}
		p.line(depth, "end")
	case *IfThen:
		p.line(depth, "if %s then", exprString(n.Cond))
		p.stmt(n.Body, depth+1)
	case *WhileDo:
		p.line(depth, "while %s do", exprString(n.Cond))
		p.stmt(n.Body, depth+1)
	case *Return:
		p.line(depth, "return %s", exprString(n.Value))
	case *Write:
		p.line(depth, "write %s", exprString(n.Value))
	case *Writeln:
		p.line(depth, "writeln")
	default:
		p.line(depth, "<unknown stmt>")
	}
}

// exprString renders an Expr as a fully parenthesized, canonical string,
// used by Fprint.
func exprString(e Expr) string {
	switch n := e.(type) {
	case nil:
		return "<nil>"
	case *Number:
		return fmt.Sprintf("%d", n.Value)
	case *Variable:
		return n.Name
	case *Binary:
		lhs := exprString(n.Lhs)
		if n.Prefix != "" {
			lhs = n.Prefix + lhs
		}
		return fmt.Sprintf("(%s %c %s)", lhs, n.Op, exprString(n.Rhs))
	case *Condition:
		if n.Op == "odd" {
			return fmt.Sprintf("(odd %s)", exprString(n.Rhs))
		}
		return fmt.Sprintf("(%s %s %s)", exprString(n.Lhs), n.Op, exprString(n.Rhs))
	case *Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = exprString(a)
		}
		return fmt.Sprintf("%s(%s)", n.Callee, strings.Join(args, ", "))
	default:
		return "<unknown expr>"
	}
}
