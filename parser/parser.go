// Package parser is the recursive-descent, single-token-lookahead parser
// for PL/0. It walks a scan.TokenStream, resolving names against a
// symtab.Table as it goes, and builds an ast.Program. Diagnostics are
// reported through a diag.Reporter shared with the scanner that produced
// the token stream, so the MAXERROR counter is process-wide across both
// stages.
package parser

import (
	"fmt"
	"io"

	"github.com/pl0-lang/pl0c/ast"
	"github.com/pl0-lang/pl0c/diag"
	"github.com/pl0-lang/pl0c/scan"
	"github.com/pl0-lang/pl0c/symtab"
)

// Parser holds everything one parse needs: the token stream, the symbol
// table it builds up as declarations are seen, and the diagnostics
// reporter both it and the scanner that fed it write to.
type Parser struct {
	ts  *scan.TokenStream
	sym *symtab.Table
	d   *diag.Reporter
	cur *scan.Token
	w   io.Writer // debug trace sink for -d, nil when tracing is off
}

// New returns a Parser over toks, reporting through d. sym should be
// freshly constructed (New from package symtab).
func New(toks []*scan.Token, sym *symtab.Table, d *diag.Reporter) *Parser {
	ts := scan.NewTokenStream(toks)
	return &Parser{ts: ts, sym: sym, d: d, cur: ts.Current()}
}

// Trace turns on -d style debug output to w: a symbol table dump each
// time a block closes, taken before that block's entries are popped.
func (p *Parser) Trace(w io.Writer) {
	p.w = w
}

func (p *Parser) advance() {
	p.cur = p.ts.Advance()
}

func isStatementStart(sym scan.Sym) bool {
	switch sym {
	case scan.SymIdent, scan.SymBegin, scan.SymIf, scan.SymWhile,
		scan.SymReturn, scan.SymWrite, scan.SymWriteln:
		return true
	}
	return false
}

func relopLexeme(sym scan.Sym) (string, bool) {
	switch sym {
	case scan.SymEql:
		return "=", true
	case scan.SymNeq:
		return "<>", true
	case scan.SymLss:
		return "<", true
	case scan.SymLeq:
		return "<=", true
	case scan.SymGtr:
		return ">", true
	case scan.SymGeq:
		return ">=", true
	}
	return "", false
}

func (p *Parser) errAtCur(msg string) {
	p.d.ErrorAt(msg, p.cur.Line, p.cur.StartCol())
}

func (p *Parser) warnAtCur(msg string) {
	p.d.WarnAt(msg, p.cur.Line, p.cur.StartCol())
}

func (p *Parser) errAt(msg string, tok *scan.Token) {
	p.d.ErrorAt(msg, tok.Line, tok.StartCol())
}

func (p *Parser) warnAt(msg string, tok *scan.Token) {
	p.d.WarnAt(msg, tok.Line, tok.StartCol())
}

// errMissingBeforeCur attributes a "missing X: inserted" diagnostic to
// just past the previous token, the way spec.md's check_get's third
// recovery branch requires - never to the token that was actually found,
// since nothing is being deleted.
func (p *Parser) errMissingBeforeCur(msg string) {
	if prev := p.cur.Prev; prev != nil {
		p.d.ErrorAt(msg, prev.Line, prev.AfterCol())
		return
	}
	p.errAtCur(msg)
}

// checkGet implements spec.md §4.4's three-branch recovery: consume on a
// match; delete-then-insert when the current token is merely the wrong
// member of the same category (keyword-for-keyword or symbol-for-symbol)
// as expected; otherwise insert without consuming anything.
func (p *Parser) checkGet(expected scan.Sym, lexeme string) {
	if p.cur.Sym == expected {
		p.advance()
		return
	}
	sameCategory := (expected.IsKeyword() && p.cur.Sym.IsKeyword()) ||
		(expected.IsSymbol() && p.cur.Sym.IsSymbol())
	if sameCategory {
		p.errAtCur("unexpected '" + p.cur.Lexeme + "': deleted")
		p.errAtCur("missing '" + lexeme + "': inserted")
		p.advance()
		return
	}
	p.errMissingBeforeCur("missing '" + lexeme + "': inserted")
}

// Parse consumes the whole token stream and returns the resulting
// Program along with the number of errors reported.
func (p *Parser) Parse() (*ast.Program, int) {
	p.sym.EnterBlock()
	blk := p.block()
	if p.cur.Sym == scan.SymPeriod {
		p.advance()
	} else {
		p.errMissingBeforeCur("program done without '.'")
	}
	p.leaveBlock()
	p.d.Summary()
	return &ast.Program{Body: blk}, p.d.ErrorsSoFar()
}

// leaveBlock reports any tentative names still outstanding at the
// current level - an identifier used but never declared anywhere visible
// - then closes the level.
func (p *Parser) leaveBlock() {
	remain := p.sym.RemainingAtCurrentLevel()
	if len(remain) > 0 {
		names := remain[0]
		for _, n := range remain[1:] {
			names += " " + n
		}
		p.errAtCur("remain undefined symbols: " + names)
	}
	if p.w != nil {
		if len(remain) > 0 {
			p.sym.DumpTentative(p.w)
		}
		p.sym.Dump(p.w)
	}
	p.sym.LeaveBlock()
}

func (p *Parser) block() *ast.Block {
	blk := &ast.Block{}
	for {
		if p.d.TooMany() {
			blk.Body = &ast.Null{}
			return blk
		}
		switch p.cur.Sym {
		case scan.SymConst:
			p.constDecl(blk)
		case scan.SymVar:
			p.varDecl(blk)
		case scan.SymFunction:
			p.funcDecl(blk)
		default:
			blk.Body = p.bodyStatement()
			return blk
		}
	}
}

// bodyStatement parses the one mandatory statement at the end of a
// block. Unlike statement (used inside begin...end, where a trailing
// empty statement before ';'/'end' is legitimate), a block's body is
// never allowed to be entirely absent.
func (p *Parser) bodyStatement() ast.Stmt {
	if !isStatementStart(p.cur.Sym) {
		p.errAtCur("No statement")
		for p.cur.Sym != scan.SymEof && !isStatementStart(p.cur.Sym) {
			p.advance()
		}
		if p.cur.Sym == scan.SymEof {
			return &ast.Null{}
		}
	}
	return p.statement()
}

func (p *Parser) constDecl(blk *ast.Block) {
	p.advance() // consume 'const'
	if blk.Constants == nil {
		blk.Constants = &ast.ConstDecl{}
	}
	for {
		if p.cur.Sym != scan.SymIdent {
			p.errAtCur("identifier expected")
			break
		}
		name := p.cur.Lexeme
		nameTok := p.cur
		p.advance()

		dup := p.sym.Find(name, symtab.Const, true, -1)
		if dup {
			p.errAt("duplicate constant "+name+": ignored", nameTok)
		}
		if p.sym.FindTentative(name) {
			p.sym.DeleteTentative(name)
			p.warnAt("delete "+name+" from name table", nameTok)
		}

		p.checkGet(scan.SymEql, "=")

		var value int64
		if p.cur.Sym == scan.SymNumber {
			value = p.cur.Value
			p.advance()
		} else {
			p.errAtCur("assigned not number")
		}

		if !dup {
			p.sym.Add(name, symtab.Const, -1)
			blk.Constants.Names = append(blk.Constants.Names, name)
			blk.Constants.Values = append(blk.Constants.Values, value)
		}

		if p.cur.Sym != scan.SymComma {
			break
		}
		p.advance()
	}
	p.checkGet(scan.SymSemicolon, ";")
}

func (p *Parser) varDecl(blk *ast.Block) {
	p.advance() // consume 'var'
	if blk.Variables == nil {
		blk.Variables = &ast.VarDecl{}
	}
	for {
		if p.cur.Sym != scan.SymIdent {
			p.errAtCur("identifier expected")
			break
		}
		name := p.cur.Lexeme
		nameTok := p.cur
		p.advance()

		dup := p.sym.Find(name, symtab.Var, true, -1)
		if dup {
			p.errAt("duplicate variable "+name+": ignored", nameTok)
		}
		if p.sym.FindTentative(name) {
			p.sym.DeleteTentative(name)
			p.warnAt("delete "+name+" from name table", nameTok)
		}

		if !dup {
			p.sym.Add(name, symtab.Var, -1)
			blk.Variables.Names = append(blk.Variables.Names, name)
		}

		if p.cur.Sym != scan.SymComma {
			break
		}
		p.advance()
	}
	p.checkGet(scan.SymSemicolon, ";")
}

func (p *Parser) funcDecl(blk *ast.Block) {
	p.advance() // consume 'function'
	if p.cur.Sym != scan.SymIdent {
		p.errAtCur("identifier expected")
		return
	}
	name := p.cur.Lexeme
	nameTok := p.cur
	p.advance()

	p.checkGet(scan.SymLparen, "(")
	var params []string
	seen := map[string]bool{}
	addParam := func() {
		pname := p.cur.Lexeme
		ptok := p.cur
		p.advance()
		if seen[pname] {
			p.errAt("duplicate param "+pname+": ignored", ptok)
			return
		}
		seen[pname] = true
		params = append(params, pname)
	}
	if p.cur.Sym == scan.SymIdent {
		addParam()
		for p.cur.Sym == scan.SymComma {
			p.advance()
			if p.cur.Sym != scan.SymIdent {
				p.errAtCur("identifier expected")
				break
			}
			addParam()
		}
	}
	p.checkGet(scan.SymRparen, ")")

	arity := int32(len(params))
	dup := p.sym.Find(name, symtab.Func, true, arity)
	if dup {
		p.errAt("duplicate func "+name+": ignored", nameTok)
	} else {
		p.sym.Add(name, symtab.Func, arity)
	}

	p.sym.EnterBlock()
	for _, pn := range params {
		p.sym.Add(pn, symtab.Param, -1)
	}
	body := p.block()
	p.leaveBlock()

	p.checkGet(scan.SymSemicolon, ";")

	if !dup {
		blk.Functions = append(blk.Functions, &ast.FuncDecl{Name: name, Params: params, Body: body})
	}
}

// statement parses one statement where an entirely absent one is legal:
// inside a begin...end sequence, right before 'end'/'.'/a following ';'.
func (p *Parser) statement() ast.Stmt {
	switch p.cur.Sym {
	case scan.SymIdent:
		return p.assign()
	case scan.SymBegin:
		return p.beginEnd()
	case scan.SymIf:
		return p.ifThen()
	case scan.SymWhile:
		return p.whileDo()
	case scan.SymReturn:
		return p.returnStmt()
	case scan.SymWrite:
		return p.writeStmt()
	case scan.SymWriteln:
		p.advance()
		return &ast.Writeln{}
	case scan.SymSemicolon, scan.SymEnd, scan.SymPeriod:
		return &ast.Null{}
	default:
		p.errAtCur("statement expected")
		for p.cur.Sym != scan.SymEof && !isStatementStart(p.cur.Sym) &&
			p.cur.Sym != scan.SymSemicolon && p.cur.Sym != scan.SymEnd && p.cur.Sym != scan.SymPeriod {
			p.advance()
		}
		if p.cur.Sym == scan.SymEof {
			return &ast.Null{}
		}
		if p.cur.Sym == scan.SymSemicolon || p.cur.Sym == scan.SymEnd || p.cur.Sym == scan.SymPeriod {
			return &ast.Null{}
		}
		return p.statement()
	}
}

func (p *Parser) assign() ast.Stmt {
	name := p.cur.Lexeme
	tok := p.cur
	p.advance()

	if p.sym.Find(name, symtab.Func, false, -1) {
		p.errAt("assign lhs is not var/par", tok)
	} else if !(p.sym.Find(name, symtab.Var, false, -1) || p.sym.Find(name, symtab.Param, false, -1)) {
		if !p.sym.FindTentative(name) {
			p.sym.AddTentative(name)
			p.warnAt("add "+name+" to name table temporarily", tok)
		}
	}

	p.checkGet(scan.SymBecomes, ":=")
	rhs := p.expression(nil)
	return &ast.Assign{Name: name, Rhs: rhs}
}

func (p *Parser) beginEnd() ast.Stmt {
	p.advance() // consume 'begin'
	var stmts []ast.Stmt
	stmts = append(stmts, p.statement())
	for {
		if p.d.TooMany() {
			return &ast.BeginEnd{Stmts: stmts}
		}
		switch {
		case p.cur.Sym == scan.SymSemicolon:
			p.advance()
			stmts = append(stmts, p.statement())
		case p.cur.Sym == scan.SymEnd:
			p.advance()
			return &ast.BeginEnd{Stmts: stmts}
		case p.cur.Sym == scan.SymEof:
			p.errMissingBeforeCur("missing 'end': inserted")
			return &ast.BeginEnd{Stmts: stmts}
		case isStatementStart(p.cur.Sym):
			p.errAtCur("missing ';': inserted")
			stmts = append(stmts, p.statement())
		default:
			p.errAtCur("delete " + p.cur.Lexeme + " and skip to a new statement")
			p.advance()
		}
	}
}

func (p *Parser) ifThen() ast.Stmt {
	p.advance() // consume 'if'
	cond := p.condition()
	p.checkGet(scan.SymThen, "then")
	body := p.statement()
	return &ast.IfThen{Cond: cond, Body: body}
}

func (p *Parser) whileDo() ast.Stmt {
	p.advance() // consume 'while'
	cond := p.condition()
	p.checkGet(scan.SymDo, "do")
	body := p.statement()
	return &ast.WhileDo{Cond: cond, Body: body}
}

func (p *Parser) returnStmt() ast.Stmt {
	p.advance() // consume 'return'
	e := p.expression(nil)
	return &ast.Return{Value: e}
}

func (p *Parser) writeStmt() ast.Stmt {
	p.advance() // consume 'write'
	e := p.expression(nil)
	return &ast.Write{Value: e}
}

func (p *Parser) condition() ast.Expr {
	if p.cur.Sym == scan.SymOdd {
		p.advance()
		e := p.expression(nil)
		return &ast.Condition{Op: "odd", Rhs: e}
	}
	lhs := p.expression(nil)
	op, ok := relopLexeme(p.cur.Sym)
	if !ok {
		p.errAtCur("relational operator expected")
		return &ast.Condition{Op: "=", Lhs: lhs, Rhs: &ast.Number{Value: 0}}
	}
	p.advance()
	rhs := p.expression(nil)
	return &ast.Condition{Op: op, Lhs: lhs, Rhs: rhs}
}

// signedTerm parses one term with an optional leading unary sign,
// normalizing a leading "+"/"-" into a Binary{Op:'+', Rhs: Number{0}}
// node so the sign always has somewhere to live in the tree.
func (p *Parser) signedTerm() ast.Expr {
	prefix := ""
	if p.cur.Sym == scan.SymPlus || p.cur.Sym == scan.SymMinus {
		prefix = p.cur.Lexeme
		p.advance()
	}
	t := p.term(nil)
	if prefix != "" {
		return &ast.Binary{Op: '+', Lhs: t, Rhs: &ast.Number{Value: 0}, Prefix: prefix}
	}
	return t
}

// expression accepts an optional already-parsed lhs so that a tail call
// may pass the just-built Binary node back in, producing a left-leaning
// tree without backtracking: expression(nil) parses "term {+/- term}"
// and every +/- found recurses with the accumulated node as lhs.
func (p *Parser) expression(lhs ast.Expr) ast.Expr {
	if lhs == nil {
		lhs = p.signedTerm()
	}
	if p.cur.Sym == scan.SymPlus || p.cur.Sym == scan.SymMinus {
		opTok := p.cur
		p.advance()
		rhs := p.signedTerm()
		lhs = &ast.Binary{Op: opTok.Lexeme[0], Lhs: lhs, Rhs: rhs}
		return p.expression(lhs)
	}
	return lhs
}

// term mirrors expression for "*"/"/" over factors.
func (p *Parser) term(lhs ast.Expr) ast.Expr {
	if lhs == nil {
		lhs = p.factor()
	}
	if p.cur.Sym == scan.SymTimes || p.cur.Sym == scan.SymSlash {
		opTok := p.cur
		p.advance()
		rhs := p.factor()
		lhs = &ast.Binary{Op: opTok.Lexeme[0], Lhs: lhs, Rhs: rhs}
		return p.term(lhs)
	}
	return lhs
}

func (p *Parser) factor() ast.Expr {
	switch p.cur.Sym {
	case scan.SymIdent:
		name := p.cur.Lexeme
		tok := p.cur
		p.advance()
		var e ast.Expr
		if p.sym.Find(name, symtab.Func, false, -1) {
			e = p.call(name, tok)
		} else {
			if !(p.sym.Find(name, symtab.Var, false, -1) ||
				p.sym.Find(name, symtab.Param, false, -1) ||
				p.sym.Find(name, symtab.Const, false, -1)) &&
				!p.sym.FindTentative(name) {
				p.sym.AddTentative(name)
				p.warnAt("add "+name+" to name table temporarily", tok)
			}
			e = &ast.Variable{Name: name}
		}
		p.checkFactorAdjacency()
		return e
	case scan.SymNumber:
		e := &ast.Number{Value: p.cur.Value}
		p.advance()
		p.checkFactorAdjacency()
		return e
	case scan.SymLparen:
		p.advance()
		e := p.expression(nil)
		p.checkGet(scan.SymRparen, ")")
		p.checkFactorAdjacency()
		return e
	default:
		p.errAtCur("not a factor")
		return &ast.Number{Value: 0}
	}
}

// checkFactorAdjacency flags two factors written back to back with no
// operator between them, the way a stray "2 3" or "x(" would otherwise
// silently just stop the enclosing term/expression loop.
func (p *Parser) checkFactorAdjacency() {
	switch p.cur.Sym {
	case scan.SymIdent, scan.SymNumber:
		p.errAtCur("fact + id/num " + p.cur.Lexeme + ": missing opcode")
	case scan.SymLparen:
		p.errAtCur("factor + '(': missing opcode")
	}
}

func (p *Parser) call(name string, nameTok *scan.Token) ast.Expr {
	p.checkGet(scan.SymLparen, "(")
	var args []ast.Expr
	if p.cur.Sym != scan.SymRparen {
		args = append(args, p.expression(nil))
		for p.cur.Sym == scan.SymComma {
			p.advance()
			args = append(args, p.expression(nil))
		}
	}
	p.checkGet(scan.SymRparen, ")")

	if !p.sym.Find(name, symtab.Func, false, int32(len(args))) {
		p.errAt(fmt.Sprintf("undefined func %s(%d)", name, len(args)), nameTok)
		return &ast.Number{Value: 0}
	}
	return &ast.Call{Callee: name, Args: args}
}
