// Command pl0c compiles a single PL/0 source file. It parses, reports
// diagnostics to stderr, and - since a real object-code backend is out
// of scope - asks a backend.Target to write a placeholder for what that
// backend would have produced.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pl0-lang/pl0c/backend"
	"github.com/pl0-lang/pl0c/diag"
	"github.com/pl0-lang/pl0c/parser"
	"github.com/pl0-lang/pl0c/scan"
	"github.com/pl0-lang/pl0c/symtab"
)

func printVersion() {
	fmt.Println("pl0c  0.1.0")
}

func main() {
	app := &cli.App{
		Name:  "pl0c",
		Usage: "compile a PL/0 source file",
		Description: `Parses one PL/0 source file, reporting diagnostics on stderr.

Examples:
    pl0c prog.pl0
    pl0c -c prog.pl0
    pl0c -a prog.pl0`,
		ArgsUsage: "<input file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "d", Usage: "trace: dump tokens and the symbol table while parsing"},
			&cli.BoolFlag{Name: "l", Usage: "print the token stream and exit"},
			&cli.BoolFlag{Name: "c", Usage: "syntax-check only, write no output file"},
			&cli.BoolFlag{Name: "a", Usage: "emit textual IR to stdout instead of an object file"},
		},
		Action: run,
	}
	printVersion()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	d := diag.New(os.Stderr)
	if c.NArg() != 1 {
		d.Error("exactly one input file required")
		return cli.Exit("", 1)
	}
	path := c.Args().Get(0)
	src, err := os.Open(path)
	if err != nil {
		d.Error(err.Error())
		return cli.Exit("", 1)
	}
	defer src.Close()

	sc := scan.NewScanner(src, d)
	toks := sc.Scan()

	if c.Bool("l") {
		for _, t := range toks {
			d.Token(t.Line, t.StartCol(), t.Lexeme, t.Sym.String())
		}
		return cli.Exit("", 1)
	}

	sym := symtab.New()
	p := parser.New(toks, sym, d)
	if c.Bool("d") {
		for _, t := range toks {
			d.Token(t.Line, t.StartCol(), t.Lexeme, t.Sym.String())
		}
		p.Trace(os.Stderr)
	}

	prog, errs := p.Parse()
	if errs >= diag.MinError {
		return cli.Exit("", 1)
	}
	if c.Bool("c") {
		return nil
	}

	var target backend.Target = backend.IRPrinter{}
	if c.Bool("a") {
		if err := target.Emit(os.Stdout, prog, sym); err != nil {
			return cli.Exit(err, 1)
		}
		return nil
	}

	out := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".o"
	f, err := os.Create(out)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer f.Close()
	// IRPrinter's output is a placeholder for what a real object-code
	// backend would produce here, not a linkable object file.
	if err := target.Emit(f, prog, sym); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}
