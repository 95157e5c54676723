// Package diag formats and counts the diagnostics a PL/0 compilation run
// produces. It owns no knowledge of tokens or grammar; callers resolve a
// message to a line and column themselves and hand both to the Reporter.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// MaxError is the number of reported errors at which a run gives up and
// the caller should stop feeding the Reporter further diagnostics.
const MaxError = 30

// MinError is kept distinct from MaxError even though both are 30 today:
// spec.md's Design Notes treat the "stop reporting" and "stop parsing"
// thresholds as independently tunable constants.
const MinError = 30

// Reporter accumulates error and warning counts and writes formatted
// diagnostics to w as they're reported.
type Reporter struct {
	w        io.Writer
	errCount int
	warnCount int
	errLabel  *color.Color
	warnLabel *color.Color
}

// New returns a Reporter that writes to w.
func New(w io.Writer) *Reporter {
	errLabel := color.New(color.FgRed, color.Bold)
	warnLabel := color.New(color.FgYellow, color.Bold)
	return &Reporter{w: w, errLabel: errLabel, warnLabel: warnLabel}
}

// Error reports msg with no position attribution.
func (r *Reporter) Error(msg string) {
	r.errCount++
	if r.errCount > MinError {
		return
	}
	fmt.Fprintf(r.w, "%s %s\n", r.errLabel.Sprint("error:"), msg)
	if r.errCount == MinError {
		fmt.Fprintln(r.w, "too many errors")
	}
}

// ErrorAt reports msg attributed to line:col. Once the count passes
// MinError, further errors are still counted (so ErrorsSoFar and
// TooMany stay accurate) but are no longer printed - the same
// suppress-but-keep-counting behavior as Mark in the teacher's scanner.
func (r *Reporter) ErrorAt(msg string, line, col int) {
	r.errCount++
	if r.errCount > MinError {
		return
	}
	fmt.Fprintf(r.w, "[%3d:%3d] %s %s\n", line, col, r.errLabel.Sprint("error:"), msg)
	if r.errCount == MinError {
		fmt.Fprintln(r.w, "too many errors")
	}
}

// WarnAt reports msg attributed to line:col. Warnings never count toward
// MaxError.
func (r *Reporter) WarnAt(msg string, line, col int) {
	r.warnCount++
	fmt.Fprintf(r.w, "[%3d:%3d] %s %s\n", line, col, r.warnLabel.Sprint("warn:"), msg)
}

// Token reports one entry of a -l token dump.
func (r *Reporter) Token(line, col int, lexeme, kind string) {
	fmt.Fprintf(r.w, "[%3d:%3d] TOKEN: %-10s (%s)\n", line, col, lexeme, kind)
}

// ErrorsSoFar returns the number of errors reported so far. Warnings are
// not included.
func (r *Reporter) ErrorsSoFar() int {
	return r.errCount
}

// TooMany reports whether the error count has reached MaxError.
func (r *Reporter) TooMany() bool {
	return r.errCount >= MaxError
}

// Summary prints the final "N errors" line if any errors were reported.
func (r *Reporter) Summary() {
	if r.errCount > 0 {
		fmt.Fprintf(r.w, "%d errors\n", r.errCount)
	}
}
