// Package fuzztests houses Go fuzz harnesses for the lexer and the empty-line
// rule. They guard against panics, trivia that fails to tile the input, and
// fix-all runs that never converge or touch anything but blank lines.
package fuzztests
