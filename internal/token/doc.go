// Package token defines lexical token kinds and trivia.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Start..End).
//   - Every line break is a separate EndOfLine trivia: "\n", "\r\n" or a lone "\r".
//   - The EOF token carries the trailing trivia of the file as its Leading list,
//     so concatenating Leading and Text of every token reproduces the source.
package token
