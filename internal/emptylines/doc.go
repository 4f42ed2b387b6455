// Package emptylines finds runs of redundant blank lines in a token's leading
// trivia and rewrites them down to threshold-1 blank lines.
//
// Detection is token-local: every run lives in exactly one token's Leading
// list, so no run is seen twice. A run starts at a whitespace or end-of-line
// element, is extended only by end-of-line elements and is closed by a comment,
// other trivia or the token itself. Only fully blank lines count; the reported
// span starts at the first blank line and ends at the start of the line that
// holds the closing element.
//
// Rewrite keeps everything outside the reported span byte for byte. Inside it,
// the first element survives (so indentation on a blank line is kept) and
// synthetic line breaks bring the run to threshold-1 blank lines.
//
// Findings pair the reported span with the anchor token. Fixes re-lex the
// current file and look the anchor up again; a finding that no longer matches
// yields ErrStaleLocation and leaves the file alone.
package emptylines
