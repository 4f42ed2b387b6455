package diag

import (
	"errors"
	"fmt"
	"sync"

	"emptylines/internal/source"
	"emptylines/internal/token"
)

// FixKind is a coarse classification of a fix.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactor
	FixKindRefactorRewrite
	FixKindSourceAction
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "quickfix"
	case FixKindRefactor:
		return "refactor"
	case FixKindRefactorRewrite:
		return "refactor.rewrite"
	case FixKindSourceAction:
		return "source"
	}
	return "unknown"
}

// FixApplicability is the confidence that a fix preserves behaviour.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// TextEdit replaces Span with NewText. OldText, when set, must match the
// current content for the edit to apply.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixBuildContext is handed to thunks when a fix is materialised.
type FixBuildContext struct {
	FileSet *source.FileSet
	// Tokens shares lexed file versions between the thunks of one build.
	// Nil disables sharing.
	Tokens *TokenCache
}

// NewFixBuildContext returns a context with a fresh token cache.
func NewFixBuildContext(fs *source.FileSet) FixBuildContext {
	return FixBuildContext{FileSet: fs, Tokens: NewTokenCache()}
}

// TokenCache memoises the token stream of each file version per syntax.
// File versions are immutable, so entries never go stale.
type TokenCache struct {
	mu      sync.Mutex
	entries map[tokenCacheKey][]token.Token
}

type tokenCacheKey struct {
	file   source.FileID
	syntax string
}

func NewTokenCache() *TokenCache {
	return &TokenCache{entries: make(map[tokenCacheKey][]token.Token)}
}

// Tokens returns the cached stream for file under syntax, calling lex on a
// miss. A nil cache always calls lex. Callers must not modify the result.
func (c *TokenCache) Tokens(file source.FileID, syntax string, lex func() []token.Token) []token.Token {
	if c == nil {
		return lex()
	}
	key := tokenCacheKey{file: file, syntax: syntax}
	c.mu.Lock()
	defer c.mu.Unlock()
	if toks, ok := c.entries[key]; ok {
		return toks
	}
	toks := lex()
	c.entries[key] = toks
	return toks
}

// FixThunk builds a fix on demand against the current file contents.
type FixThunk interface {
	BuildFix(ctx FixBuildContext) (Fix, error)
}

// FixThunkFunc adapts a function to FixThunk.
type FixThunkFunc func(ctx FixBuildContext) (Fix, error)

func (f FixThunkFunc) BuildFix(ctx FixBuildContext) (Fix, error) {
	return f(ctx)
}

type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	// RequiresAll marks fixes that are only valid as part of a batch.
	RequiresAll bool
	Edits       []TextEdit
	Thunk       FixThunk
}

// ErrFixNotMaterialized is returned by Resolve when a fix has neither edits nor a thunk.
var ErrFixNotMaterialized = errors.New("fix has no edits and no builder")

// Resolve runs the thunk, if any, and returns a fix with concrete edits.
// Metadata set on the outer fix wins over what the thunk returns.
func (f Fix) Resolve(ctx FixBuildContext) (Fix, error) {
	if f.Thunk == nil {
		if len(f.Edits) == 0 {
			return f, ErrFixNotMaterialized
		}
		return f, nil
	}
	built, err := f.Thunk.BuildFix(ctx)
	if err != nil {
		return Fix{}, fmt.Errorf("%s: %w", f.Title, err)
	}
	if f.ID != "" {
		built.ID = f.ID
	}
	if f.Title != "" {
		built.Title = f.Title
	}
	built.Kind = f.Kind
	built.Applicability = f.Applicability
	built.IsPreferred = built.IsPreferred || f.IsPreferred
	built.RequiresAll = built.RequiresAll || f.RequiresAll
	built.Thunk = nil
	return built, nil
}

// MaterializeFixes resolves every fix in order, stopping at the first failure.
func MaterializeFixes(ctx FixBuildContext, fixes []Fix) ([]Fix, error) {
	out := make([]Fix, 0, len(fixes))
	for _, f := range fixes {
		resolved, err := f.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}
