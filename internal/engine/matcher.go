package engine

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	re2 "github.com/wasilibs/go-re2"

	"github.com/securevibes/policyvibes/pkg/shared/config"
)

// DefaultMatchTimeout bounds a single backtracking match attempt.
const DefaultMatchTimeout = 5 * time.Second

// span is a half-open byte range of a match.
type span struct {
	start, end int
}

// matcher finds every non-overlapping match of one compiled rule.
type matcher interface {
	// find calls yield for each match in order and stops when yield returns false.
	find(doc *document, yield func(span) bool) error
}

type compileFunc func(pattern string) (matcher, error)

func compilerFor(engineName string, timeout time.Duration) (compileFunc, error) {
	switch engineName {
	case "", config.EngineBacktracking:
		return func(p string) (matcher, error) { return compileBacktracking(p, timeout) }, nil
	case config.EngineRE2:
		return compileRE2, nil
	default:
		return nil, fmt.Errorf("unknown regex engine %q", engineName)
	}
}

// backtracking wraps regexp2, which supports look-around.
type backtracking struct {
	re *regexp2.Regexp
}

func compileBacktracking(pattern string, timeout time.Duration) (matcher, error) {
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase|regexp2.Multiline)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return &backtracking{re: re}, nil
}

func (b *backtracking) find(doc *document, yield func(span) bool) error {
	m, err := b.re.FindRunesMatch(doc.runes())
	for m != nil && err == nil {
		start := doc.byteOffset(m.Index)
		end := doc.byteOffset(m.Index + m.Length)
		if !yield(span{start: start, end: end}) {
			return nil
		}
		m, err = b.re.FindNextMatch(m)
	}
	return err
}

// linear wraps go-re2. Patterns using look-around fail to compile.
type linear struct {
	re *re2.Regexp
}

func compileRE2(pattern string) (matcher, error) {
	re, err := re2.Compile("(?im)" + pattern)
	if err != nil {
		return nil, err
	}
	return &linear{re: re}, nil
}

func (l *linear) find(doc *document, yield func(span) bool) error {
	for _, loc := range l.re.FindAllStringIndex(doc.content, -1) {
		if !yield(span{start: loc[0], end: loc[1]}) {
			return nil
		}
	}
	return nil
}
