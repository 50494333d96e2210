package engine

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-hclog"

	"github.com/securevibes/policyvibes/internal/skills"
)

// scopeMatcher answers file and directory selection questions for one scope.
type scopeMatcher struct {
	extensions map[string]struct{}
	special    map[string]struct{}
	skipNames  map[string]struct{}
	skipGlobs  []glob.Glob
}

func newScopeMatcher(scope skills.Scope, logger hclog.Logger) *scopeMatcher {
	m := &scopeMatcher{
		extensions: make(map[string]struct{}, len(scope.Extensions)),
		special:    make(map[string]struct{}, len(scope.SpecialFiles)),
		skipNames:  make(map[string]struct{}, len(scope.SkipDirs)),
	}
	for _, ext := range scope.Extensions {
		m.extensions[strings.ToLower(ext)] = struct{}{}
	}
	for _, name := range scope.SpecialFiles {
		m.special[name] = struct{}{}
	}
	for _, entry := range scope.SkipDirs {
		m.skipNames[entry] = struct{}{}
		if !strings.ContainsAny(entry, "*?[{") {
			continue
		}
		g, err := glob.Compile(entry)
		if err != nil {
			logger.Debug("skip entry is not a valid glob, matching literally", "entry", entry, "error", err)
			continue
		}
		m.skipGlobs = append(m.skipGlobs, g)
	}
	return m
}

func (m *scopeMatcher) shouldScan(path string) bool {
	name := filepath.Base(path)
	if _, ok := m.special[name]; ok {
		return true
	}
	_, ok := m.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (m *scopeMatcher) shouldSkip(dir string) bool {
	name := filepath.Base(dir)
	if _, ok := m.skipNames[name]; ok {
		return true
	}
	for _, g := range m.skipGlobs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
