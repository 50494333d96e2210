package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/securevibes/policyvibes/internal/engine"
	"github.com/securevibes/policyvibes/internal/findings"
	sharederrors "github.com/securevibes/policyvibes/pkg/shared/errors"
	"github.com/securevibes/policyvibes/pkg/shared/files"
)

// Scanner walks a file or directory tree and runs the engine over every file in scope.
type Scanner struct {
	engine       *engine.Engine                    // Compiled rules and scope policy
	excludePaths map[string]struct{}               // Absolute paths never read in directory mode
	rootNames    map[string]struct{}               // File names never read directly under the scan root
	readFile     func(path string) (string, error) // Reads file content for matching
	logger       hclog.Logger                      // Logger for logging messages and errors
}

// New creates a new Scanner backed by e.
func New(e *engine.Engine, logger hclog.Logger) *Scanner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Scanner{
		engine:       e,
		excludePaths: make(map[string]struct{}),
		rootNames:    make(map[string]struct{}),
		readFile:     files.ReadText,
		logger:       logger,
	}
}

// Exclude adds files that directory scans never read, such as the report
// the current run writes. It must be called before scanning.
func (s *Scanner) Exclude(paths ...string) *Scanner {
	for _, p := range paths {
		if p == "" {
			continue
		}
		s.excludePaths[canonicalPath(p)] = struct{}{}
	}
	return s
}

// ExcludeRootNames adds file names that are never read when they sit
// directly under the scan root, such as reports left by earlier runs.
func (s *Scanner) ExcludeRootNames(names ...string) *Scanner {
	for _, n := range names {
		s.rootNames[n] = struct{}{}
	}
	return s
}

// Engine returns the engine the scanner runs.
func (s *Scanner) Engine() *engine.Engine {
	return s.engine
}

// IsExcluded reports whether path is excluded from a scan rooted at root.
func (s *Scanner) IsExcluded(root, path string) bool {
	if _, ok := s.excludePaths[canonicalPath(path)]; ok {
		return true
	}
	if filepath.Dir(path) != root {
		return false
	}
	_, ok := s.rootNames[filepath.Base(path)]
	return ok
}

// canonicalPath makes path absolute and resolves symlinks in its parent,
// so a file that does not exist yet compares equal to the walked path.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}

// Scan scans a single file or a directory tree rooted at path.
//
// A single file is always scanned, whatever its extension. In a directory,
// skipped directories are not entered and only files in scope are read.
// Unlistable directories and unreadable files are left out of the result.
// The only error surfaced for a missing target is a *errors.NotFoundError.
func (s *Scanner) Scan(path string) (*findings.ScanResult, error) {
	root, err := resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, sharederrors.NewNotFoundError(path)
		}
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}

	result := findings.NewScanResult(root)
	if info.IsDir() {
		s.walk(root, result)
	} else {
		s.scanFile(root, result)
	}
	result.Sort()

	s.logger.Debug("scan finished",
		"root", root,
		"files", result.FilesScanned,
		"findings", len(result.Findings),
	)
	return result, nil
}

func (s *Scanner) walk(root string, result *findings.ScanResult) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && s.engine.ShouldSkip(path) {
				s.logger.Trace("skipping directory", "path", path)
				return filepath.SkipDir
			}
			return nil
		}

		if !isFile(path, d) || !s.engine.ShouldScan(path) || s.IsExcluded(root, path) {
			return nil
		}
		s.scanFile(path, result)
		return nil
	})
}

// scanFile feeds one file to the engine. FilesScanned only counts files that were read.
func (s *Scanner) scanFile(path string, result *findings.ScanResult) {
	content, err := s.readFile(path)
	if err != nil {
		s.logger.Debug("skipping unreadable file", "path", path, "error", err)
		return
	}
	result.FilesScanned++

	for f := range s.engine.Scan(content, path) {
		if !result.Add(f) {
			s.logger.Trace("duplicate finding", "file", f.FilePath, "line", f.LineNumber, "category", f.Category)
		}
	}
}

// isFile reports whether d is a regular file or a symlink to one.
// Symlinked directories are not followed.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func resolve(path string) (string, error) {
	expanded, err := files.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}
