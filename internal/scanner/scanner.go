// Package scanner lists the source files selected for analysis. It is
// the pipeline's external collaborator: traversal and filtering happen
// here, extraction happens elsewhere.
//
// Listing is tolerant: unreadable or undecodable files are logged and
// skipped. The parse stage downstream is not — a file that passes
// listing but cannot be read later aborts the run.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/nmicheli/concord/internal/diag"
	"github.com/nmicheli/concord/pkg/config"
	"github.com/nmicheli/concord/pkg/models"
	"github.com/nmicheli/concord/pkg/parser"
)

// Scanner finds Python and PHP source files in a directory.
type Scanner struct {
	cfg      *config.Config
	sink     diag.Sink
	matchers []gitignore.Matcher
}

// New creates a file scanner. A nil sink discards diagnostics.
func New(cfg *config.Config, sink diag.Sink) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if sink == nil {
		sink = diag.Discard{}
	}
	return &Scanner{cfg: cfg, sink: sink}
}

// Scan recursively lists analyzable files under root, ordered
// lexicographically by path. The ordering is an invariant consumed by
// the mapper: it decides which definition is canonical on a name
// collision.
func (s *Scanner) Scan(root string) ([]models.FileInfo, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	s.loadGitignore(root)
	maxBytes := int64(s.cfg.Analysis.MaxFileSizeKB) * 1024

	var files []models.FileInfo
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		if d.IsDir() {
			if path != root && (s.excludedDir(d.Name()) || s.ignored(relPath, true)) {
				return filepath.SkipDir
			}
			return nil
		}

		lang := parser.DetectLanguage(path)
		if lang == models.LangUnknown {
			return nil
		}
		if s.excludedFile(d.Name()) || s.ignored(relPath, false) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			s.sink.Warnf("scanner: skipping unstatable file %s", path)
			return nil
		}
		if fi.Size() == 0 || (maxBytes > 0 && fi.Size() > maxBytes) {
			return nil
		}

		if !s.decodable(path) {
			s.sink.Warnf("scanner: skipping unreadable file %s", path)
			return nil
		}

		created, modified := fileTimes(fi)
		files = append(files, models.FileInfo{
			Path:         path,
			Language:     lang,
			Created:      created,
			LastModified: modified,
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// loadGitignore reads .gitignore patterns from the tree when enabled.
func (s *Scanner) loadGitignore(root string) {
	if !s.cfg.Exclude.Gitignore {
		return
	}
	fs := osfs.New(root)
	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil || len(patterns) == 0 {
		return
	}
	s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
}

func (s *Scanner) ignored(relPath string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}
	parts := strings.Split(relPath, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

func (s *Scanner) excludedDir(name string) bool {
	for _, dir := range s.cfg.Exclude.Dirs {
		if name == dir {
			return true
		}
	}
	return false
}

// excludedFile filters temp-file patterns (trailing ~, .swp, and any
// configured extras).
func (s *Scanner) excludedFile(name string) bool {
	if strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".swp") {
		return true
	}
	for _, pattern := range s.cfg.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// decodable reports whether the file reads as valid UTF-8.
func (s *Scanner) decodable(path string) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return utf8.Valid(raw)
}
