// Package extract implements the Source Parser stage: per-language
// extraction of definitions, calls, and imports into the normalized
// node model.
//
// Two variants exist behind one interface. Python uses a grammar-based
// front end (tree-sitter); PHP uses a heuristic line scanner whose
// approximations are part of the contract, not defects — downstream
// stages define their output relative to them.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nmicheli/concord/pkg/models"
)

// ErrUnreadable signals a source file that could not be read or was
// empty. The pipeline treats this as fatal for the run: files are
// filtered at listing time, so an unreadable file here means the tree
// changed underneath the analysis.
var ErrUnreadable = errors.New("source unreadable")

// Extractor extracts the normalized node sequence from one file.
// Implementations are deterministic and side-effect-free beyond file
// reads. Nodes are returned in ascending line order.
type Extractor interface {
	Extract(ctx context.Context, info models.FileInfo) ([]models.Node, error)
}

// ForLanguage returns the extractor variant for a language.
func ForLanguage(lang models.Language) (Extractor, error) {
	switch lang {
	case models.LangPython:
		return NewPython(), nil
	case models.LangPHP:
		return NewPHP(), nil
	default:
		return nil, fmt.Errorf("no extractor for language: %q", lang)
	}
}

// readSource loads a file, mapping read failures and zero-length
// content onto ErrUnreadable.
func readSource(path string) ([]byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if len(source) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", ErrUnreadable, path)
	}
	return source, nil
}
