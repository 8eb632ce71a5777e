// Package mapper aggregates the project-wide node sequence into the
// deduplicated function table.
//
// Deduplication is first-seen-wins over a flat, cross-file namespace:
// the node sequence arrives in lexicographic file order, so the
// canonical entry for a name is its first definition in that order.
// Every later definition of the same name — regardless of file, class,
// or language — becomes a Duplicate record.
package mapper

import (
	"fmt"

	"github.com/nmicheli/concord/pkg/models"
)

// Mode controls which optional fields populate each FunctionEntry.
type Mode string

const (
	// ModeFull includes signature, body-call names, imports-used, and
	// docstring.
	ModeFull Mode = "full"
	// ModeLight includes signature and body-call names only.
	ModeLight Mode = "light"
	// ModeDocOnly includes docstring only.
	ModeDocOnly Mode = "doc_only"
)

// ErrInvalidMode reports a mode outside {full, light, doc_only}.
type ErrInvalidMode struct {
	Mode Mode
}

func (e ErrInvalidMode) Error() string {
	return fmt.Sprintf("invalid mapper mode: %q (must be full, light, or doc_only)", e.Mode)
}

// Result holds the mapper's output. Functions contains at most one
// entry per name; Index maps each name to its position in Functions.
type Result struct {
	Functions  []models.FunctionEntry
	Index      map[string]int
	Duplicates []models.Duplicate
}

// Map builds the function table from the full project node sequence.
//
// The first pass groups Import nodes by file, preserving insertion
// order and retaining duplicates. The second pass walks Definition
// nodes in the given global order and applies first-seen-wins
// deduplication. The invariant len(Functions)+len(Duplicates) equals
// the number of Definition nodes.
func Map(nodes []models.Node, mode Mode) (*Result, error) {
	switch mode {
	case ModeFull, ModeLight, ModeDocOnly:
	default:
		return nil, ErrInvalidMode{Mode: mode}
	}

	importsByFile := make(map[string][]string)
	for _, n := range nodes {
		if n.Kind == models.KindImport {
			importsByFile[n.File] = append(importsByFile[n.File], n.Name)
		}
	}

	res := &Result{Index: make(map[string]int)}
	canonicalFile := make(map[string]string)

	for _, n := range nodes {
		if n.Kind != models.KindDefinition {
			continue
		}

		if orig, seen := canonicalFile[n.Name]; seen {
			res.Duplicates = append(res.Duplicates, models.Duplicate{
				Name:         n.Name,
				File:         n.File,
				Line:         n.Line,
				OriginalFile: orig,
			})
			continue
		}
		canonicalFile[n.Name] = n.File

		entry := models.FunctionEntry{
			Name:     n.Name,
			Class:    n.Class,
			Line:     n.Line,
			File:     n.File,
			Language: n.Language,
		}

		if mode == ModeFull || mode == ModeLight {
			entry.Params = append([]string(nil), n.Params...)
			entry.BodyCalls = append([]string(nil), n.BodyCalls...)
		}
		if mode == ModeFull {
			entry.ImportsUsed = append([]string(nil), importsByFile[n.File]...)
		}
		if mode == ModeFull || mode == ModeDocOnly {
			entry.Docstring = n.Docstring
		}

		res.Index[n.Name] = len(res.Functions)
		res.Functions = append(res.Functions, entry)
	}

	return res, nil
}

// ApplyFileInfo copies filesystem metadata from the listed files onto
// the matching function entries. Entries whose file is not in the
// listing keep zero times.
func ApplyFileInfo(functions []models.FunctionEntry, files []models.FileInfo) {
	byPath := make(map[string]models.FileInfo, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}
	for i := range functions {
		if info, ok := byPath[functions[i].File]; ok {
			functions[i].Created = info.Created
			functions[i].LastModified = info.LastModified
			if info.Language != models.LangUnknown {
				functions[i].Language = info.Language
			}
		}
	}
}
