// Package congruence checks declared parameter lists against the
// argument shapes observed at call sites.
//
// Findings are heuristic and unsound by design: variadic parameters,
// reflection, and the PHP front end's attribution and default-value
// quirks all produce expected false positives.
package congruence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nmicheli/concord/pkg/analyzer/callgraph"
	"github.com/nmicheli/concord/pkg/models"
)

// Check walks the call graph against the function table.
//
// A function with no call-graph entry goes to unused and is skipped
// entirely — an unused definition cannot be mismatched. For every call
// site of a used function, the arity check and the unknown-keyword
// check each may emit one Mismatch. Results are deduplicated by
// (function, file, line, issue); mismatches sort ascending by
// (file, line, function) and unused names sort ascending.
func Check(functions []models.FunctionEntry, graph callgraph.Graph) ([]string, []models.Mismatch) {
	var unused []string
	var raw []models.Mismatch

	for _, fn := range functions {
		calls := graph[fn.Name]
		if len(calls) == 0 {
			unused = append(unused, fn.Name)
			continue
		}

		expected := len(fn.Params)
		allowed := make(map[string]bool, expected)
		for _, p := range fn.Params {
			allowed[p] = true
		}

		for _, c := range calls {
			if c.ArgCount != expected {
				raw = append(raw, models.Mismatch{
					Function: fn.Name,
					File:     c.CallerFile,
					Line:     c.CallerLine,
					Issue:    fmt.Sprintf("%d positional args, expected %d", c.ArgCount, expected),
				})
			}

			var bad []string
			for _, kw := range c.Keywords {
				if !allowed[kw] {
					bad = append(bad, kw)
				}
			}
			if len(bad) > 0 {
				sort.Strings(bad)
				raw = append(raw, models.Mismatch{
					Function: fn.Name,
					File:     c.CallerFile,
					Line:     c.CallerLine,
					Issue:    "unknown keyword(s): " + strings.Join(bad, ", "),
				})
			}
		}
	}

	return dedupeNames(unused), dedupeMismatches(raw)
}

func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

type mismatchKey struct {
	function string
	file     string
	line     int
	issue    string
}

func dedupeMismatches(raw []models.Mismatch) []models.Mismatch {
	seen := make(map[mismatchKey]bool, len(raw))
	out := make([]models.Mismatch, 0, len(raw))
	for _, m := range raw {
		k := mismatchKey{m.Function, m.File, m.Line, m.Issue}
		if !seen[k] {
			seen[k] = true
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Function < out[j].Function
	})
	return out
}
