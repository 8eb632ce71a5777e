// Package callgraph matches call nodes against the function table and
// builds the name-keyed adjacency structure consumed by the congruence
// checker and the report renderer.
package callgraph

import (
	"fmt"

	"github.com/nmicheli/concord/pkg/models"
)

// Graph maps a function name to its observed call sites, in source
// order.
type Graph map[string][]models.CallSite

// MatchStrategy resolves a call node to zero or one function entries.
// The flat-namespace exact matcher is the only strategy shipped;
// scope-aware strategies can plug in without touching the rest of the
// pipeline.
type MatchStrategy interface {
	// Name identifies the strategy.
	Name() string
	// Match returns the matched function name and whether a match
	// exists.
	Match(call models.Node, index map[string]int) (string, bool)
}

// ExactName matches a call iff its callee name equals a table entry's
// name exactly — case-sensitive, ignoring enclosing class and file.
type ExactName struct{}

func (ExactName) Name() string { return "exact_name" }

func (ExactName) Match(call models.Node, index map[string]int) (string, bool) {
	_, ok := index[call.Name]
	return call.Name, ok
}

// StrategyByName returns the strategy registered under name.
func StrategyByName(name string) (MatchStrategy, error) {
	switch name {
	case "exact_name":
		return ExactName{}, nil
	default:
		return nil, fmt.Errorf("unknown match strategy: %q", name)
	}
}

// Build walks the node sequence and attaches a CallSite under the
// callee's name for every matched call. Calls with no matching entry
// are returned as unmatched — builtins, library calls, and dynamic
// dispatch all land there, and none of them is an error.
func Build(nodes []models.Node, index map[string]int, strategy MatchStrategy) (Graph, []models.Node) {
	graph := make(Graph)
	var unmatched []models.Node

	for _, n := range nodes {
		if n.Kind != models.KindCall {
			continue
		}

		name, ok := strategy.Match(n, index)
		if !ok {
			unmatched = append(unmatched, n)
			continue
		}

		graph[name] = append(graph[name], models.CallSite{
			CallerFile: n.File,
			CallerLine: n.Line,
			ArgCount:   len(n.Args),
			Args:       append([]string(nil), n.Args...),
			Keywords:   append([]string(nil), n.Keywords...),
		})
	}

	return graph, unmatched
}

// Inline joins each function entry with its call sites. It is a pure
// join: no matching logic, no filtering. Entries without calls carry
// an empty (non-nil) slice.
func Inline(functions []models.FunctionEntry, graph Graph) []models.InlineEntry {
	inline := make([]models.InlineEntry, 0, len(functions))
	for _, fn := range functions {
		calls := graph[fn.Name]
		if calls == nil {
			calls = []models.CallSite{}
		}
		inline = append(inline, models.InlineEntry{
			FunctionEntry: fn,
			Calls:         calls,
		})
	}
	return inline
}
