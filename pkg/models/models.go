// Package models defines the shared data model for the analysis
// pipeline: parsed nodes, the deduplicated function table, call sites,
// and the findings produced by the congruence checker.
//
// Every type here is a build-once artifact: a stage constructs it,
// hands it to the next stage, and nothing mutates it afterwards.
package models

import (
	"strings"
	"time"
)

// Language identifies a supported source language.
type Language string

const (
	LangPython  Language = "py"
	LangPHP     Language = "php"
	LangUnknown Language = ""
)

// FileInfo describes one source file selected for analysis.
type FileInfo struct {
	Path         string    `json:"path"`
	Language     Language  `json:"language"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
}

// NodeKind discriminates the variants of Node.
type NodeKind string

const (
	KindDefinition NodeKind = "definition"
	KindCall       NodeKind = "call"
	KindImport     NodeKind = "import"
)

// Node is one normalized unit of extracted information. Both front
// ends emit the same shape; which fields are meaningful depends on
// Kind:
//
//   - KindDefinition: Name, Class, Line, Params, BodyCalls, Docstring
//   - KindCall: Name (callee), Line, Args, Keywords
//   - KindImport: Name (imported name)
//
// Nodes from one file are emitted in ascending line order, and the
// project-wide node sequence preserves lexicographic file order.
type Node struct {
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name"`
	Class    string   `json:"class,omitempty"`
	Line     int      `json:"line,omitempty"`
	File     string   `json:"file"`
	Language Language `json:"language,omitempty"`

	// Definition fields.
	Params    []string `json:"params,omitempty"`
	BodyCalls []string `json:"body_calls,omitempty"`
	Docstring string   `json:"docstring,omitempty"`

	// Call fields. Args holds the raw argument text in source order;
	// Keywords holds recognized keyword-argument names and stays empty
	// for front ends that cannot recognize keywords.
	Args     []string `json:"args,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// FunctionEntry is the canonical record for one function name across
// the whole tree. Exactly one entry exists per name; later definitions
// of the same name become Duplicates instead.
//
// Params, BodyCalls, ImportsUsed, and Docstring are populated
// according to the mapper mode that built the entry.
type FunctionEntry struct {
	Name         string    `json:"name"`
	Class        string    `json:"class,omitempty"`
	Line         int       `json:"line"`
	File         string    `json:"file"`
	Language     Language  `json:"language"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
	Params       []string  `json:"params,omitempty"`
	BodyCalls    []string  `json:"body_calls,omitempty"`
	ImportsUsed  []string  `json:"imports_used,omitempty"`
	Docstring    string    `json:"docstring,omitempty"`
}

// Duplicate records a definition whose name was already taken by an
// earlier definition in file order. OriginalFile points at the file
// holding the canonical entry; it is derivable at detection time and
// carried here so renderers need no fallback.
type Duplicate struct {
	Name         string `json:"name"`
	File         string `json:"file"`
	Line         int    `json:"line"`
	OriginalFile string `json:"original_file,omitempty"`
}

// CallSite is one observed invocation of a function, attached under
// the callee's name in the call graph.
type CallSite struct {
	CallerFile string   `json:"caller_file"`
	CallerLine int      `json:"caller_line"`
	ArgCount   int      `json:"arg_count"`
	Args       []string `json:"args,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// InlineEntry joins a FunctionEntry with its observed call sites; it
// is the primary structure consumed by the checker and the renderer.
type InlineEntry struct {
	FunctionEntry
	Calls []CallSite `json:"calls"`
}

// Mismatch reports one call site whose argument shape disagrees with
// the declared parameters of the function it invokes.
//
// Actual and Expected are optional: the congruence checker shipped
// here leaves them nil, but alternate producers feeding the same
// renderer may populate them to trigger the severity rule.
type Mismatch struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Issue    string `json:"issue"`
	Actual   *int   `json:"actual,omitempty"`
	Expected *int   `json:"expected,omitempty"`
}

// Severe reports whether a mismatch warrants heightened visibility:
// the issue mentions an undefined symbol, or the arity delta exceeds
// one. Findings from the built-in checker are never severe; the rule
// exists for richer producers that fill Actual/Expected.
func (m Mismatch) Severe() bool {
	if strings.Contains(strings.ToLower(m.Issue), "undefined") {
		return true
	}
	if m.Actual != nil && m.Expected != nil {
		delta := *m.Actual - *m.Expected
		if delta < 0 {
			delta = -delta
		}
		return delta > 1
	}
	return false
}

// Discrepancy is one line-numbered finding from the standalone
// calls-listing checker. It shares the domain of Mismatch but not the
// pipeline: listing checks never feed the call graph.
type Discrepancy struct {
	LineNum  int    `json:"line_num"`
	Function string `json:"function"`
	Expected int    `json:"expected"`
	Passed   int    `json:"passed"`
	LineText string `json:"line_text"`
}
