// Package report renders pipeline results in the supported output
// styles.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/nmicheli/concord/internal/pipeline"
	"github.com/nmicheli/concord/pkg/models"
)

// Style selects how results are written.
type Style string

const (
	StyleTable Style = "table"
	StyleJSON  Style = "json"
	StyleTree  Style = "tree"
	StyleCSV   Style = "csv"
)

var (
	// ErrUnsupportedStyle is returned for style names outside the
	// accepted set.
	ErrUnsupportedStyle = errors.New("unsupported output style")
	// ErrNotImplemented is returned for styles that are accepted but
	// not yet wired to a renderer.
	ErrNotImplemented = errors.New("output style not implemented")
)

// ParseStyle validates a style name. "plain" and "txt" are aliases for
// the table style.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(s) {
	case "", "table", "plain", "txt":
		return StyleTable, nil
	case "json":
		return StyleJSON, nil
	case "tree":
		return StyleTree, nil
	case "csv":
		return StyleCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedStyle, s)
	}
}

// Renderer writes result sections to a destination in one style.
type Renderer struct {
	style   Style
	writer  io.Writer
	file    *os.File
	colored bool
}

// New creates a renderer. When output names a file it is created and
// color is disabled; otherwise results go to stdout.
func New(style Style, output string, colored bool) (*Renderer, error) {
	var writer io.Writer = os.Stdout
	var file *os.File

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return nil, err
		}
		writer = f
		file = f
		colored = false
	}

	return &Renderer{
		style:   style,
		writer:  writer,
		file:    file,
		colored: colored,
	}, nil
}

// Close closes the renderer's writer if it's a file.
func (r *Renderer) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Writer returns the underlying writer.
func (r *Renderer) Writer() io.Writer {
	return r.writer
}

// Colored reports whether colored output is enabled.
func (r *Renderer) Colored() bool {
	return r.colored
}

// Render writes one section in the configured style.
func (r *Renderer) Render(s *Section) error {
	switch r.style {
	case StyleJSON:
		return r.renderJSON(s.Data)
	case StyleTree, StyleCSV:
		return fmt.Errorf("%w: %s", ErrNotImplemented, r.style)
	default:
		return s.renderTable(r.writer, r.colored)
	}
}

func (r *Renderer) renderJSON(data any) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Section is one titled table plus the structured data behind it.
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
	Data    any
}

func (s *Section) renderTable(w io.Writer, colored bool) error {
	if s.Title != "" {
		if colored {
			color.New(color.Bold).Fprintln(w, s.Title)
		} else {
			fmt.Fprintln(w, s.Title)
		}
		fmt.Fprintln(w, strings.Repeat("=", len(s.Title)))
		fmt.Fprintln(w)
	}

	if len(s.Rows) == 0 {
		fmt.Fprintln(w, "(none)")
		fmt.Fprintln(w)
		return nil
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header(s.Headers)
	for _, row := range s.Rows {
		table.Append(row)
	}
	table.Render()
	fmt.Fprintln(w)
	return nil
}

// CongruenceSection lays out the full check: one row per call site,
// and one row per definition that is never called.
func CongruenceSection(res *pipeline.Result, colored bool) *Section {
	bad := make(map[string]models.Mismatch, len(res.Mismatches))
	for _, m := range res.Mismatches {
		bad[mismatchKey(m.Function, m.File, m.Line)] = m
	}

	var rows [][]string
	for _, entry := range res.Inline {
		if len(entry.Calls) == 0 {
			rows = append(rows, []string{
				entry.Name, entry.File, strconv.Itoa(entry.Line),
				"-", "-", "-", statusCell("UNUSED", false, colored),
			})
			continue
		}
		for _, call := range entry.Calls {
			status := "OK"
			severe := false
			if m, ok := bad[mismatchKey(entry.Name, call.CallerFile, call.CallerLine)]; ok {
				status = "MISMATCH: " + m.Issue
				severe = m.Severe()
			}
			rows = append(rows, []string{
				entry.Name, entry.File, strconv.Itoa(entry.Line),
				call.CallerFile, strconv.Itoa(call.CallerLine),
				strconv.Itoa(call.ArgCount),
				statusCell(status, severe, colored),
			})
		}
	}

	return &Section{
		Title:   "Parameter Congruence",
		Headers: []string{"Function", "Defined In", "Line", "Caller", "Call Line", "Args", "Status"},
		Rows:    rows,
		Data: map[string]any{
			"unused":     res.Unused,
			"mismatches": res.Mismatches,
		},
	}
}

func statusCell(status string, severe bool, colored bool) string {
	if severe {
		status += " (severe)"
	}
	if colored && strings.HasPrefix(status, "MISMATCH") {
		return color.RedString(status)
	}
	if colored && status == "UNUSED" {
		return color.YellowString(status)
	}
	return status
}

func mismatchKey(fn, file string, line int) string {
	return fn + "\x00" + file + "\x00" + strconv.Itoa(line)
}

// DuplicatesSection lists shadowed definitions next to the file whose
// definition won. A duplicate with no recorded winner falls back to
// its own file.
func DuplicatesSection(res *pipeline.Result) *Section {
	rows := make([][]string, 0, len(res.Duplicates))
	for _, d := range res.Duplicates {
		original := d.OriginalFile
		if original == "" {
			original = d.File
		}
		rows = append(rows, []string{d.Name, d.File, strconv.Itoa(d.Line), original})
	}
	return &Section{
		Title:   "Duplicate Definitions",
		Headers: []string{"Function", "File", "Line", "Kept From"},
		Rows:    rows,
		Data:    res.Duplicates,
	}
}

// UnusedSection lists functions with no resolved call sites.
func UnusedSection(res *pipeline.Result) *Section {
	rows := make([][]string, 0, len(res.Unused))
	for _, name := range res.Unused {
		rows = append(rows, []string{name})
	}
	return &Section{
		Title:   "Unused Functions",
		Headers: []string{"Function"},
		Rows:    rows,
		Data:    res.Unused,
	}
}

// GraphSection lists every definition with its resolved call sites.
func GraphSection(res *pipeline.Result) *Section {
	var rows [][]string
	for _, entry := range res.Inline {
		if len(entry.Calls) == 0 {
			rows = append(rows, []string{entry.Name, entry.File, strconv.Itoa(entry.Line), "-", "-"})
			continue
		}
		for _, call := range entry.Calls {
			rows = append(rows, []string{
				entry.Name, entry.File, strconv.Itoa(entry.Line),
				call.CallerFile, strconv.Itoa(call.CallerLine),
			})
		}
	}
	return &Section{
		Title:   "Call Graph",
		Headers: []string{"Function", "Defined In", "Line", "Caller", "Call Line"},
		Rows:    rows,
		Data:    res.Inline,
	}
}

// ParamsSection lists every mapped function with its parameter list.
func ParamsSection(res *pipeline.Result) *Section {
	rows := make([][]string, 0, len(res.Functions))
	for _, fn := range res.Functions {
		rows = append(rows, []string{
			fn.Name, string(fn.Language), fn.File, strconv.Itoa(fn.Line),
			strings.Join(fn.Params, ", "),
		})
	}
	return &Section{
		Title:   "Function Parameters",
		Headers: []string{"Function", "Lang", "File", "Line", "Params"},
		Rows:    rows,
		Data:    res.Functions,
	}
}

// LedgerSection reports per-phase status for the run.
func LedgerSection(res *pipeline.Result, colored bool) *Section {
	rows := make([][]string, 0, len(res.Ledger))
	for _, ps := range res.Ledger {
		status := ps.Status
		if colored {
			if status == "OK" {
				status = color.GreenString(status)
			} else {
				status = color.RedString(status)
			}
		}
		rows = append(rows, []string{ps.Phase, status, ps.Detail})
	}
	return &Section{
		Title:   "Run Status",
		Headers: []string{"Phase", "Status", "Detail"},
		Rows:    rows,
		Data:    res.Ledger,
	}
}
