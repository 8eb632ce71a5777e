package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nmicheli/concord/internal/pipeline"
	"github.com/nmicheli/concord/pkg/models"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    Style
		wantErr bool
	}{
		{"", StyleTable, false},
		{"table", StyleTable, false},
		{"plain", StyleTable, false},
		{"txt", StyleTable, false},
		{"TXT", StyleTable, false},
		{"json", StyleJSON, false},
		{"tree", StyleTree, false},
		{"csv", StyleCSV, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStyle(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedStyle) {
				t.Errorf("ParseStyle(%q) err = %v, want ErrUnsupportedStyle", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseStyle(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

// renderToFile runs a section through a renderer writing to a temp
// file and returns the output.
func renderToFile(t *testing.T, style Style, s *Section) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out")
	r, err := New(style, path, true)
	if err != nil {
		t.Fatal(err)
	}
	renderErr := r.Render(s)
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw), renderErr
}

func TestRendererFileOutputDisablesColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	r, err := New(StyleTable, path, true)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.Colored() {
		t.Error("file output must disable color")
	}
}

func TestRenderNotImplementedStyles(t *testing.T) {
	for _, style := range []Style{StyleTree, StyleCSV} {
		_, err := renderToFile(t, style, &Section{Title: "x", Data: 1})
		if !errors.Is(err, ErrNotImplemented) {
			t.Errorf("style %s err = %v, want ErrNotImplemented", style, err)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := renderToFile(t, StyleJSON, &Section{
		Title: "ignored in json",
		Data:  map[string]any{"unused": []string{"f"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if _, ok := decoded["unused"]; !ok {
		t.Errorf("decoded = %v, want unused key", decoded)
	}
}

func TestRenderTable(t *testing.T) {
	out, err := renderToFile(t, StyleTable, &Section{
		Title:   "Unused Functions",
		Headers: []string{"Function"},
		Rows:    [][]string{{"lonely"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Unused Functions") || !strings.Contains(out, "lonely") {
		t.Errorf("output missing title or row:\n%s", out)
	}
}

func TestRenderEmptyTable(t *testing.T) {
	out, err := renderToFile(t, StyleTable, &Section{Title: "Empty", Headers: []string{"X"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(none)") {
		t.Errorf("empty section should say (none):\n%s", out)
	}
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Ledger: []pipeline.PhaseStatus{
			{Phase: "Scan", Status: "OK", Detail: "2 files found"},
			{Phase: "Parse", Status: "ERROR", Detail: "boom"},
		},
		Functions: []models.FunctionEntry{
			{Name: "greet", File: "a.py", Line: 1, Language: models.LangPython, Params: []string{"name"}},
			{Name: "lonely", File: "a.py", Line: 4, Language: models.LangPython},
		},
		Inline: []models.InlineEntry{
			{
				FunctionEntry: models.FunctionEntry{Name: "greet", File: "a.py", Line: 1},
				Calls: []models.CallSite{
					{CallerFile: "b.py", CallerLine: 7, ArgCount: 1},
					{CallerFile: "b.py", CallerLine: 9, ArgCount: 3},
				},
			},
			{
				FunctionEntry: models.FunctionEntry{Name: "lonely", File: "a.py", Line: 4},
				Calls:         []models.CallSite{},
			},
		},
		Unused: []string{"lonely"},
		Mismatches: []models.Mismatch{
			{Function: "greet", File: "b.py", Line: 9, Issue: "3 positional args, expected 1"},
		},
		Duplicates: []models.Duplicate{
			{Name: "greet", File: "c.php", Line: 2, OriginalFile: "a.py"},
			{Name: "greet", File: "d.php", Line: 5},
		},
	}
}

func TestCongruenceSectionRows(t *testing.T) {
	s := CongruenceSection(sampleResult(), false)

	if len(s.Rows) != 3 {
		t.Fatalf("rows = %v, want 3", s.Rows)
	}
	// Clean call site.
	if s.Rows[0][6] != "OK" {
		t.Errorf("row 0 status = %q, want OK", s.Rows[0][6])
	}
	// Mismatched call site carries the issue text.
	if want := "MISMATCH: 3 positional args, expected 1"; s.Rows[1][6] != want {
		t.Errorf("row 1 status = %q, want %q", s.Rows[1][6], want)
	}
	// Definition without calls gets its own row.
	if s.Rows[2][0] != "lonely" || s.Rows[2][6] != "UNUSED" {
		t.Errorf("row 2 = %v", s.Rows[2])
	}
}

func TestDuplicatesSectionFallback(t *testing.T) {
	s := DuplicatesSection(sampleResult())

	if s.Rows[0][3] != "a.py" {
		t.Errorf("kept-from = %q, want a.py", s.Rows[0][3])
	}
	// Missing winner falls back to the duplicate's own file.
	if s.Rows[1][3] != "d.php" {
		t.Errorf("kept-from fallback = %q, want d.php", s.Rows[1][3])
	}
}

func TestGraphSection(t *testing.T) {
	s := GraphSection(sampleResult())
	if len(s.Rows) != 3 {
		t.Fatalf("rows = %v, want 3", s.Rows)
	}
	if s.Rows[2][3] != "-" {
		t.Errorf("uncalled function should show a dash caller, got %v", s.Rows[2])
	}
}

func TestLedgerSection(t *testing.T) {
	s := LedgerSection(sampleResult(), false)
	if len(s.Rows) != 2 {
		t.Fatalf("rows = %v", s.Rows)
	}
	if s.Rows[1][1] != "ERROR" || s.Rows[1][2] != "boom" {
		t.Errorf("error row = %v", s.Rows[1])
	}
}

func TestStatusCellSevere(t *testing.T) {
	got := statusCell("MISMATCH: bad", true, false)
	if got != "MISMATCH: bad (severe)" {
		t.Errorf("got %q", got)
	}
}
