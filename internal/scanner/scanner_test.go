package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nmicheli/concord/pkg/config"
	"github.com/nmicheli/concord/pkg/models"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func paths(t *testing.T, root string, files []models.FileInfo) []string {
	t.Helper()
	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(root, f.Path)
		if err != nil {
			t.Fatal(err)
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	return rel
}

func TestScanSelectsAndOrders(t *testing.T) {
	root := writeTree(t, map[string]string{
		"zeta.py":        "def z():\n    pass\n",
		"alpha.php":      "<?php function a() {}\n",
		"sub/beta.py":    "def b():\n    pass\n",
		"notes.txt":      "prose\n",
		"stub.pyi":       "def s(): ...\n",
		"legacy.pyw":     "def w():\n    pass\n",
		"backup.py~":     "def gone():\n    pass\n",
		".alpha.php.swp": "junk",
	})

	files, err := New(config.DefaultConfig(), nil).Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	got := paths(t, root, files)
	want := []string{"alpha.php", "legacy.pyw", "stub.pyi", "sub/beta.py", "zeta.py"}
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("paths = %v, want %v", got, want)
		}
	}

	for _, f := range files {
		if f.LastModified.IsZero() {
			t.Errorf("%s has zero mod time", f.Path)
		}
	}
}

func TestScanSkipsExcludedDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"keep.py":                "def k():\n    pass\n",
		"venv/lib.py":            "def v():\n    pass\n",
		"__pycache__/cached.py":  "def c():\n    pass\n",
		"node_modules/dep.php":   "<?php function d() {}\n",
		"nested/.git/hook.py":    "def h():\n    pass\n",
	})

	files, err := New(config.DefaultConfig(), nil).Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	got := paths(t, root, files)
	if len(got) != 1 || got[0] != "keep.py" {
		t.Errorf("paths = %v, want [keep.py]", got)
	}
}

func TestScanSkipsEmptyAndOversized(t *testing.T) {
	root := writeTree(t, map[string]string{
		"empty.py": "",
		"big.py":   "# " + string(make([]byte, 4096)),
		"ok.py":    "def f():\n    pass\n",
	})

	cfg := config.DefaultConfig()
	cfg.Analysis.MaxFileSizeKB = 1

	files, err := New(cfg, nil).Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	got := paths(t, root, files)
	if len(got) != 1 || got[0] != "ok.py" {
		t.Errorf("paths = %v, want [ok.py]", got)
	}
}

func TestScanSkipsUndecodable(t *testing.T) {
	root := writeTree(t, map[string]string{"ok.py": "def f():\n    pass\n"})
	if err := os.WriteFile(filepath.Join(root, "binary.py"), []byte{0xff, 0xfe, 0x00, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := New(config.DefaultConfig(), nil).Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	got := paths(t, root, files)
	if len(got) != 1 || got[0] != "ok.py" {
		t.Errorf("paths = %v, want [ok.py]", got)
	}
}

func TestScanHonorsGitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":   "generated/\nscratch.py\n",
		"keep.py":      "def k():\n    pass\n",
		"scratch.py":   "def s():\n    pass\n",
		"generated/g.py": "def g():\n    pass\n",
	})

	files, err := New(config.DefaultConfig(), nil).Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	got := paths(t, root, files)
	if len(got) != 1 || got[0] != "keep.py" {
		t.Errorf("paths = %v, want [keep.py]", got)
	}
}

func TestScanNotADirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"f.py": "def f():\n    pass\n"})

	if _, err := New(config.DefaultConfig(), nil).Scan(filepath.Join(root, "f.py")); err == nil {
		t.Fatal("expected error for file root")
	}
	if _, err := New(config.DefaultConfig(), nil).Scan(filepath.Join(root, "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
}
