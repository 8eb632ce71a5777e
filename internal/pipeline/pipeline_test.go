package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmicheli/concord/pkg/config"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// mixedTree exercises both front ends: a Python definition called
// correctly and incorrectly, a PHP definition shadowing it, and an
// uncalled function.
func mixedTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"a.py": `def greet(name, greeting):
    pass

def lonely():
    pass

greet("bob", "hi")
greet("eve")
`,
		"b.php": `<?php
function greet($who) {
}
`,
	})
}

func TestRun(t *testing.T) {
	root := mixedTree(t)

	var parsed atomic.Int64
	var scanned int
	res, err := Run(context.Background(), root, Options{
		OnScan:       func(total int) { scanned = total },
		OnFileParsed: func() { parsed.Add(1) },
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 2, scanned)
	assert.EqualValues(t, 2, parsed.Load())

	// Five OK phases in order.
	var phases []string
	for _, ps := range res.Ledger {
		assert.Equal(t, "OK", ps.Status, ps.Phase)
		phases = append(phases, ps.Phase)
	}
	assert.Equal(t, []string{"Scan", "Parse", "Map", "CallGraph", "Check"}, phases)

	// a.py wins the name collision; b.php's greet is a duplicate.
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, "greet", res.Duplicates[0].Name)
	assert.Equal(t, filepath.Join(root, "a.py"), res.Duplicates[0].OriginalFile)

	assert.Equal(t, []string{"lonely"}, res.Unused)

	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, "1 positional args, expected 2", res.Mismatches[0].Issue)

	assert.NotEmpty(t, res.Fingerprint)
}

func TestRunDeterministic(t *testing.T) {
	root := mixedTree(t)

	first, err := Run(context.Background(), root, Options{})
	require.NoError(t, err)
	second, err := Run(context.Background(), root, Options{})
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.Functions, second.Functions)
	assert.Equal(t, first.Mismatches, second.Mismatches)
}

func TestRunValidatesBeforeWork(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.Mode = "turbo"

	res, err := Run(context.Background(), t.TempDir(), Options{Config: cfg})
	require.Error(t, err)
	assert.Nil(t, res, "validation failures return no partial result")

	cfg = config.DefaultConfig()
	cfg.Analysis.MatchStrategy = "fuzzy"
	_, err = Run(context.Background(), t.TempDir(), Options{Config: cfg})
	require.Error(t, err)
}

// A file that vanishes between listing and parsing is fatal: the run
// aborts with a Parse ERROR row, and the partial result keeps the
// successful Scan row.
func TestRunParseFailureKeepsLedger(t *testing.T) {
	root := writeTree(t, map[string]string{
		"keep.py": "def k():\n    pass\n",
		"gone.py": "def g():\n    pass\n",
	})

	res, err := Run(context.Background(), root, Options{
		// Listing is done by the time OnScan fires; deleting here
		// mimics the tree changing underneath the parse stage.
		OnScan: func(int) {
			require.NoError(t, os.Remove(filepath.Join(root, "gone.py")))
		},
	})
	require.Error(t, err)
	require.NotNil(t, res, "stage failures return the partial result")

	require.Len(t, res.Ledger, 2)
	assert.Equal(t, "Scan", res.Ledger[0].Phase)
	assert.Equal(t, "OK", res.Ledger[0].Status)
	assert.Equal(t, "Parse", res.Ledger[1].Phase)
	assert.Equal(t, "ERROR", res.Ledger[1].Status)
	assert.Contains(t, res.Ledger[1].Detail, "gone.py")

	assert.Len(t, res.Files, 2, "the listing is kept on the result")
	assert.Empty(t, res.Functions, "no later stage ran")
}

func TestRunScanFailureKeepsLedger(t *testing.T) {
	res, err := Run(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	require.Error(t, err)
	require.NotNil(t, res, "stage failures return the partial result")

	require.Len(t, res.Ledger, 1)
	assert.Equal(t, "Scan", res.Ledger[0].Phase)
	assert.Equal(t, "ERROR", res.Ledger[0].Status)
	assert.NotEmpty(t, res.Ledger[0].Detail)
}

func TestRunEmptyTree(t *testing.T) {
	res, err := Run(context.Background(), t.TempDir(), Options{})
	require.NoError(t, err)

	assert.Empty(t, res.Files)
	assert.Empty(t, res.Functions)
	assert.Len(t, res.Ledger, 5)
}

func TestAppendStatus(t *testing.T) {
	res := &Result{}
	res.AppendStatus("Report", "OK", "2 sections")
	require.Len(t, res.Ledger, 1)
	assert.Equal(t, PhaseStatus{Phase: "Report", Status: "OK", Detail: "2 sections"}, res.Ledger[0])
}
