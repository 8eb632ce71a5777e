// Package pipeline coordinates the analysis stages: Scan, Parse, Map,
// CallGraph, Check. Stages run strictly in sequence; each consumes the
// complete output of its predecessor.
//
// Every stage reports its outcome to the status ledger whether it
// succeeds or not, and the ledger travels with the result even when a
// stage aborts the run — no silent partial results.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/nmicheli/concord/internal/diag"
	"github.com/nmicheli/concord/internal/scanner"
	"github.com/nmicheli/concord/pkg/analyzer/callgraph"
	"github.com/nmicheli/concord/pkg/analyzer/congruence"
	"github.com/nmicheli/concord/pkg/analyzer/extract"
	"github.com/nmicheli/concord/pkg/analyzer/mapper"
	"github.com/nmicheli/concord/pkg/config"
	"github.com/nmicheli/concord/pkg/models"
)

// PhaseStatus is one row of the status ledger.
type PhaseStatus struct {
	Phase  string `json:"phase"`
	Status string `json:"status"` // OK or ERROR
	Detail string `json:"detail"`
}

// Options configures a pipeline run.
type Options struct {
	Config *config.Config
	Sink   diag.Sink
	// OnScan, when set, is called with the file count once the scan
	// stage completes.
	OnScan func(total int)
	// OnFileParsed, when set, is called once per file as the parse
	// stage completes it.
	OnFileParsed func()
}

// Result carries every artifact of a run plus the status ledger. All
// fields are read-only once Run returns.
type Result struct {
	Ledger      []PhaseStatus          `json:"ledger"`
	Files       []models.FileInfo      `json:"files"`
	Nodes       []models.Node          `json:"-"`
	Functions   []models.FunctionEntry `json:"functions"`
	Index       map[string]int         `json:"-"`
	Duplicates  []models.Duplicate     `json:"duplicates"`
	Graph       callgraph.Graph        `json:"call_graph"`
	Unmatched   []models.Node          `json:"unmatched"`
	Inline      []models.InlineEntry   `json:"inline"`
	Unused      []string               `json:"unused"`
	Mismatches  []models.Mismatch      `json:"mismatches"`
	Fingerprint string                 `json:"fingerprint"`
}

// DefaultWorkerMultiplier is applied to NumCPU when Workers is unset;
// 2x suits the mixed I/O and CGO parse workload.
const DefaultWorkerMultiplier = 2

// Run executes the pipeline over root. On stage failure the partial
// Result — ledger included — is returned alongside the error.
//
// Input validation (unknown mapper mode or match strategy) fails
// before any work begins and returns a nil Result.
func Run(ctx context.Context, root string, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	sink := opts.Sink
	if sink == nil {
		sink = diag.Discard{}
	}

	mode := mapper.Mode(cfg.Analysis.Mode)
	switch mode {
	case mapper.ModeFull, mapper.ModeLight, mapper.ModeDocOnly:
	default:
		return nil, mapper.ErrInvalidMode{Mode: mode}
	}
	strategy, err := callgraph.StrategyByName(cfg.Analysis.MatchStrategy)
	if err != nil {
		return nil, err
	}

	res := &Result{}

	// Scan
	files, err := scanner.New(cfg, sink).Scan(root)
	if err != nil {
		res.fail("Scan", err)
		return res, err
	}
	res.Files = files
	res.ok("Scan", fmt.Sprintf("%d files found", len(files)))
	if opts.OnScan != nil {
		opts.OnScan(len(files))
	}

	// Parse
	nodes, err := parseAll(ctx, files, cfg, opts.OnFileParsed)
	if err != nil {
		res.fail("Parse", err)
		return res, err
	}
	res.Nodes = nodes
	res.ok("Parse", fmt.Sprintf("%d nodes extracted", len(nodes)))

	// Map
	mapped, err := mapper.Map(nodes, mode)
	if err != nil {
		res.fail("Map", err)
		return res, err
	}
	mapper.ApplyFileInfo(mapped.Functions, files)
	res.Functions = mapped.Functions
	res.Index = mapped.Index
	res.Duplicates = mapped.Duplicates
	res.ok("Map", fmt.Sprintf("%d functions mapped, %d duplicates", len(mapped.Functions), len(mapped.Duplicates)))

	// CallGraph
	graph, unmatched := callgraph.Build(nodes, mapped.Index, strategy)
	res.Graph = graph
	res.Unmatched = unmatched
	res.Inline = callgraph.Inline(mapped.Functions, graph)
	res.ok("CallGraph", fmt.Sprintf("%d matched names, %d unmatched calls", len(graph), len(unmatched)))

	// Check
	unused, mismatches := congruence.Check(mapped.Functions, graph)
	res.Unused = unused
	res.Mismatches = mismatches
	res.Fingerprint = res.fingerprint()
	res.ok("Check", fmt.Sprintf("%d unused, %d mismatches, digest %s", len(unused), len(mismatches), res.Fingerprint))

	return res, nil
}

// parseAll extracts nodes from every listed file. Per-file parsing is
// embarrassingly parallel, but results are folded back into the
// listing's lexicographic order before being handed to the mapper —
// that order decides which duplicate is canonical. Any extraction
// failure is fatal for the run: files were already filtered at listing
// time, so failure here means the tree changed underneath us.
func parseAll(ctx context.Context, files []models.FileInfo, cfg *config.Config, onParsed func()) ([]models.Node, error) {
	if len(files) == 0 {
		return nil, nil
	}

	workers := cfg.Analysis.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}
	timeout := time.Duration(cfg.Analysis.FileTimeoutSec) * time.Second

	byFile := make([][]models.Node, len(files))

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx).WithCancelOnError()
	for i, f := range files {
		p.Go(func(ctx context.Context) error {
			ex, err := extract.ForLanguage(f.Language)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Path, err)
			}

			fileCtx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				fileCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			nodes, err := ex.Extract(fileCtx, f)
			if err != nil {
				return err
			}
			byFile[i] = nodes
			if onParsed != nil {
				onParsed()
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	var all []models.Node
	for _, nodes := range byFile {
		all = append(all, nodes...)
	}
	return all, nil
}

// fingerprint digests the run's artifacts so two runs over an
// unchanged tree can be compared for byte-identical output.
func (r *Result) fingerprint() string {
	payload := struct {
		Functions  []models.FunctionEntry `json:"functions"`
		Graph      callgraph.Graph        `json:"graph"`
		Unused     []string               `json:"unused"`
		Mismatches []models.Mismatch      `json:"mismatches"`
		Duplicates []models.Duplicate     `json:"duplicates"`
	}{r.Functions, r.Graph, r.Unused, r.Mismatches, r.Duplicates}

	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

func (r *Result) ok(phase, detail string) {
	r.Ledger = append(r.Ledger, PhaseStatus{Phase: phase, Status: "OK", Detail: detail})
}

func (r *Result) fail(phase string, err error) {
	r.Ledger = append(r.Ledger, PhaseStatus{Phase: phase, Status: "ERROR", Detail: err.Error()})
}

// AppendStatus lets the caller extend the ledger with phases outside
// the pipeline's scope (rendering, for instance).
func (r *Result) AppendStatus(phase, status, detail string) {
	r.Ledger = append(r.Ledger, PhaseStatus{Phase: phase, Status: status, Detail: detail})
}
