package main

import (
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/nmicheli/concord/internal/diag"
	"github.com/nmicheli/concord/internal/pipeline"
	"github.com/nmicheli/concord/internal/progress"
	"github.com/nmicheli/concord/internal/report"
	"github.com/nmicheli/concord/pkg/analyzer/congruence"
	"github.com/nmicheli/concord/pkg/config"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

// runAnalysis executes the pipeline for a command. Style and config
// problems surface before any file is touched. On pipeline failure the
// partial result is still returned so the caller can print the ledger.
func runAnalysis(c *cli.Context) (*pipeline.Result, *report.Renderer, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	format := cfg.Output.Format
	if f := c.String("format"); f != "" {
		format = f
	}
	style, err := report.ParseStyle(format)
	if err != nil {
		return nil, nil, err
	}

	renderer, err := report.New(style, c.String("output"), cfg.Output.Color)
	if err != nil {
		return nil, nil, err
	}

	var tracker *progress.Tracker
	res, runErr := pipeline.Run(c.Context, getPath(c), pipeline.Options{
		Config: cfg,
		Sink:   diag.NewConsole(os.Stderr, cfg.Output.Color),
		OnScan: func(total int) {
			tracker = progress.NewTracker("Parsing files...", total)
		},
		OnFileParsed: func() {
			if tracker != nil {
				tracker.Tick()
			}
		},
	})
	if tracker != nil {
		if runErr != nil {
			tracker.FinishError(runErr)
		} else {
			tracker.Finish()
		}
	}
	return res, renderer, runErr
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Run the full congruence check: unused, duplicates, and call mismatches",
		ArgsUsage: "[path]",
		Action:    runCheckCmd,
	}
}

func runCheckCmd(c *cli.Context) error {
	res, renderer, err := runAnalysis(c)
	if renderer != nil {
		defer renderer.Close()
	}
	// The status ledger is printed even when a stage failed.
	if res != nil && renderer != nil {
		if rerr := renderer.Render(report.LedgerSection(res, renderer.Colored())); rerr != nil && err == nil {
			err = rerr
		}
	}
	if err != nil {
		return err
	}

	for _, section := range []*report.Section{
		report.CongruenceSection(res, renderer.Colored()),
		report.DuplicatesSection(res),
	} {
		if err := renderer.Render(section); err != nil {
			return err
		}
	}
	return nil
}

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Usage:     "Print every function with its resolved call sites",
		ArgsUsage: "[path]",
		Action:    sectionAction(report.GraphSection),
	}
}

func duplicatesCmd() *cli.Command {
	return &cli.Command{
		Name:      "duplicates",
		Aliases:   []string{"dup"},
		Usage:     "List function names defined more than once",
		ArgsUsage: "[path]",
		Action:    sectionAction(report.DuplicatesSection),
	}
}

func unusedCmd() *cli.Command {
	return &cli.Command{
		Name:      "unused",
		Usage:     "List functions with no resolved call sites",
		ArgsUsage: "[path]",
		Action:    sectionAction(report.UnusedSection),
	}
}

// sectionAction builds an action that runs the pipeline and renders a
// single section. The ledger is prepended in verbose mode, and on a
// stage failure it is still rendered before the error is returned.
func sectionAction(build func(*pipeline.Result) *report.Section) cli.ActionFunc {
	return func(c *cli.Context) error {
		res, renderer, err := runAnalysis(c)
		if renderer != nil {
			defer renderer.Close()
		}
		if err != nil {
			renderLedgerOnFailure(res, renderer)
			return err
		}
		if c.Bool("verbose") {
			if err := renderer.Render(report.LedgerSection(res, renderer.Colored())); err != nil {
				return err
			}
		}
		return renderer.Render(build(res))
	}
}

// renderLedgerOnFailure prints the partial result's ledger when a
// stage failed; the stage error stays the reported one.
func renderLedgerOnFailure(res *pipeline.Result, renderer *report.Renderer) {
	if res == nil || renderer == nil {
		return
	}
	_ = renderer.Render(report.LedgerSection(res, renderer.Colored()))
}

func paramsCmd() *cli.Command {
	return &cli.Command{
		Name:      "params",
		Usage:     "Print function parameter lists, optionally verified against a listing file",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listing",
				Aliases: []string{"l"},
				Usage:   "Verify a name(args) listing file against the mapped parameter counts",
			},
		},
		Action: runParamsCmd,
	}
}

func runParamsCmd(c *cli.Context) error {
	res, renderer, err := runAnalysis(c)
	if renderer != nil {
		defer renderer.Close()
	}
	if err != nil {
		renderLedgerOnFailure(res, renderer)
		return err
	}

	if listing := c.String("listing"); listing != "" {
		paramMap := congruence.BuildParamMap(res.Functions)
		discrepancies, err := congruence.CheckListing(listing, paramMap)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(discrepancies))
		for _, d := range discrepancies {
			rows = append(rows, []string{
				strconv.Itoa(d.LineNum), d.Function,
				strconv.Itoa(d.Expected), strconv.Itoa(d.Passed),
				d.LineText,
			})
		}
		return renderer.Render(&report.Section{
			Title:   "Listing Discrepancies",
			Headers: []string{"Line", "Function", "Expected", "Passed", "Text"},
			Rows:    rows,
			Data:    discrepancies,
		})
	}

	return renderer.Render(report.ParamsSection(res))
}
