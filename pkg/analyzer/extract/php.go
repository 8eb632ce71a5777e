package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/nmicheli/concord/pkg/models"
)

// PHPExtractor is the heuristic line-scanner front end. It keeps one
// piece of state, the currently open definition, and attributes every
// call-like token to it until the next definition line — with no
// brace or indentation tracking. The approximations here (single open
// definition, first-`)` argument capture, last-token parameter
// extraction) are contractual: downstream output is defined relative
// to them, so they must not be "fixed".
type PHPExtractor struct{}

var (
	phpDefRe  = regexp.MustCompile(`(?i)^\s*(?:public|protected|private|static|\s)*function\s+&?\s*([A-Za-z_]\w*)\s*\(([^)]*)\)`)
	phpCallRe = regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`)
	phpArgsRe = regexp.MustCompile(`^\s*([^)]*)\)`)
)

// phpBlockList holds control-flow and language keywords that look like
// calls to the call pattern.
var phpBlockList = map[string]bool{
	"if":     true,
	"while":  true,
	"for":    true,
	"switch": true,
	"echo":   true,
	"return": true,
	"array":  true,
}

// NewPHP creates the PHP extractor.
func NewPHP() *PHPExtractor {
	return &PHPExtractor{}
}

// Extract implements Extractor.
func (e *PHPExtractor) Extract(ctx context.Context, info models.FileInfo) ([]models.Node, error) {
	source, err := readSource(info.Path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var nodes []models.Node
	currentDef := -1 // index into nodes of the open definition

	for lineIdx, line := range strings.Split(string(source), "\n") {
		lineno := lineIdx + 1

		if m := phpDefRe.FindStringSubmatch(line); m != nil {
			nodes = append(nodes, models.Node{
				Kind:     models.KindDefinition,
				Name:     m[1],
				Line:     lineno,
				File:     info.Path,
				Language: models.LangPHP,
				Params:   phpParams(m[2]),
			})
			currentDef = len(nodes) - 1
			continue
		}

		for _, loc := range phpCallRe.FindAllStringSubmatchIndex(line, -1) {
			name := line[loc[2]:loc[3]]
			if phpBlockList[strings.ToLower(name)] {
				continue
			}

			nodes = append(nodes, models.Node{
				Kind:     models.KindCall,
				Name:     name,
				Line:     lineno,
				File:     info.Path,
				Language: models.LangPHP,
				Args:     phpArgs(line[loc[1]:]),
				// Keywords stays empty: this front end cannot
				// recognize keyword arguments.
			})
			if currentDef >= 0 {
				nodes[currentDef].BodyCalls = append(nodes[currentDef].BodyCalls, name)
			}
		}
	}

	return nodes, nil
}

// phpParams splits the raw parameter text on commas and keeps the last
// whitespace-separated token of each segment. A parameter written as
// `int $x = 3` therefore yields "3", not "$x" — a known quirk that is
// reproduced, not corrected.
func phpParams(raw string) []string {
	var params []string
	for _, seg := range strings.Split(raw, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		fields := strings.Fields(seg)
		params = append(params, fields[len(fields)-1])
	}
	return params
}

// phpArgs captures everything up to the first `)` after the opening
// paren, with no awareness of nested parentheses or string literals.
// An empty argument list yields a single empty-string argument, which
// the original scanner also produced.
func phpArgs(rest string) []string {
	m := phpArgsRe.FindStringSubmatch(rest)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	args := make([]string, len(parts))
	for i, a := range parts {
		args[i] = strings.TrimSpace(a)
	}
	return args
}
