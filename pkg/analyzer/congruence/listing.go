package congruence

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/nmicheli/concord/pkg/models"
)

// listingRe matches one textual call of the literal form
// funcname(arg1, arg2, ...).
var listingRe = regexp.MustCompile(`^(\w+)\s*\((.*)\)`)

// BuildParamMap derives a name -> expected-parameter-count map from
// the function table, for use with CheckListing.
func BuildParamMap(functions []models.FunctionEntry) map[string]int {
	m := make(map[string]int, len(functions))
	for _, fn := range functions {
		m[fn.Name] = len(fn.Params)
	}
	return m
}

// CheckListing checks a textual call-listing file against expected
// parameter counts, reporting line-numbered discrepancies.
//
// This utility shares the domain of the pipeline but not its
// architecture: it is never invoked by the pipeline and consumes flat
// text, not parsed nodes. Blank lines, non-conforming lines, and
// unknown function names are ignored.
func CheckListing(path string, paramMap map[string]int) ([]models.Discrepancy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open call listing: %w", err)
	}
	defer f.Close()

	var discrepancies []models.Discrepancy
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		m := listingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name, rawArgs := m[1], m[2]
		passed := 0
		if strings.TrimSpace(rawArgs) != "" {
			passed = len(strings.Split(rawArgs, ","))
		}

		expected, known := paramMap[name]
		if !known {
			continue
		}

		if passed != expected {
			discrepancies = append(discrepancies, models.Discrepancy{
				LineNum:  lineNum,
				Function: name,
				Expected: expected,
				Passed:   passed,
				LineText: line,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read call listing: %w", err)
	}
	return discrepancies, nil
}
