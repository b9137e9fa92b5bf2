// Package dataset reads tabular gas-exchange data into curves.
//
// Input is CSV with one row per observation and a configurable mapping from
// physiological quantities to column names (VarNames), defaulting to the
// common LI-COR spreadsheet headers. Rows sharing a value in the grouping
// column form one curve, in first-appearance order.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/leafgas/photofit/errs"
	"github.com/leafgas/photofit/fit"
)

// VarNames maps physiological quantities to column names in the input table.
// ALeaf and Ci are required; Tleaf, PPFD and Rd are optional and default to
// unmeasured when their column is absent or empty. A non-empty Group must
// name a column present in the table; an empty Group reads the whole table
// as one curve.
type VarNames struct {
	ALeaf string `yaml:"aleaf"`
	Ci    string `yaml:"ci"`
	Tleaf string `yaml:"tleaf"`
	PPFD  string `yaml:"ppfd"`
	Rd    string `yaml:"rd"`
	Group string `yaml:"group"`
}

// DefaultVarNames returns the conventional LI-COR column names.
func DefaultVarNames() VarNames {
	return VarNames{
		ALeaf: "Photo",
		Ci:    "Ci",
		Tleaf: "Tleaf",
		PPFD:  "PARi",
		Rd:    "Rd",
		Group: "Curve",
	}
}

// singleCurveID labels the curve when no grouping column is configured.
const singleCurveID = "curve"

// ReadCSV parses a gas-exchange table into curves grouped by the grouping
// column. Column lookup is case-insensitive. An empty Group name puts every
// row into one curve; a non-empty Group naming an absent column is an error,
// not a silent collapse into one curve. Missing optional columns and blank
// cells read as unmeasured (NaN); an unparsable required cell is an error
// naming the row.
func ReadCSV(r io.Reader, names VarNames) ([]*fit.Curve, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	find := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := cols[strings.ToLower(name)]; ok {
			return i
		}

		return -1
	}

	aCol := find(names.ALeaf)
	ciCol := find(names.Ci)
	if aCol < 0 {
		return nil, fmt.Errorf("%w: %q", errs.ErrMissingColumn, names.ALeaf)
	}
	if ciCol < 0 {
		return nil, fmt.Errorf("%w: %q", errs.ErrMissingColumn, names.Ci)
	}

	tleafCol := find(names.Tleaf)
	ppfdCol := find(names.PPFD)
	rdCol := find(names.Rd)
	groupCol := find(names.Group)
	if names.Group != "" && groupCol < 0 {
		return nil, fmt.Errorf("%w: grouping column %q (use an empty group name for ungrouped input)", errs.ErrMissingColumn, names.Group)
	}

	var order []string
	curves := make(map[string]*fit.Curve)

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", row, err)
		}

		a, err := parseCell(record, aCol, true)
		if err != nil {
			return nil, fmt.Errorf("row %d, column %q: %w", row, names.ALeaf, err)
		}
		ci, err := parseCell(record, ciCol, true)
		if err != nil {
			return nil, fmt.Errorf("row %d, column %q: %w", row, names.Ci, err)
		}

		tleaf, _ := parseCell(record, tleafCol, false)
		ppfd, _ := parseCell(record, ppfdCol, false)
		rd, _ := parseCell(record, rdCol, false)

		id := singleCurveID
		if groupCol >= 0 && groupCol < len(record) {
			if g := strings.TrimSpace(record[groupCol]); g != "" {
				id = g
			}
		}

		curve, ok := curves[id]
		if !ok {
			curve = &fit.Curve{ID: id}
			curves[id] = curve
			order = append(order, id)
		}
		curve.Obs = append(curve.Obs, fit.Observation{
			Ci:    ci,
			A:     a,
			Tleaf: tleaf,
			PPFD:  ppfd,
			Rd:    rd,
		})
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("%w: table has no data rows", errs.ErrTooFewPoints)
	}

	out := make([]*fit.Curve, len(order))
	for i, id := range order {
		out[i] = curves[id]
	}

	return out, nil
}

// parseCell reads one float cell. Optional cells read NaN when absent, blank
// or marked NA; required cells must parse.
func parseCell(record []string, col int, required bool) (float64, error) {
	if col < 0 || col >= len(record) {
		if required {
			return 0, fmt.Errorf("cell missing")
		}

		return math.NaN(), nil
	}

	cell := strings.TrimSpace(record[col])
	if cell == "" || strings.EqualFold(cell, "na") || strings.EqualFold(cell, "nan") {
		if required {
			return 0, fmt.Errorf("cell empty")
		}

		return math.NaN(), nil
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		if required {
			return 0, fmt.Errorf("parsing %q: %w", cell, err)
		}

		return math.NaN(), nil
	}

	return v, nil
}
