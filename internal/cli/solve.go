package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/photobook/pkg/assign"
	"github.com/matzehuels/photobook/pkg/errors"
)

// solveCommand creates the solve debug command.
func (c *CLI) solveCommand() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "solve <matrix>",
		Short: "Solve an assignment problem (debug tool)",
		Long: `Solve a square assignment problem with the Hungarian solver.

The matrix is given row by row, rows separated by ';' and entries by ',' or
spaces:

  photobook solve "4,1,3; 2,0,5; 3,2,2"

--verify cross-checks the result against exhaustive search (n <= 8).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, err := parseMatrix(args[0])
			if err != nil {
				return err
			}
			return runSolve(cost, verify)
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "cross-check against exhaustive search")

	return cmd
}

func runSolve(cost *mat.Dense, verify bool) error {
	a, err := assign.Solve(cost)
	if err != nil {
		return err
	}
	total := assign.Cost(cost, a)

	printSuccess("Solved %dx%d", len(a), len(a))
	for row, col := range a {
		printKeyValue(fmt.Sprintf("row %d", row), fmt.Sprintf("col %d  (%g)", col, cost.At(row, col)))
	}
	printKeyValue("total", strconv.FormatFloat(total, 'g', -1, 64))

	if !verify {
		return nil
	}
	want, err := assign.SolveExhaustive(cost)
	if err != nil {
		return err
	}
	best := assign.Cost(cost, want)
	if math.Abs(best-total) > 1e-9 {
		return errors.New(errors.ErrCodeInternal, "hungarian cost %g differs from exhaustive optimum %g", total, best)
	}
	printSuccess("Verified against %d permutations", assign.Factorial(len(a)))
	return nil
}

// parseMatrix parses "a,b;c,d" into a dense matrix. Rows must be equally long.
func parseMatrix(s string) (*mat.Dense, error) {
	var (
		data []float64
		cols int
	)
	rows := strings.Split(strings.TrimSpace(s), ";")
	for i, row := range rows {
		fields := strings.FieldsFunc(row, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		if len(fields) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "row %d is empty", i+1)
		}
		if i == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, errors.New(errors.ErrCodeInvalidInput, "row %d has %d entries, want %d", i+1, len(fields), cols)
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "row %d: entry %q", i+1, f)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(len(rows), cols, data), nil
}
