package cli

import (
	"os"

	"github.com/spf13/cobra"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/script"
)

// Output modes for sheet contents.
const (
	outputTable  = "table"
	outputValues = "values"
	outputTexts  = "texts"
)

var outputModes = []string{outputTable, outputValues, outputTexts}

// evalOptions holds options for the eval command.
type evalOptions struct {
	strict bool
	output string
}

// evalCommand creates the eval command for applying an edit script.
func (c *CLI) evalCommand() *cobra.Command {
	opts := evalOptions{output: outputTable}

	cmd := &cobra.Command{
		Use:   "eval [script.toml]",
		Short: "Apply an edit script and print the resulting sheet",
		Long: `Apply the cell edits in a TOML script to an empty sheet and print the result.

Rejected edits (circular references, unparsable formulas) are reported and
skipped, leaving the sheet as it was before that edit. With --strict the
first rejected edit aborts the run.`,
		Example: `  cellgraph eval budget.toml
  cellgraph eval budget.toml --output values
  cellgraph eval budget.toml --strict`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return cgerrors.ValidateFormat(opts.output, outputModes...)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEval(args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "stop at the first rejected edit")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output mode: table, values, texts")

	return cmd
}

// runEval applies the script and writes the sheet to stdout.
func (c *CLI) runEval(path string, opts evalOptions) error {
	t := startTimer(c.Logger)
	s, results, err := c.loadSheet(path, opts.strict)
	if err != nil {
		return err
	}
	failed := script.Failed(results)
	t.done("script applied", "applied", len(results)-len(failed), "rejected", len(failed))

	if err := writeSheet(os.Stdout, s, opts.output); err != nil {
		return err
	}
	if len(failed) > 0 && opts.output == outputTable {
		printWarning("%d of %d edits rejected", len(failed), len(results))
		for _, r := range failed {
			printError("%s %s: %s", r.Op.Cell, StyleDim.Render(r.Op.Text), cgerrors.UserMessage(r.Err))
		}
	}
	return nil
}
