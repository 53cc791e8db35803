package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/macroplace/internal/engine"
	"github.com/piwi3910/macroplace/internal/model"
)

// evaluateCommand creates the evaluate command.
func (c *CLI) evaluateCommand() *cobra.Command {
	var shift bool

	cmd := &cobra.Command{
		Use:   "evaluate <benchmark> [placement]",
		Short: "Print the metrics of a placement",
		Long: `Print the metrics of a placement.

The placement is read from a .pl file, the last block of a placement
.csv history or a .dxf drawing. Without a placement file the netlist
positions of the benchmark are evaluated. Overlapping macros and nodes
missing from the placement are reported.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 2 {
				path = args[1]
			}
			return c.runEvaluate(args[0], path, shift)
		},
	}

	cmd.Flags().BoolVar(&shift, "shift", false, "apply the benchmark seed shift to .pl macro coordinates")

	return cmd
}

func (c *CLI) runEvaluate(name, path string, shift bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	in, err := c.loadInput(cfg, name)
	if err != nil {
		return err
	}
	p, err := c.loadPlacement(in, path, shift)
	if err != nil {
		return fmt.Errorf("load placement: %w", err)
	}

	db := in.Design.DB
	eval := model.EvalRecord{
		HPWL:     engine.HPWL(db, p),
		Dataflow: engine.Dataflow(db, in.Flow, p),
	}
	if in.Region != nil {
		eval.Regularity = engine.Regularity(db, in.Region, p)
	}

	title := name
	if path != "" {
		title += " " + path
	}
	printEval(title, eval)
	printKeyValue("Macros", fmt.Sprintf("%d", len(db.Macros())))
	printKeyValue("Ports", fmt.Sprintf("%d", len(db.Ports())))

	var missing int
	for _, n := range db.Names() {
		if !p.Has(n) {
			missing++
		}
	}
	if missing > 0 {
		printWarning("%d nodes have no position", missing)
	}

	gridNum := in.Bench.GridNum
	var outside int
	for _, r := range p.Records() {
		if r.GridX < 0 || r.GridY < 0 || r.GridX+r.ScaledWidth > gridNum || r.GridY+r.ScaledHeight > gridNum {
			printWarning("%s leaves the %dx%d grid", r.Name, gridNum, gridNum)
			outside++
		}
	}

	overlaps := engine.Overlaps(db, p)
	for _, o := range overlaps {
		printWarning("%s overlaps %s", o[0], o[1])
	}
	if len(overlaps) == 0 && missing == 0 && outside == 0 {
		printSuccess("placement is legal")
	}
	printNewline()
	return nil
}
