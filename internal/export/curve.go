package export

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/piwi3910/macroplace/internal/model"
)

// CurvePoints splits a trace into the HPWL of every legal iteration and
// the HPWL of the best accepted placement so far.
func CurvePoints(trace []model.TraceRecord) (legal, best plotter.XYs) {
	bestHPWL := 0.0
	haveBest := false
	for _, t := range trace {
		if !t.Legal {
			continue
		}
		legal = append(legal, plotter.XY{X: float64(t.Iteration), Y: t.HPWL})
		if t.Accepted || !haveBest {
			bestHPWL = t.HPWL
			haveBest = true
		}
		best = append(best, plotter.XY{X: float64(t.Iteration), Y: bestHPWL})
	}
	return legal, best
}

// ExportCurvePNG plots the convergence of a refinement run. The file
// format follows the extension of path (png, svg, pdf).
func ExportCurvePNG(path, title string, trace []model.TraceRecord) error {
	legalPts, bestPts := CurvePoints(trace)
	if len(legalPts) == 0 {
		return fmt.Errorf("no legal iterations to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "HPWL"

	scatter, err := plotter.NewScatter(legalPts)
	if err != nil {
		return err
	}
	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return err
	}

	p.Add(scatter, bestLine)
	p.Legend.Add("iteration", scatter)
	p.Legend.Add("best", bestLine)
	p.Legend.Top = true

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
