package report

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/scitune/scitune/pkg/errors"
	"github.com/scitune/scitune/tune"
)

// ConvergencePlot saves a PNG chart of the running best loss over the trial
// history. Failed trials do not move the running best.
func ConvergencePlot(trials []tune.Trial, path string) error {
	if len(trials) == 0 {
		return errors.NewValueError("report.ConvergencePlot", "history must not be empty")
	}

	var pts plotter.XYs
	running := math.Inf(1)
	for _, t := range trials {
		if !t.Failed() && t.Loss < running {
			running = t.Loss
		}
		if math.IsInf(running, 1) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(t.Index), Y: running})
	}
	if len(pts) == 0 {
		return errors.Wrap(errors.ErrNoSuccessfulTrial, "report.ConvergencePlot")
	}

	p := plot.New()
	p.Title.Text = "Search convergence"
	p.X.Label.Text = "trial"
	p.Y.Label.Text = "best loss so far"

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return errors.Wrap(err, "report.ConvergencePlot: building line")
	}
	p.Add(line, points)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "report.ConvergencePlot: saving chart")
	}
	return nil
}

// ScatterPlot saves a PNG chart of loss against one hyperparameter across
// all successful trials, useful for eyeballing the loss landscape along a
// single dimension.
func ScatterPlot(trials []tune.Trial, param, path string) error {
	if len(trials) == 0 {
		return errors.NewValueError("report.ScatterPlot", "history must not be empty")
	}

	var pts plotter.XYs
	for _, t := range trials {
		if t.Failed() {
			continue
		}
		v, ok := t.Params[param]
		if !ok {
			return errors.NewValidationError(param, "parameter not present in trial history", param)
		}
		pts = append(pts, plotter.XY{X: v, Y: t.Loss})
	}
	if len(pts) == 0 {
		return errors.Wrap(errors.ErrNoSuccessfulTrial, "report.ScatterPlot")
	}

	p := plot.New()
	p.Title.Text = "Loss vs " + param
	p.X.Label.Text = param
	p.Y.Label.Text = "loss"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "report.ScatterPlot: building scatter")
	}
	p.Add(scatter)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "report.ScatterPlot: saving chart")
	}
	return nil
}
