package cart

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lauracline/gocart/pkg/errors"
)

// CVCurvePlot renders a cross-validation result as a plot of held-out
// error against tree size, with the resubstitution risk alongside and the
// chosen size marked. The caller saves or embeds the returned plot.
func CVCurvePlot(result *CVResult) (*plot.Plot, error) {
	if result == nil || len(result.Sizes) == 0 {
		return nil, errors.NewValueError("plot_cv_curve", "empty cross-validation result")
	}

	p := plot.New()
	p.Title.Text = "Cost-complexity cross-validation"
	p.X.Label.Text = "terminal nodes"
	p.Y.Label.Text = "total error"
	p.Legend.Top = true

	cvXYs := make(plotter.XYs, len(result.Sizes))
	resubXYs := make(plotter.XYs, len(result.Sizes))
	for i := range result.Sizes {
		cvXYs[i].X = float64(result.Sizes[i])
		cvXYs[i].Y = result.CVErr[i]
		resubXYs[i].X = float64(result.Sizes[i])
		resubXYs[i].Y = result.Resub[i]
	}

	cvLine, cvPoints, err := plotter.NewLinePoints(cvXYs)
	if err != nil {
		return nil, errors.Wrap(err, "gocart: building cv curve")
	}
	resubLine, err := plotter.NewLine(resubXYs)
	if err != nil {
		return nil, errors.Wrap(err, "gocart: building resubstitution curve")
	}
	resubLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(cvLine, cvPoints, resubLine)
	p.Legend.Add("cross-validated", cvLine)
	p.Legend.Add("resubstitution", resubLine)

	for i := range result.Sizes {
		if result.Sizes[i] != result.ChosenSize {
			continue
		}
		chosen, err := plotter.NewScatter(plotter.XYs{{
			X: float64(result.Sizes[i]),
			Y: result.CVErr[i],
		}})
		if err != nil {
			return nil, errors.Wrap(err, "gocart: marking chosen size")
		}
		chosen.GlyphStyle.Radius = vg.Points(4)
		p.Add(chosen)
		p.Legend.Add("chosen", chosen)
		break
	}

	return p, nil
}

// SaveCVCurve renders the cross-validation curve to an image file. The
// format follows the file extension (png, svg, pdf, eps, tif, jpg).
func SaveCVCurve(result *CVResult, file string) error {
	p, err := CVCurvePlot(result)
	if err != nil {
		return err
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, file); err != nil {
		return errors.Wrap(err, "gocart: saving cv curve")
	}
	return nil
}
