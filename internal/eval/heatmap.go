package eval

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// confusionGrid adapts a ConfusionMatrix to plotter.GridXYZ. Columns are
// predicted classes, rows are actual classes.
type confusionGrid struct {
	cm *ConfusionMatrix
}

func (g confusionGrid) Dims() (int, int) { return len(g.cm.Classes), len(g.cm.Classes) }
func (g confusionGrid) Z(c, r int) float64 {
	return float64(g.cm.Counts[r][c])
}
func (g confusionGrid) X(c int) float64 { return float64(c) }
func (g confusionGrid) Y(r int) float64 { return float64(r) }

// SaveHeatmap renders the confusion matrix as a PNG heatmap with class
// names on both axes.
func (cm *ConfusionMatrix) SaveHeatmap(path, title string, className func(int) string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "predicted"
	p.Y.Label.Text = "actual"

	hm := plotter.NewHeatMap(confusionGrid{cm}, palette.Heat(12, 1))
	p.Add(hm)

	ticks := make([]plot.Tick, len(cm.Classes))
	for i, c := range cm.Classes {
		ticks[i] = plot.Tick{Value: float64(i), Label: className(c)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)

	if err := p.Save(6*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save confusion heatmap: %w", err)
	}
	return nil
}
