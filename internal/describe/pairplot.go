package describe

import (
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"loyaltyml/internal/prep"
)

// SavePairplot writes a grid of pairwise feature scatter plots, colored by
// category, as a single PNG. The diagonal cells plot a feature against
// itself, which reads as the value distribution along a line.
func SavePairplot(X [][]float64, y []int, path string, className func(int) string) error {
	if len(X) == 0 {
		return fmt.Errorf("cannot plot empty dataset")
	}

	nf := len(prep.FeatureNames)

	byCategory := make(map[int][][]float64)
	for i, row := range X {
		byCategory[y[i]] = append(byCategory[y[i]], row)
	}
	categories := make([]int, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Ints(categories)

	// Stable color assignment per category code
	colorIdx := func(c int) int {
		for i, cc := range categories {
			if cc == c {
				return i
			}
		}
		return 0
	}

	plots := make([][]*plot.Plot, nf)
	for row := 0; row < nf; row++ {
		plots[row] = make([]*plot.Plot, nf)
		for col := 0; col < nf; col++ {
			p := plot.New()
			if row == nf-1 {
				p.X.Label.Text = prep.FeatureNames[col]
			}
			if col == 0 {
				p.Y.Label.Text = prep.FeatureNames[row]
			}

			for _, c := range categories {
				group := byCategory[c]
				pts := make(plotter.XYs, len(group))
				for i, r := range group {
					pts[i].X = r[col]
					pts[i].Y = r[row]
				}
				s, err := plotter.NewScatter(pts)
				if err != nil {
					return fmt.Errorf("failed to build scatter for %s vs %s: %w",
						prep.FeatureNames[col], prep.FeatureNames[row], err)
				}
				s.GlyphStyle.Radius = vg.Points(1.5)
				s.GlyphStyle.Color = plotutil.Color(colorIdx(c))
				p.Add(s)
				if row == 0 && col == nf-1 {
					p.Legend.Add(className(c), s)
					p.Legend.Top = true
				}
			}
			plots[row][col] = p
		}
	}

	img := vgimg.New(12*vg.Inch, 12*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: nf,
		Cols: nf,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for row := 0; row < nf; row++ {
		for col := 0; col < nf; col++ {
			plots[row][col].Draw(canvases[row][col])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create pairplot file: %w", err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write pairplot: %w", err)
	}
	return nil
}
