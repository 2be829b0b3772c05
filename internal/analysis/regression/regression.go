// Package regression fits straight lines by ordinary least squares.
package regression

// Epsilon is the smallest x variance term accepted before a fit is considered degenerate.
const Epsilon = 1e-12

// Line is a fitted y = Slope*x + Intercept together with its coefficient of determination.
type Line struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// Fit regresses ys on xs. It reports false for empty or mismatched inputs and when the x values
// have (numerically) no spread.
func Fit(xs, ys []float64) (Line, bool) {
	n := len(xs)
	if n == 0 || len(ys) != n {
		return Line{}, false
	}

	// Sums are taken relative to the first point, so a constant series yields exact zeros.
	x0, y0 := xs[0], ys[0]

	var sumX, sumY, sumXX, sumXY float64

	for i := range n {
		x, y := xs[i]-x0, ys[i]-y0
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	nf := float64(n)
	meanX := sumX / nf
	meanY := sumY / nf

	varX := sumXX - nf*meanX*meanX
	if varX < Epsilon {
		return Line{}, false
	}

	slope := (sumXY - nf*meanX*meanY) / varX
	line := Line{
		Slope:     slope,
		Intercept: y0 + meanY - slope*(x0+meanX),
	}

	var ssTot, ssRes float64

	for i := range n {
		dev := ys[i] - y0 - meanY
		res := ys[i] - line.At(xs[i])
		ssTot += dev * dev
		ssRes += res * res
	}

	if ssTot > 0 {
		line.RSquared = max(0, 1-ssRes/ssTot)
	}

	return line, true
}
