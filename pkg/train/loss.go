package train

import "math"

// MSE is mean squared error and its gradient w.r.t. pred.
// Use for regression targets.
func MSE(pred, target []float64) (float64, []float64) {
	n := len(pred)
	loss := 0.0
	grad := make([]float64, n)
	for i := range pred {
		e := pred[i] - target[i]
		loss += e * e
		grad[i] = 2 * e / float64(n)
	}
	return loss / float64(n), grad
}

// BCE is binary cross-entropy and its gradient w.r.t. pred.
// pred values are clamped away from 0 and 1 before the log.
func BCE(pred, target []float64) (float64, []float64) {
	n := len(pred)
	loss := 0.0
	grad := make([]float64, n)
	for i := range pred {
		p := math.Min(math.Max(pred[i], 1e-12), 1-1e-12)
		y := target[i]
		loss += -(y*math.Log(p) + (1-y)*math.Log(1-p))
		grad[i] = (p - y) / float64(n)
	}
	return loss / float64(n), grad
}

// L2 is 0.5*sum(x^2) and its gradient x. Use for weight decay terms.
func L2(x []float64) (float64, []float64) {
	loss := 0.0
	grad := make([]float64, len(x))
	for i, v := range x {
		loss += 0.5 * v * v
		grad[i] = v
	}
	return loss, grad
}
