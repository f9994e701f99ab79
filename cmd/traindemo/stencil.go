package main

import "math/rand"

// applyStencil convolves a w*h grid with a 3x3 kernel. Out-of-bounds
// neighbors clamp to the nearest cell, so edges see their own value.
func applyStencil(kernel, grid []float64, w, h int) []float64 {
	out := make([]float64, len(grid))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					acc += kernel[(dy+1)*3+(dx+1)] * grid[clamp(y+dy, h)*w+clamp(x+dx, w)]
				}
			}
			out[y*w+x] = acc
		}
	}
	return out
}

// stencilGrad backpropagates a per-cell output gradient into the
// kernel:
//
//	dL/dk[o] = sum_p outGrad[p] * grid[p + o]
func stencilGrad(outGrad, grid []float64, w, h int) []float64 {
	grad := make([]float64, 9)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := outGrad[y*w+x]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					grad[(dy+1)*3+(dx+1)] += g * grid[clamp(y+dy, h)*w+clamp(x+dx, w)]
				}
			}
		}
	}
	return grad
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if n <= i {
		return n - 1
	}
	return i
}

// synthesize draws n random smooth-ish grids and convolves each with
// the reference kernel, yielding "input" and "target" columns.
func synthesize(rng *rand.Rand, n, w, h int, kernel []float64) map[string][][]float64 {
	inputs := make([][]float64, n)
	targets := make([][]float64, n)
	for i := range inputs {
		grid := make([]float64, w*h)
		for j := range grid {
			grid[j] = rng.NormFloat64()
		}
		// a couple of smoothing passes keep the stencil identifiable
		grid = applyStencil(boxKernel, grid, w, h)
		grid = applyStencil(boxKernel, grid, w, h)

		inputs[i] = grid
		targets[i] = applyStencil(kernel, grid, w, h)
	}
	return map[string][][]float64{"input": inputs, "target": targets}
}

var boxKernel = []float64{
	1.0 / 9, 1.0 / 9, 1.0 / 9,
	1.0 / 9, 1.0 / 9, 1.0 / 9,
	1.0 / 9, 1.0 / 9, 1.0 / 9,
}
