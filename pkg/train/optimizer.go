package train

import (
	"fmt"
	"math"
)

// Grads maps parameter names to gradients, each aligned with the
// parameter's flattened values.
type Grads map[string][]float64

// Accumulate adds other into g, allocating entries as needed.
func (g Grads) Accumulate(other Grads) {
	for name, values := range other {
		acc, ok := g[name]
		if !ok {
			acc = make([]float64, len(values))
			g[name] = acc
		}
		for i, v := range values {
			acc[i] += v
		}
	}
}

// Optimizer updates parameters from gradients.
//
// A gradient naming an unknown parameter, or sized differently from
// its parameter, is an error; shapes never change.
type Optimizer interface {
	Step(params *Params, grads Grads) error
}

func checkGrad(params *Params, name string, grad []float64) (*Tensor, error) {
	t, ok := params.Get(name)
	if !ok {
		return nil, fmt.Errorf("gradient for unknown parameter %q", name)
	}
	if len(grad) != len(t.Values) {
		return nil, fmt.Errorf(
			"gradient for %q has %d values, parameter has %d",
			name, len(grad), len(t.Values),
		)
	}
	return t, nil
}

// SGD is stochastic gradient descent with optional momentum.
type SGD struct {
	LearningRate float64
	Momentum     float64

	velocity map[string][]float64
}

func NewSGD(lr float64) *SGD {
	return &SGD{LearningRate: lr}
}

func (o *SGD) Step(params *Params, grads Grads) error {
	for name, grad := range grads {
		t, err := checkGrad(params, name, grad)
		if err != nil {
			return err
		}

		if o.Momentum == 0 {
			for i := range t.Values {
				t.Values[i] -= o.LearningRate * grad[i]
			}
			continue
		}

		if o.velocity == nil {
			o.velocity = map[string][]float64{}
		}
		v, ok := o.velocity[name]
		if !ok {
			v = make([]float64, len(grad))
			o.velocity[name] = v
		}
		for i := range t.Values {
			v[i] = o.Momentum*v[i] - o.LearningRate*grad[i]
			t.Values[i] += v[i]
		}
	}
	return nil
}

// Adam is the Adam optimizer (Kingma & Ba, 2015).
//
// Moments and the bias-correction step count are kept per parameter
// name, grown lazily, so parameters registered after other parameters
// have warmed up still start their own warmup at t=1.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	m map[string][]float64
	v map[string][]float64
	t map[string]int
}

func NewAdam(lr float64) *Adam {
	return &Adam{
		LearningRate: lr,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

func (o *Adam) Step(params *Params, grads Grads) error {
	if o.m == nil {
		o.m = map[string][]float64{}
		o.v = map[string][]float64{}
		o.t = map[string]int{}
	}
	for name, grad := range grads {
		t, err := checkGrad(params, name, grad)
		if err != nil {
			return err
		}

		m, ok := o.m[name]
		if !ok {
			m = make([]float64, len(grad))
			o.m[name] = m
			o.v[name] = make([]float64, len(grad))
		}
		v := o.v[name]

		o.t[name] += 1
		step := float64(o.t[name])
		mHat := 1 - math.Pow(o.Beta1, step)
		vHat := 1 - math.Pow(o.Beta2, step)

		for i := range t.Values {
			m[i] = o.Beta1*m[i] + (1-o.Beta1)*grad[i]
			v[i] = o.Beta2*v[i] + (1-o.Beta2)*grad[i]*grad[i]
			t.Values[i] -= o.LearningRate * (m[i] / mHat) / (math.Sqrt(v[i]/vHat) + o.Epsilon)
		}
	}
	return nil
}

// RMSProp keeps a decaying average of squared gradients per parameter.
type RMSProp struct {
	LearningRate float64
	Decay        float64
	Epsilon      float64

	cache map[string][]float64
}

func NewRMSProp(lr float64) *RMSProp {
	return &RMSProp{
		LearningRate: lr,
		Decay:        0.9,
		Epsilon:      1e-8,
	}
}

func (o *RMSProp) Step(params *Params, grads Grads) error {
	if o.cache == nil {
		o.cache = map[string][]float64{}
	}
	for name, grad := range grads {
		t, err := checkGrad(params, name, grad)
		if err != nil {
			return err
		}

		c, ok := o.cache[name]
		if !ok {
			c = make([]float64, len(grad))
			o.cache[name] = c
		}
		for i := range t.Values {
			c[i] = o.Decay*c[i] + (1-o.Decay)*grad[i]*grad[i]
			t.Values[i] -= o.LearningRate * grad[i] / (math.Sqrt(c[i]) + o.Epsilon)
		}
	}
	return nil
}
