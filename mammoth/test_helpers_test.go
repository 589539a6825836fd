package mammoth

import "math"

func sineBlock(freq, amp, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	step := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = amp * math.Sin(step*float64(i))
	}
	return out
}

func squareBlock(freq, amp, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	period := sampleRate / freq
	for i := range out {
		if math.Mod(float64(i), period) < period/2 {
			out[i] = amp
		} else {
			out[i] = -amp
		}
	}
	return out
}

func render(e *Engine, in []float64) []float64 {
	out := make([]float64, len(in))
	for i, s := range in {
		out[i] = e.Process(s)
	}
	return out
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func maxStep(x []float64) float64 {
	m := 0.0
	for i := 1; i < len(x); i++ {
		if d := math.Abs(x[i] - x[i-1]); d > m {
			m = d
		}
	}
	return m
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// knobGrid returns every combination of 0, 0.5 and 1 for the four controls.
func knobGrid() []Params {
	steps := []float64{0, 0.5, 1}
	out := make([]Params, 0, 81)
	for _, w := range steps {
		for _, p := range steps {
			for _, eq := range steps {
				for _, o := range steps {
					out = append(out, Params{Wool: w, Pinch: p, EQ: eq, Output: o})
				}
			}
		}
	}
	return out
}
