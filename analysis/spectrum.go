package analysis

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-dsp/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
)

const (
	spectralFrame = 2048
	maxSTFTFrames = 64
)

// AverageSpectrum returns the mean magnitude of Hann-windowed frames of x
// with 50% overlap. The result has frame/2+1 bins. frame must be a power of two.
func AverageSpectrum(x []float64, frame int) []float64 {
	if frame < 2 || len(x) < frame {
		return nil
	}
	plan, err := algofft.NewPlanReal64(frame)
	if err != nil {
		return nil
	}
	win := window.Generate(window.TypeHann, frame)
	buf := make([]float64, frame)
	spec := make([]complex128, frame/2+1)
	avg := make([]float64, frame/2+1)

	hop := frame / 2
	frames := 1 + (len(x)-frame)/hop
	stride := 1
	if frames > maxSTFTFrames {
		stride = (frames + maxSTFTFrames - 1) / maxSTFTFrames
	}
	used := 0
	for f := 0; f < frames; f += stride {
		start := f * hop
		for i := 0; i < frame; i++ {
			buf[i] = x[start+i] * win[i]
		}
		plan.Forward(spec, buf)
		for k, c := range spec {
			avg[k] += cmplx.Abs(c)
		}
		used++
	}
	inv := 1.0 / float64(used)
	for k := range avg {
		avg[k] *= inv
	}
	return avg
}

func spectralRMSEDB(a []float64, b []float64, frame int) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for frame > 256 && n < frame {
		frame /= 2
	}
	if n < frame || frame < 256 {
		return 0
	}
	sa := AverageSpectrum(a[:n], frame)
	sb := AverageSpectrum(b[:n], frame)
	if len(sa) < 3 || len(sa) != len(sb) {
		return 0
	}
	var sum float64
	for k := 1; k < len(sa)-1; k++ {
		d := linToDB(sa[k]) - linToDB(sb[k])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(sa)-2))
}
