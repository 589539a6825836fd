package analysis

import (
	"math"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
)

// Metrics contains distance and similarity measurements between two audio signals.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE       float64 `json:"time_rmse"`
	EnvelopeRMSEDB float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB float64 `json:"spectral_rmse_db"`
	RefCrestDB     float64 `json:"ref_crest_db"`
	CandCrestDB    float64 `json:"cand_crest_db"`
	CrestDiffDB    float64 `json:"crest_diff_db"`

	TimeNorm     float64 `json:"time_norm"`
	EnvelopeNorm float64 `json:"envelope_norm"`
	SpectralNorm float64 `json:"spectral_norm"`
	CrestNorm    float64 `json:"crest_norm"`
	// Dominant names the component with the largest weighted contribution.
	Dominant string `json:"dominant,omitempty"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Weights of the normalized components in Score.
const (
	WeightTime     = 0.25
	WeightEnvelope = 0.20
	WeightSpectral = 0.40
	WeightCrest    = 0.15
)

const (
	silenceLevel   = 1e-6
	targetRMS      = 0.1
	minAligned     = 256
	maxCompareSecs = 12
	envFrame       = 256
	envHop         = 128
)

// Compare returns objective distance metrics between a reference recording
// and a candidate rendering. Score is 0 for identical signals and grows
// towards 1; Similarity maps it back to (0,1].
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
		Score:           1,
	}
	if sampleRate <= 0 {
		return m
	}
	ref := prepare(reference)
	cand := prepare(candidate)
	if ref == nil || cand == nil {
		return m
	}

	maxLag := max(min(sampleRate/20, len(ref)-1, len(cand)-1), 1)
	window := sampleRate*maxCompareSecs + maxLag
	m.LagSamples = estimateLag(ref[:min(len(ref), window)], cand[:min(len(cand), window)], maxLag)

	ref, cand = alignByLag(ref, cand, m.LagSamples)
	n := min(len(ref), len(cand), sampleRate*maxCompareSecs)
	if n < minAligned {
		return m
	}
	ref, cand = ref[:n], cand[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(ref, cand)
	m.EnvelopeRMSEDB = rmse(envelopeDB(ref), envelopeDB(cand))
	m.SpectralRMSEDB = spectralRMSEDB(ref, cand, spectralFrame)
	m.RefCrestDB = crestFactorDB(ref)
	m.CandCrestDB = crestFactorDB(cand)
	m.CrestDiffDB = math.Abs(m.RefCrestDB - m.CandCrestDB)

	m.TimeNorm = clamp01(m.TimeRMSE / 0.25)
	m.EnvelopeNorm = clamp01(m.EnvelopeRMSEDB / 30)
	m.SpectralNorm = clamp01(m.SpectralRMSEDB / 30)
	m.CrestNorm = clamp01(m.CrestDiffDB / 12)
	m.score()
	return m
}

func (m *Metrics) score() {
	terms := [...]struct {
		name   string
		weight float64
		norm   float64
	}{
		{"time", WeightTime, m.TimeNorm},
		{"envelope", WeightEnvelope, m.EnvelopeNorm},
		{"spectral", WeightSpectral, m.SpectralNorm},
		{"crest", WeightCrest, m.CrestNorm},
	}
	total, largest := 0.0, 0.0
	for _, t := range terms {
		c := t.weight * t.norm
		total += c
		if c > largest {
			largest = c
			m.Dominant = t.name
		}
	}
	m.Score = clamp01(total)
	m.Similarity = clamp01(math.Exp(-4 * m.Score))
}

// prepare drops leading silence and scales x to a common RMS. It returns
// nil when nothing rises above the silence level.
func prepare(x []float64) []float64 {
	start := -1
	for i, v := range x {
		if math.Abs(v) > silenceLevel {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	x = x[start:]
	g := 1.0
	if r := rms(x); r > 1e-12 {
		g = targetRMS / r
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v * g
	}
	return out
}

// estimateLag returns the shift in [-maxLag, maxLag] at which the
// cross-correlation of ref and cand peaks. A positive lag means cand lags
// ref, so ref[i+lag] lines up with cand[i].
func estimateLag(ref []float64, cand []float64, maxLag int) int {
	corr, err := dspconv.Correlate(ref, cand)
	if err != nil {
		return 0
	}
	zero := len(cand) - 1
	lo := max(-maxLag, -zero)
	hi := min(maxLag, len(corr)-1-zero)
	best, bestLag := math.Inf(-1), 0
	for lag := lo; lag <= hi; lag++ {
		if v := corr[zero+lag]; v > best {
			best, bestLag = v, lag
		}
	}
	return bestLag
}

func alignByLag(ref []float64, cand []float64, lag int) ([]float64, []float64) {
	switch {
	case lag > 0 && lag < len(ref):
		return ref[lag:], cand
	case lag < 0 && -lag < len(cand):
		return ref, cand[-lag:]
	case lag == 0:
		return ref, cand
	}
	return nil, nil
}

func rmse(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := range n {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
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

// envelopeDB is the framed RMS level of x in dB.
func envelopeDB(x []float64) []float64 {
	if len(x) < envFrame {
		return nil
	}
	out := make([]float64, 0, 1+(len(x)-envFrame)/envHop)
	for start := 0; start+envFrame <= len(x); start += envHop {
		out = append(out, linToDB(rms(x[start:start+envFrame])))
	}
	return out
}

func linToDB(x float64) float64 {
	return 20 * math.Log10(math.Max(x, 1e-12))
}

// crestFactorDB is the peak-to-RMS ratio in dB. Clipping lowers it, so it
// separates soft from hard fuzz settings at equal loudness.
func crestFactorDB(x []float64) float64 {
	r := rms(x)
	if r <= 1e-12 {
		return 0
	}
	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	return linToDB(peak / r)
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
