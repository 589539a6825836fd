package analysis

import (
	"math"

	"github.com/cwbudde/algo-dsp/measure/loudness"
)

// Band is a frequency range in Hz.
type Band struct {
	Name string
	Low  float64
	High float64
}

// BandLevel is the energy of one band relative to the whole spectrum.
type BandLevel struct {
	Band
	DB float64 `json:"db"`
}

// DefaultBands splits the spectrum into ranges that matter for bass fuzz.
var DefaultBands = []Band{
	{"sub", 20, 80},
	{"low", 80, 250},
	{"low-mid", 250, 800},
	{"mid", 800, 2500},
	{"presence", 2500, 6000},
	{"air", 6000, 20000},
}

// BandLevels returns the level of each band in dB relative to the total
// energy of signal.
func BandLevels(signal []float64, sampleRate float64, bands []Band) []BandLevel {
	out := make([]BandLevel, len(bands))
	for i, b := range bands {
		out[i] = BandLevel{Band: b, DB: -120}
	}
	frame := spectralFrame
	for frame > 256 && len(signal) < frame {
		frame /= 2
	}
	spec := AverageSpectrum(signal, frame)
	if len(spec) == 0 || sampleRate <= 0 {
		return out
	}
	binHz := sampleRate / float64(frame)

	var total float64
	energy := make([]float64, len(bands))
	for k, m := range spec {
		e := m * m
		total += e
		f := float64(k) * binHz
		for i, b := range bands {
			if f >= b.Low && f < b.High {
				energy[i] += e
			}
		}
	}
	if total <= 0 {
		return out
	}
	for i := range bands {
		if energy[i] > 0 {
			out[i].DB = math.Max(-120, 10*math.Log10(energy[i]/total))
		}
	}
	return out
}

// loudnessFloor replaces the meter's -Inf for fully gated signals.
const loudnessFloor = -120.0

// Loudness holds BS.1770 loudness and sample peak of a mono signal.
type Loudness struct {
	IntegratedLUFS float64 `json:"integrated_lufs"`
	ShortTermLUFS  float64 `json:"short_term_lufs"`
	PeakDBFS       float64 `json:"peak_dbfs"`
}

// MeasureLoudness runs signal through a mono loudness meter. Signals too
// short or quiet to pass the gating report the floor of -120 LUFS.
func MeasureLoudness(signal []float64, sampleRate float64) Loudness {
	m := loudness.NewMeter(
		loudness.WithSampleRate(sampleRate),
		loudness.WithChannels(1),
	)
	m.StartIntegration()
	m.ProcessBlock(signal)
	integrated := m.Integrated()
	if math.IsInf(integrated, -1) {
		integrated = loudnessFloor
	}
	return Loudness{
		IntegratedLUFS: integrated,
		ShortTermLUFS:  m.ShortTerm(),
		PeakDBFS:       linToDB(m.Peaks()[0]),
	}
}
