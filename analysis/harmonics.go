package analysis

import (
	"math"

	"github.com/cwbudde/algo-dsp/measure/thd"
)

// HarmonicReport summarizes the distortion of a steady tone.
type HarmonicReport struct {
	FundamentalHz float64 `json:"fundamental_hz"`
	THD           float64 `json:"thd"`
	THDDB         float64 `json:"thd_db"`
	THDN          float64 `json:"thdn"`
	THDNDB        float64 `json:"thdn_db"`
	Odd           float64 `json:"odd"`
	Even          float64 `json:"even"`
	// EvenOddRatio is Even/Odd; zero when there are no odd harmonics.
	EvenOddRatio float64 `json:"even_odd_ratio"`
	// Levels holds harmonic magnitudes relative to the fundamental, from the 2nd up.
	Levels []float64 `json:"levels"`
}

// Harmonics measures harmonic distortion of signal around fundamentalHz.
func Harmonics(signal []float64, sampleRate, fundamentalHz float64) HarmonicReport {
	res := thd.AnalyzeSignal(signal, thd.Config{
		SampleRate:      sampleRate,
		FundamentalFreq: fundamentalHz,
		RangeUpperFreq:  sampleRate * 0.45,
		MaxHarmonics:    16,
	})
	r := HarmonicReport{
		FundamentalHz: res.FundamentalFreq,
		THD:           res.THD,
		THDDB:         floorDB(res.THD_dB),
		THDN:          res.THDN,
		THDNDB:        floorDB(res.THDN_dB),
		Odd:           res.OddHD,
		Even:          res.EvenHD,
		Levels:        res.Harmonics,
	}
	if res.OddHD > 0 {
		r.EvenOddRatio = res.EvenHD / res.OddHD
	}
	return r
}

func floorDB(db float64) float64 {
	if math.IsNaN(db) || db < -240 {
		return -240
	}
	return db
}
