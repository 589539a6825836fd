package cabinet

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-mammoth/dsp"
)

// SpeakerConfig controls synthetic cabinet IR generation.
//
// The IR is a sum of damped modes: one dominant cone resonance plus a cluster
// of cabinet and cone breakup modes spread log-uniformly up to HighCutHz,
// followed by a second order lowpass for the speaker's top end rolloff.
type SpeakerConfig struct {
	SampleRate  int
	DurationS   float64 // Typically 0.02-0.2s
	Modes       int
	Seed        int64
	ResonanceHz float64 // Cone resonance, ~70-120 Hz for 10"/12" drivers
	HighCutHz   float64 // Top end rolloff, ~3-6 kHz
	Brightness  float64
	DirectLevel float64
	DecayS      float64
	FadeOutS    float64 // Cosine fade-out at the end; 0 = no fade

	NormalizePeak float64
}

// DefaultSpeakerConfig returns a closed-back 4x12 style cabinet.
func DefaultSpeakerConfig() SpeakerConfig {
	return SpeakerConfig{
		SampleRate:    48000,
		DurationS:     0.06,
		Modes:         24,
		Seed:          1,
		ResonanceHz:   95,
		HighCutHz:     4800,
		Brightness:    1.0,
		DirectLevel:   0.3,
		DecayS:        0.008,
		FadeOutS:      0.005,
		NormalizePeak: 0.9,
	}
}

func (c *SpeakerConfig) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.Modes < 1 {
		return fmt.Errorf("modes must be >= 1")
	}
	if c.ResonanceHz <= 0 {
		return fmt.Errorf("resonance Hz must be > 0")
	}
	if c.HighCutHz <= c.ResonanceHz || c.HighCutHz >= 0.5*float64(c.SampleRate) {
		return fmt.Errorf("high cut %.1f Hz must lie between resonance and Nyquist", c.HighCutHz)
	}
	if c.Brightness <= 0 {
		return fmt.Errorf("brightness must be > 0")
	}
	if c.DirectLevel < 0 {
		return fmt.Errorf("direct level must be >= 0")
	}
	if c.DecayS <= 0 {
		return fmt.Errorf("decay seconds must be > 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// GenerateSpeaker synthesizes a mono cabinet IR.
func GenerateSpeaker(cfg SpeakerConfig) ([]float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sr := float64(cfg.SampleRate)
	n := max(int(math.Round(cfg.DurationS*sr)), 1)
	buf := make([]float64, n)
	rng := rand.New(rand.NewSource(cfg.Seed))

	buf[0] += cfg.DirectLevel

	// Cone resonance rings longest.
	addModeRec(buf, 1.0, cfg.ResonanceHz, 0, decayPerSample(3*cfg.DecayS, sr), cfg.SampleRate)

	lo := math.Log(cfg.ResonanceHz * 1.5)
	hi := math.Log(cfg.HighCutHz * 1.2)
	brightnessExp := 1.2 / cfg.Brightness
	for i := 0; i < cfg.Modes; i++ {
		t := (float64(i) + rng.Float64()) / float64(cfg.Modes)
		f := math.Exp(lo + (hi-lo)*t)
		amp := 0.6 / math.Pow(1.0+f/cfg.HighCutHz, brightnessExp)
		amp *= 0.6 + 0.8*rng.Float64()

		// Higher breakup modes die faster.
		tau := cfg.DecayS * math.Sqrt(cfg.ResonanceHz/f) * 2
		phi := rng.Float64() * 2.0 * math.Pi
		addModeRec(buf, amp, f, phi, decayPerSample(tau, sr), cfg.SampleRate)
	}

	for range 2 {
		lp := dsp.NewLowpass(cfg.HighCutHz, sr, math.Sqrt2/2)
		for i := range buf {
			buf[i] = lp.Process(buf[i])
		}
	}
	dc := dsp.DCBlocker{R: 0.995}
	for i := range buf {
		buf[i] = dc.Process(buf[i])
	}
	applyFadeOut(buf, cfg.FadeOutS, cfg.SampleRate)

	peak := max(maxAbs(buf), 1e-12)
	s := cfg.NormalizePeak / peak
	out := make([]float32, n)
	for i := range buf {
		out[i] = float32(buf[i] * s)
	}
	return out, nil
}

func decayPerSample(tau, sampleRate float64) float64 {
	return math.Exp(-1.0 / (tau * sampleRate))
}

// addModeRec adds an exponentially decaying cosine using the Chebyshev
// recurrence instead of per-sample trig.
func addModeRec(out []float64, amp, freq, phase, decay float64, sampleRate int) {
	if len(out) == 0 {
		return
	}
	w := 2.0 * math.Pi * freq / float64(sampleRate)
	cw := math.Cos(w)
	x0 := math.Cos(phase)
	x1 := math.Cos(phase + w)
	env := 1.0

	out[0] += amp * x0
	env *= decay
	if len(out) == 1 {
		return
	}
	out[1] += amp * env * x1
	env *= decay
	for i := 2; i < len(out); i++ {
		x2 := 2.0*cw*x1 - x0
		x0 = x1
		x1 = x2
		out[i] += amp * env * x2
		env *= decay
	}
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		m = max(m, math.Abs(v))
	}
	return m
}

// applyFadeOut applies a cosine fade-out to the last fadeS seconds of buf.
func applyFadeOut(buf []float64, fadeS float64, sampleRate int) {
	if fadeS <= 0 || len(buf) == 0 {
		return
	}
	fadeSamples := min(int(math.Round(fadeS*float64(sampleRate))), len(buf))
	start := len(buf) - fadeSamples
	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples)
		buf[start+i] *= 0.5 * (1.0 + math.Cos(t*math.Pi))
	}
}
