package mammoth

import (
	"math"
	"math/rand"
	"testing"
)

func TestOutputStaysBounded(t *testing.T) {
	const sampleRate = 48000
	rng := rand.New(rand.NewSource(7))
	for _, p := range knobGrid() {
		e := NewEngine(sampleRate)
		e.SetParameters(p)
		for i := 0; i < 4000; i++ {
			x := (rng.Float64()*2 - 1) * 10
			y := e.Process(x)
			if y < -1.2 || y > 1.2 || math.IsNaN(y) {
				t.Fatalf("params %+v sample %d: output %f out of bounds", p, i, y)
			}
		}
	}
}

func TestSquareWaveStaysFinite(t *testing.T) {
	for _, sampleRate := range []float64{22050, 44100, 96000, 192000} {
		for _, p := range knobGrid() {
			e := NewEngine(sampleRate)
			e.SetParameters(p)
			for i, x := range squareBlock(110, 10, sampleRate, 10000) {
				y := e.Process(x)
				if math.IsNaN(y) || math.IsInf(y, 0) {
					t.Fatalf("sr=%.0f params %+v: non-finite output at %d", sampleRate, p, i)
				}
			}
			if !e.State().Finite() {
				t.Fatalf("sr=%.0f params %+v: non-finite state %+v", sampleRate, p, e.State())
			}
		}
	}
}

func TestNonFiniteInputIsSilenced(t *testing.T) {
	e := NewEngine(48000)
	for _, x := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if y := e.Process(x); y != 0 {
			t.Fatalf("input %v: expected 0 from quiescent engine, got %f", x, y)
		}
	}
	if !e.State().Finite() {
		t.Fatalf("state went non-finite: %+v", e.State())
	}
}

func TestSilenceConverges(t *testing.T) {
	const sampleRate = 48000
	for _, p := range knobGrid() {
		e := NewEngine(sampleRate)
		e.SetParameters(p)
		render(e, sineBlock(196, 0.8, sampleRate, 4096))
		tail := render(e, make([]float64, 16000))
		if peak := maxAbs(tail[len(tail)-4000:]); peak >= 1e-3 {
			t.Fatalf("params %+v: output did not settle, peak=%g", p, peak)
		}
	}
}

func TestSilenceInIsSilenceOut(t *testing.T) {
	e := NewEngine(44100)
	for i := 0; i < 1000; i++ {
		if y := e.Process(0); y != 0 {
			t.Fatalf("sample %d: expected exact silence from quiescent circuit, got %g", i, y)
		}
	}
}

func TestGateSmoothingIsContinuous(t *testing.T) {
	const sampleRate = 44100
	e := NewEngine(sampleRate)
	e.SetParameters(Params{Wool: 0.5, Pinch: 0.95, EQ: 0, Output: 0})

	n := 2 * sampleRate
	in := sineBlock(110, 1, sampleRate, n)
	for i := range in {
		// Triangle envelope: up for one second, down for the next.
		env := float64(i) / float64(sampleRate)
		if env > 1 {
			env = 2 - env
		}
		in[i] *= 0.5 * env
	}

	out := make([]float64, n)
	gate := make([]float64, n)
	for i, x := range in {
		out[i] = e.Process(x)
		gate[i] = e.GateLevel()
	}

	if step := maxStep(out); step > 0.2 {
		t.Fatalf("output jumps by %f between samples", step)
	}
	if step := maxStep(gate); step > 0.01 {
		t.Fatalf("gate jumps by %f between samples", step)
	}
	for i, g := range gate {
		if g <= 0 || g > 1 {
			t.Fatalf("gate level %f at %d outside (0,1]", g, i)
		}
	}
}

func TestPinchGatesQuietSignals(t *testing.T) {
	const sampleRate = 48000
	gateFor := func(pinch float64) float64 {
		e := NewEngine(sampleRate)
		e.SetParameters(Params{Wool: 0.5, Pinch: pinch, EQ: 0.5, Output: 0.5})
		in := sineBlock(440, 0.01, sampleRate, sampleRate/2)
		var sum float64
		for i, x := range in {
			e.Process(x)
			if i >= len(in)/2 {
				sum += e.GateLevel()
			}
		}
		return sum / float64(len(in)-len(in)/2)
	}
	open := gateFor(0)
	starved := gateFor(1)
	if starved >= open {
		t.Fatalf("expected full pinch to gate harder: pinch0=%f pinch1=%f", open, starved)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	const sampleRate = 48000
	e := NewEngine(sampleRate)
	e.SetParameters(Params{Wool: 0.8, Pinch: 0.6, EQ: 0.1, Output: 0.8})
	in := squareBlock(82.4, 0.7, sampleRate, 6000)

	render(e, in)
	e.Reset()
	e.Reset()
	first := render(e, in)

	render(e, sineBlock(330, 0.9, sampleRate, 3000))
	e.Reset()
	second := render(e, in)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs after reset: %g vs %g", i, first[i], second[i])
		}
	}
}

func TestConfigureRestoresQuiescentState(t *testing.T) {
	e := NewEngine(44100)
	render(e, squareBlock(100, 1, 44100, 5000))
	e.Configure(96000)

	s := e.State()
	want := State{Gate: 1, Supply: nominalSupply}
	if s != want {
		t.Fatalf("state not quiescent after configure: %+v", s)
	}
	if e.SampleRate() != 96000 {
		t.Fatalf("sample rate not updated: %f", e.SampleRate())
	}
}

func TestSupplySagsUnderLoadAndRecovers(t *testing.T) {
	const sampleRate = 48000
	e := NewEngine(sampleRate)
	render(e, squareBlock(80, 5, sampleRate, sampleRate/2))
	loaded := e.SupplyVoltage()
	if loaded >= nominalSupply-0.5 || loaded < minimumSupply {
		t.Fatalf("expected supply to sag into [6, 8.5), got %f", loaded)
	}
	render(e, make([]float64, sampleRate))
	if recovered := e.SupplyVoltage(); math.Abs(recovered-nominalSupply) > 0.05 {
		t.Fatalf("supply did not recover: %f", recovered)
	}
}

func TestFuzzProducesSignal(t *testing.T) {
	const sampleRate = 48000
	e := NewEngine(sampleRate)
	out := render(e, sineBlock(220, 0.3, sampleRate, sampleRate))
	if r := rms(out[sampleRate/2:]); r < 0.05 {
		t.Fatalf("expected audible fuzz, rms=%f", r)
	}
}

func TestAntiAliasCutoff(t *testing.T) {
	for _, sampleRate := range []float64{44100, 48000, 96000} {
		e := NewEngine(sampleRate)
		c := e.antiAlias.Coefficients()
		if db := c.MagnitudeDB(antiAliasRatio*sampleRate, sampleRate); math.Abs(db+3.0) > 0.2 {
			t.Fatalf("sr=%.0f: expected -3 dB at cutoff, got %.2f dB", sampleRate, db)
		}
		if db := c.MagnitudeDB(1000, sampleRate); math.Abs(db) > 0.1 {
			t.Fatalf("sr=%.0f: expected flat passband, got %.2f dB at 1 kHz", sampleRate, db)
		}
	}
}

func TestChannelsDoNotShareState(t *testing.T) {
	const sampleRate = 48000
	left := NewEngine(sampleRate)
	right := NewEngine(sampleRate)
	render(left, squareBlock(60, 1, sampleRate, 4000))
	if s := right.State(); s != (State{Gate: 1, Supply: nominalSupply}) {
		t.Fatalf("idle channel picked up state: %+v", s)
	}
}
