package mammoth

import (
	"math"

	"github.com/cwbudde/algo-mammoth/dsp"
)

const (
	preDriveGain     = 2.0
	preDriveNegative = 0.8

	// Battery model.
	nominalSupply      = 9.0
	minimumSupply      = 6.0
	internalResistance = 4.0
	sagCurrentTime     = 0.02
	sagDropTime        = 0.005

	// Q1: first gain stage.
	q1Bias          = 0.5
	q1BiasScale     = 0.1
	q1SagShift      = 0.1
	q1Gain          = 8.0
	q1Saturation    = 1.0
	q1NegativeScale = 0.8
	q1Second        = 0.05
	q1Third         = 0.03
	q1ClampLevel    = 1.1

	// Q2: gated fuzz stage.
	q2Gain         = 20.0
	q2BiasScale    = 0.05
	gateThreshold  = 0.5
	activityFloor  = 0.02
	gateTime       = 0.008
	q2Second       = 0.08
	q2Third        = 0.05
	sputterBelow   = 0.8
	sputterDepth   = 0.15
	sputterRate    = 200.0
	q2ClampLevel   = 0.6
	trebleHeadroom = 0.7

	limiterKnee = 0.25
	limiterEven = 0.03
)

// supplySag tracks how far the battery droops under the recent signal load.
type supplySag struct {
	currentPole float64
	dropPole    float64

	current float64
	drop    float64
	voltage float64
}

func (s *supplySag) configure(sampleRate float64) {
	s.currentPole = dsp.PoleForTime(sagCurrentTime, sampleRate)
	s.dropPole = dsp.PoleForTime(sagDropTime, sampleRate)
}

func (s *supplySag) reset() {
	s.current = 0
	s.drop = 0
	s.voltage = nominalSupply
}

// step feeds one rectified sample into the model and returns supply/nominal.
func (s *supplySag) step(x float64) float64 {
	s.current = s.current*s.currentPole + math.Abs(x)*(1-s.currentPole)
	s.drop = s.drop*s.dropPole + s.current*internalResistance*(1-s.dropPole)
	s.voltage = math.Max(nominalSupply-s.drop, minimumSupply)
	return s.voltage / nominalSupply
}

func preDrive(x float64) float64 {
	if x >= 0 {
		return math.Tanh(preDriveGain * x)
	}
	return preDriveNegative * math.Tanh(preDriveGain*x/preDriveNegative)
}

func compress(x, threshold, steepness float64) float64 {
	return threshold * math.Tanh(steepness*x/threshold)
}

// transistorQ1 is the first 2N3904 stage. The response is measured from the
// quiescent point so that silence in gives silence out.
func (e *Engine) transistorQ1(x, sf float64) float64 {
	quiescent := q1Bias*q1BiasScale - (1-sf)*q1SagShift
	out := q1Response(x+quiescent, sf) - q1Response(quiescent, sf)
	e.q1Collector = out
	return out
}

func q1Response(vbe, sf float64) float64 {
	sat := q1Saturation * sf
	y := compress(vbe, sat, q1Gain*sf)
	if y < 0 {
		y *= q1NegativeScale
	}
	y += y*y*q1Second + y*y*y*q1Third
	return compress(y, q1ClampLevel*sf, 1)
}

// transistorQ2 is the bias-starved fuzz stage that produces the gating.
func (e *Engine) transistorQ2(x, sf float64) float64 {
	level := math.Abs(x)
	// Pinch lowers the bias level, which raises the threshold: more pinch
	// starves the stage and gates harder.
	threshold := gateThreshold * (1 - e.biasLevel)
	activity := 1.0
	if level < threshold {
		r := level / threshold
		activity = math.Max(r*math.Sqrt(r), activityFloor)
	}
	e.gate = e.gate*e.gatePole + activity*(1-e.gatePole)

	biasFactor := 0.55 + 0.45*e.biasLevel/0.8
	gain := q2Gain * sf * e.gate * biasFactor
	harmonics := e.gate * sf
	quiescent := e.biasLevel * q2BiasScale * sf
	y := q2Response(x+quiescent, gain, harmonics) - q2Response(quiescent, gain, harmonics)

	// Sputter: a multiplicative wobble that is even in |x|, so the product
	// stays odd and adds no DC.
	if e.gate < sputterBelow {
		depth := (sputterBelow - e.gate) / sputterBelow * sputterDepth
		y *= 1 - depth*(0.5+0.5*math.Sin(level*sputterRate))
	}

	out := compress(y, q2ClampLevel*sf, 1)
	e.q2Collector = out
	return out
}

func q2Response(v, gain, harmonics float64) float64 {
	u := gain * v
	var s float64
	if u >= 0 {
		s = compress(compress(u, 0.9, 1.0), 0.6, 1.2)
	} else {
		s = compress(compress(u, 0.7, 1.3), 0.45, 1.6)
	}
	return s + harmonics*(s*s*q2Second+s*s*s*q2Third)
}

// toneControl is the passive EQ: a two-pole low-pass blended against the
// high-passed remainder of the first pole.
func (e *Engine) toneControl(x float64) float64 {
	low1 := e.eqLow1.Lowpass(x)
	bass := e.eqLow2.Lowpass(low1)
	treble := x - low1
	eq := e.params.EQ
	return bass*(1-eq) + treble*eq*trebleHeadroom
}

func softLimit(x float64) float64 {
	y := x / (1 + math.Abs(x)*limiterKnee)
	var t float64
	if y >= 0 {
		t = 0.95 * math.Tanh(0.9*y)
	} else {
		t = 0.95 * math.Tanh(1.05*y)
	}
	return t + limiterEven*t*t
}
