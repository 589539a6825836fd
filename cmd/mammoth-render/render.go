package main

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
	"github.com/cwbudde/algo-mammoth/cabinet"
	"github.com/cwbudde/algo-mammoth/internal/fitcommon"
	"github.com/cwbudde/algo-mammoth/pedal"
)

const renderBlockSize = 128

// loadInput returns the input channels at sampleRate, either decoded from
// path or generated as a sine test tone.
func loadInput(path string, sampleRate int, toneHz, toneAmp, duration float64) ([][]float64, error) {
	if path == "" {
		n := int(float64(sampleRate) * duration)
		if n < 1 {
			return nil, fmt.Errorf("duration %.3fs is too short", duration)
		}
		gen := signal.NewGenerator(core.WithSampleRate(float64(sampleRate)))
		tone, err := gen.Sine(toneHz, toneAmp, n)
		if err != nil {
			return nil, err
		}
		return [][]float64{tone}, nil
	}

	chans, sr, err := fitcommon.ReadWAV(path)
	if err != nil {
		return nil, err
	}
	if len(chans) > 2 {
		chans = chans[:2]
	}
	for c := range chans {
		chans[c], err = fitcommon.ResampleIfNeeded(chans[c], sr, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("resample %d->%d: %w", sr, sampleRate, err)
		}
	}
	return chans, nil
}

// render pushes chans through p in host-sized blocks and returns float32 output.
func render(p *pedal.Pedal, chans [][]float64, blockSize int) [][]float32 {
	frames := len(chans[0])
	for _, c := range chans[1:] {
		frames = min(frames, len(c))
	}
	out := make([][]float32, len(chans))
	for c := range out {
		out[c] = make([]float32, frames)
		for i := 0; i < frames; i++ {
			out[c][i] = float32(chans[c][i])
		}
	}

	block := make([][]float32, len(out))
	for start := 0; start < frames; start += blockSize {
		end := min(start+blockSize, frames)
		for c := range out {
			block[c] = out[c][start:end]
		}
		p.ProcessBlock(block)
	}
	return out
}

const cabSynth = "synth"

// newCabinet returns a convolver loaded from path, or from a synthesized
// speaker IR when path is "synth". The synthesized IR is returned so it can
// be saved.
func newCabinet(path string, sampleRate int, seed int64, mix float64) (*cabinet.Convolver, []float32, error) {
	conv := cabinet.NewConvolver(sampleRate)
	conv.SetMix(mix)
	if path != cabSynth {
		return conv, nil, conv.SetIRFromWAV(path)
	}
	cfg := cabinet.DefaultSpeakerConfig()
	cfg.SampleRate = sampleRate
	cfg.Seed = seed
	ir, err := cabinet.GenerateSpeaker(cfg)
	if err != nil {
		return nil, nil, err
	}
	return conv, ir, conv.SetIR(ir)
}

// applyCabinet convolves every channel of out in place, restarting the
// convolver history per channel.
func applyCabinet(conv *cabinet.Convolver, out [][]float32) error {
	for c := range out {
		conv.Reset()
		if err := conv.Process(out[c]); err != nil {
			return err
		}
	}
	return nil
}
