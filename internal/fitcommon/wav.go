package fitcommon

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadWAV decodes a PCM WAV file into per-channel samples scaled to [-1,1].
func ReadWAV(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	bits := buf.SourceBitDepth
	if bits <= 0 {
		bits = int(dec.BitDepth)
	}
	if bits <= 0 {
		bits = 16
	}
	scale := 1.0 / math.Ldexp(1, bits-1)

	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([][]float64, ch)
	for c := range out {
		out[c] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < ch; c++ {
			out[c][i] = float64(buf.Data[i*ch+c]) * scale
		}
	}
	return out, buf.Format.SampleRate, nil
}

// ReadWAVMono reads a WAV file and averages its channels.
func ReadWAVMono(path string) ([]float64, int, error) {
	chans, sr, err := ReadWAV(path)
	if err != nil {
		return nil, 0, err
	}
	return Mixdown(chans), sr, nil
}

// Mixdown averages equal-length channels into one.
func Mixdown(chans [][]float64) []float64 {
	if len(chans) == 0 {
		return nil
	}
	if len(chans) == 1 {
		return chans[0]
	}
	out := make([]float64, len(chans[0]))
	inv := 1.0 / float64(len(chans))
	for _, c := range chans {
		for i := range out {
			out[i] += c[i] * inv
		}
	}
	return out
}

func ResampleIfNeeded(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// WriteWAV writes equal-length channels as a 16-bit interleaved WAV file.
func WriteWAV(path string, chans [][]float32, sampleRate int) error {
	if len(chans) == 0 {
		return fmt.Errorf("no channels to write")
	}
	frames := len(chans[0])
	for c := range chans {
		if len(chans[c]) != frames {
			return fmt.Errorf("channel %d length %d != %d", c, len(chans[c]), frames)
		}
	}
	data := make([]float32, frames*len(chans))
	for i := 0; i < frames; i++ {
		for c := range chans {
			data[i*len(chans)+c] = chans[c][i]
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, len(chans), 1)
	defer enc.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: len(chans),
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}

func WriteMonoWAV(path string, data []float32, sampleRate int) error {
	return WriteWAV(path, [][]float32{data}, sampleRate)
}

// ToFloat32 converts samples for the encoder.
func ToFloat32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}
