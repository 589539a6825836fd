//go:build js && wasm

package main

import (
	"bytes"
	"strings"
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-mammoth/cabinet"
	"github.com/cwbudde/algo-mammoth/pedal"
)

const (
	maxFrames   = 128
	numChannels = 2
)

var (
	globalPedal *pedal.Pedal
	cabinets    []*cabinet.Convolver
	cabinetOn   bool
	// Planar stereo block shared with the worklet: left then right.
	ioBuffer [numChannels * maxFrames]float32
	views    = make([][]float32, numChannels)
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmSetParam", js.FuncOf(wasmSetParam))
	js.Global().Set("wasmLoadPreset", js.FuncOf(wasmLoadPreset))
	js.Global().Set("wasmPresetNames", js.FuncOf(wasmPresetNames))
	js.Global().Set("wasmSetBypass", js.FuncOf(wasmSetBypass))
	js.Global().Set("wasmSetCabinet", js.FuncOf(wasmSetCabinet))
	js.Global().Set("wasmGetState", js.FuncOf(wasmGetState))
	js.Global().Set("wasmSetState", js.FuncOf(wasmSetState))
	js.Global().Set("wasmGetBufferPointer", js.FuncOf(wasmGetBufferPointer))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM mammoth module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Float()

	globalPedal = pedal.New(numChannels)
	globalPedal.Prepare(sampleRate)

	cfg := cabinet.DefaultSpeakerConfig()
	cfg.SampleRate = int(sampleRate)
	ir, err := cabinet.GenerateSpeaker(cfg)
	if err != nil {
		println("cabinet:", err.Error())
	}
	cabinets = make([]*cabinet.Convolver, numChannels)
	for c := range cabinets {
		cabinets[c] = cabinet.NewConvolver(cfg.SampleRate)
		if ir != nil {
			if err := cabinets[c].SetIR(ir); err != nil {
				println("cabinet:", err.Error())
			}
		}
	}

	println("Mammoth initialized at", int(sampleRate), "Hz")
	return nil
}

func wasmSetParam(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalPedal == nil {
		return false
	}
	if err := globalPedal.Controls().Set(args[0].String(), args[1].Float()); err != nil {
		println("set param:", err.Error())
		return false
	}
	return true
}

func wasmLoadPreset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalPedal == nil {
		return false
	}
	if err := globalPedal.LoadPreset(args[0].Int()); err != nil {
		println("load preset:", err.Error())
		return false
	}
	return true
}

func wasmPresetNames(this js.Value, args []js.Value) interface{} {
	if globalPedal == nil {
		return js.ValueOf([]interface{}{})
	}
	names := globalPedal.Presets()
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return js.ValueOf(out)
}

func wasmSetBypass(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalPedal == nil {
		return nil
	}
	globalPedal.Controls().SetBypass(args[0].Bool())
	return nil
}

// wasmSetCabinet toggles the synthesized speaker cabinet after the pedal.
// An optional second argument sets the wet mix.
func wasmSetCabinet(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalPedal == nil {
		return nil
	}
	if args[0].Bool() && !cabinetOn {
		for _, c := range cabinets {
			c.Reset()
		}
	}
	cabinetOn = args[0].Bool()
	if len(args) > 1 {
		for _, c := range cabinets {
			c.SetMix(args[1].Float())
		}
	}
	return nil
}

func wasmGetState(this js.Value, args []js.Value) interface{} {
	if globalPedal == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := globalPedal.SaveState(&buf); err != nil {
		println("save state:", err.Error())
		return ""
	}
	return buf.String()
}

func wasmSetState(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalPedal == nil {
		return false
	}
	if err := globalPedal.LoadState(strings.NewReader(args[0].String())); err != nil {
		println("load state:", err.Error())
		return false
	}
	return true
}

func wasmGetBufferPointer(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(uintptr(unsafe.Pointer(&ioBuffer[0])))
}

// wasmProcessBlock processes numFrames of the shared buffer in place. The
// right channel starts at offset maxFrames.
func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalPedal == nil {
		return 0
	}
	numFrames := args[0].Int()
	if numFrames > maxFrames {
		numFrames = maxFrames
	}
	if numFrames < 1 {
		return 0
	}

	views[0] = ioBuffer[:numFrames]
	views[1] = ioBuffer[maxFrames : maxFrames+numFrames]
	globalPedal.ProcessBlock(views)
	if cabinetOn && !globalPedal.Controls().Bypass() {
		for c, v := range views {
			if err := cabinets[c].Process(v); err != nil {
				println("cabinet:", err.Error())
			}
		}
	}
	return js.ValueOf(uintptr(unsafe.Pointer(&ioBuffer[0])))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
