//go:build js && wasm

// Command fluxwasm exposes the engine to a browser page as globalThis.flux.
// Handles are BigInts; construction returns 0n on failure and
// flux.lastError() says why.
package main

import (
	"strconv"
	"syscall/js"

	"github.com/piee-kun/flux-screensavers/internal/binding"
)

func main() {
	flux := js.Global().Get("Object").New()
	flux.Set("new", js.FuncOf(newEngine))
	flux.Set("newWithPixelRatio", js.FuncOf(newWithPixelRatio))
	flux.Set("animate", js.FuncOf(animate))
	flux.Set("resize", js.FuncOf(resize))
	flux.Set("resizeWithPixelRatio", js.FuncOf(resizeWithPixelRatio))
	flux.Set("destroy", js.FuncOf(destroy))
	flux.Set("lastError", js.FuncOf(lastError))
	js.Global().Set("flux", flux)

	select {}
}

func toJS(h binding.Handle) js.Value {
	return js.Global().Get("BigInt").Invoke(strconv.FormatUint(h.Uint64(), 10))
}

// handle accepts a BigInt or a plain number.
func handle(v js.Value) binding.Handle {
	n, err := strconv.ParseUint(v.Call("toString").String(), 10, 64)
	if err != nil {
		panic(binding.ErrInvalidHandle)
	}
	return binding.Handle(n)
}

// settings reads an optional payload. null and undefined select the
// defaults, a string is passed as is, and any other value is serialized with
// JSON.stringify so that settings.Parse rejects non-objects.
func settings(args []js.Value, i int) *string {
	if len(args) <= i {
		return nil
	}
	v := args[i]
	var s string
	switch v.Type() {
	case js.TypeNull, js.TypeUndefined:
		return nil
	case js.TypeString:
		s = v.String()
	default:
		out := js.Global().Get("JSON").Call("stringify", v)
		if out.Type() != js.TypeString {
			// functions and symbols have no JSON form
			s = "<" + v.Type().String() + ">"
		} else {
			s = out.String()
		}
	}
	return &s
}

func floats(args []js.Value, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i < len(args) {
			out[i] = args[i].Float()
		}
	}
	return out
}

func newEngine(this js.Value, args []js.Value) any {
	f := floats(args, 4)
	h, err := binding.Default.Create(f[0], f[1], f[2], f[3], settings(args, 4))
	if err != nil {
		return toJS(0)
	}
	return toJS(h)
}

func newWithPixelRatio(this js.Value, args []js.Value) any {
	f := floats(args, 3)
	h, err := binding.Default.CreateWithPixelRatio(f[0], f[1], f[2], settings(args, 3))
	if err != nil {
		return toJS(0)
	}
	return toJS(h)
}

func animate(this js.Value, args []js.Value) any {
	err := binding.Default.Animate(handle(args[0]), args[1].Float())
	return err == nil
}

func resize(this js.Value, args []js.Value) any {
	f := floats(args[1:], 4)
	return binding.Default.Resize(handle(args[0]), f[0], f[1], f[2], f[3]) == nil
}

func resizeWithPixelRatio(this js.Value, args []js.Value) any {
	f := floats(args[1:], 3)
	return binding.Default.ResizeWithPixelRatio(handle(args[0]), f[0], f[1], f[2]) == nil
}

func destroy(this js.Value, args []js.Value) any {
	binding.Default.Destroy(handle(args[0]))
	return nil
}

func lastError(this js.Value, args []js.Value) any {
	if err := binding.Default.LastError(); err != nil {
		return err.Error()
	}
	return nil
}
