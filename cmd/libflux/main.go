// Command libflux builds the flux engine as a C shared library:
//
//	go build -buildmode=c-shared -o libflux.so ./cmd/libflux
//
// The exported symbols are declared in flux.h. Handles are opaque uint64
// values; 0 means construction failed and flux_last_error says why. Passing
// an unknown or destroyed handle aborts the process.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/piee-kun/flux-screensavers/internal/binding"
)

func main() {}

func payload(settings *C.char) *string {
	if settings == nil {
		return nil
	}
	s := C.GoString(settings)
	return &s
}

//export flux_new
func flux_new(logicalWidth, logicalHeight, physicalWidth, physicalHeight C.double, settings *C.char) C.uint64_t {
	h, err := binding.Default.Create(float64(logicalWidth), float64(logicalHeight),
		float64(physicalWidth), float64(physicalHeight), payload(settings))
	if err != nil {
		return 0
	}
	return C.uint64_t(h.Uint64())
}

//export flux_new_with_pixel_ratio
func flux_new_with_pixel_ratio(logicalWidth, logicalHeight, pixelRatio C.double, settings *C.char) C.uint64_t {
	h, err := binding.Default.CreateWithPixelRatio(float64(logicalWidth), float64(logicalHeight),
		float64(pixelRatio), payload(settings))
	if err != nil {
		return 0
	}
	return C.uint64_t(h.Uint64())
}

// flux_animate returns 0 on success and -1 when the frame was rejected.
//
//export flux_animate
func flux_animate(handle C.uint64_t, timestamp C.double) C.int {
	if err := binding.Default.Animate(binding.Handle(handle), float64(timestamp)); err != nil {
		return -1
	}
	return 0
}

//export flux_resize
func flux_resize(handle C.uint64_t, logicalWidth, logicalHeight, physicalWidth, physicalHeight C.double) C.int {
	err := binding.Default.Resize(binding.Handle(handle), float64(logicalWidth), float64(logicalHeight),
		float64(physicalWidth), float64(physicalHeight))
	if err != nil {
		return -1
	}
	return 0
}

//export flux_resize_with_pixel_ratio
func flux_resize_with_pixel_ratio(handle C.uint64_t, logicalWidth, logicalHeight, pixelRatio C.double) C.int {
	err := binding.Default.ResizeWithPixelRatio(binding.Handle(handle), float64(logicalWidth),
		float64(logicalHeight), float64(pixelRatio))
	if err != nil {
		return -1
	}
	return 0
}

//export flux_destroy
func flux_destroy(handle C.uint64_t) {
	binding.Default.Destroy(binding.Handle(handle))
}

// flux_last_error returns the most recent failure as a string the caller
// releases with flux_free_string, or NULL.
//
//export flux_last_error
func flux_last_error() *C.char {
	err := binding.Default.LastError()
	if err == nil {
		return nil
	}
	return C.CString(err.Error())
}

//export flux_free_string
func flux_free_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}
