// Package gpu provides the size-dependent resources an engine renders into.
//
// A [Device] hands out textures and buffers and keeps count of what is live,
// so hosts and tests can verify that a destroyed engine released everything
// it allocated:
//
//	dev := gpu.NewCPUDevice(gpu.DefaultMaxTextureSize)
//	before := dev.Live()
//	// create, animate, resize, destroy ...
//	if dev.Live() != before { /* leak */ }
//
// The CPU device backs every resource with plain slices. It implements the
// same contract a GPU-backed device would: allocations larger than the
// device's maximum texture size fail with [ErrTooLarge].
package gpu
