package engine

import (
	"github.com/piee-kun/flux-screensavers/internal/dynamo"
	"github.com/piee-kun/flux-screensavers/internal/gpu"
	"go.uber.org/zap"
)

type options struct {
	logger     *zap.Logger
	device     gpu.Device
	integrator dynamo.Integrator
}

type Option func(*options)

// WithLogger sets the logger. Engines are silent by default.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDevice sets the device resources are allocated on. By default each
// engine gets its own CPU device limited to the configured maxTextureSize.
func WithDevice(d gpu.Device) Option {
	return func(o *options) { o.device = d }
}

// WithIntegrator overrides the fluid stepper.
func WithIntegrator(i dynamo.Integrator) Option {
	return func(o *options) { o.integrator = i }
}
