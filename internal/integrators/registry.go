package integrators

import (
	"fmt"
	"sort"

	"github.com/piee-kun/flux-screensavers/internal/dynamo"
)

var constructors = map[string]func() dynamo.Integrator{
	"euler":    func() dynamo.Integrator { return NewEuler() },
	"rk4":      func() dynamo.Integrator { return NewRK4() },
	"leapfrog": func() dynamo.Integrator { return NewLeapfrog() },
}

// Default is the stepper used when no integrator is named.
const Default = "leapfrog"

// ByName returns a fresh integrator. Integrators keep scratch buffers, so each
// engine needs its own.
func ByName(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = Default
	}
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator %q (available: %v)", name, Names())
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
