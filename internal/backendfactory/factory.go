// internal/backendfactory/factory.go
package backendfactory

import (
	"errors"
	"fmt"

	"github.com/mwiater/adapterbench/internal/appconfig"
	"github.com/mwiater/adapterbench/internal/compute"
	"github.com/mwiater/adapterbench/internal/compute/cpu"
	"github.com/mwiater/adapterbench/internal/logging"
)

// ErrUnknownBackend is returned for a backend name with no implementation.
var ErrUnknownBackend = errors.New("unknown backend")

// Names lists the backends that can be constructed.
func Names() []string {
	return []string{"cpu"}
}

// New selects and configures the compute backend named by the configuration.
// With debug enabled the backend is wrapped so every call is logged.
func New(cfg *appconfig.Config) (compute.Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to backend factory")
	}

	var backend compute.Backend
	switch name := cfg.BackendName(); name {
	case "cpu":
		var opts []cpu.Option
		if cfg.Seed != 0 {
			opts = append(opts, cpu.WithSeed(cfg.Seed))
		}
		backend = cpu.New(opts...)
	default:
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownBackend, name, Names())
	}
	logging.LogEvent("Backend ready: %s", cfg.BackendName())

	if cfg.Debug {
		backend = NewTraced(backend)
	}
	return backend, nil
}
