// Package generator converts raw submission payloads into hosted runs.
// Each generator is installed under a type label; the registry owns the
// mapping and the recovery path that rebuilds runs from the spec store.
package generator

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/run"
	"github.com/twitter/harbor/state"
)

// Generator converts submission bytes into a constructed run.
type Generator interface {
	// Generate constructs a run from the payload data, which is no larger
	// than MaxDataSizeBytes.
	Generate(data []byte) (run.Run, error)

	// MaxDataSizeBytes bounds the payload, or <=0 for no limit (not
	// recommended).
	MaxDataSizeBytes() int
}

// Registry holds the installed generators by type label, plus an optional
// default type used when a submission omits its type (valid only when the
// caller configured one).
type Registry struct {
	generators  map[string]Generator
	defaultType string
}

func NewRegistry(defaultType string) *Registry {
	return &Registry{generators: map[string]Generator{}, defaultType: defaultType}
}

func (r *Registry) Register(specType string, g Generator) *Registry {
	r.generators[specType] = g
	return r
}

// Get resolves a type label, applying the default for an empty label.
// Returns the resolved label along with the generator.
func (r *Registry) Get(specType string) (Generator, string, bool) {
	if specType == "" {
		specType = r.defaultType
	}
	g, ok := r.generators[specType]
	return g, specType, ok
}

func (r *Registry) Types() []string {
	types := []string{}
	for t := range r.generators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// RecoverRuns rebuilds the previously admitted runs from the spec store.
// Invoked on startup before registration. A service whose state store
// carries the uninstall bit is reconstructed directly as an uninstalling
// run, so uninstall progress resumes across restarts.
//
// Like spec recovery, generator problems are logged per-service and then
// failed once in aggregate.
func (r *Registry) RecoverRuns(specStore *state.SpecStore, persister state.Persister) ([]run.Run, error) {
	specs, err := specStore.RecoverSpecs()
	if err != nil {
		return nil, err
	}

	var malformed *multierror.Error
	runs := []run.Run{}
	for _, spec := range specs {
		stateStore := state.NewStateStore(persister, spec.ServiceName)
		if stateStore.IsUninstalling() {
			log.Infof("Recovering service %s directly in uninstall mode", spec.ServiceName)
			runs = append(runs, run.NewUninstallRun(spec.ServiceName, stateStore))
			continue
		}

		g, _, ok := r.Get(spec.Type)
		if !ok {
			log.Errorf("Missing generator with type=%s for spec %s (service %s). Generator types are: %v",
				spec.Type, spec.SpecID, spec.ServiceName, r.Types())
			malformed = multierror.Append(malformed, fmt.Errorf(
				"no generator of type %q for service %s", spec.Type, spec.ServiceName))
			continue
		}
		recovered, err := g.Generate(spec.Data)
		if err != nil {
			log.Errorf("Failed to regenerate service %s from spec %s: %v", spec.ServiceName, spec.SpecID, err)
			malformed = multierror.Append(malformed, fmt.Errorf(
				"regenerating service %s: %v", spec.ServiceName, err))
			continue
		}
		if recovered.Name() != spec.ServiceName {
			log.Errorf("Spec %s regenerated under name %q but was stored for service %q",
				spec.SpecID, recovered.Name(), spec.ServiceName)
			malformed = multierror.Append(malformed, fmt.Errorf(
				"service name mismatch for %s: regenerated as %q", spec.ServiceName, recovered.Name()))
			continue
		}
		runs = append(runs, recovered)
	}

	names := []string{}
	for _, recovered := range runs {
		names = append(names, recovered.Name())
	}
	log.Infof("Recovered %d service(s): %v", len(runs), names)
	if err := malformed.ErrorOrNil(); err != nil {
		return nil, state.WrapError(state.LogicError, err, "one or more services could not be recovered")
	}
	return runs, nil
}
