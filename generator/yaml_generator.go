package generator

import (
	"github.com/twitter/harbor/run"
	"github.com/twitter/harbor/state"
	"github.com/twitter/harbor/taskset"
)

const defaultYAMLSizeLimitBytes = 512 * 1024

// YAMLGenerator builds task-set runs from yaml submissions. Installed
// under the "yaml" type label.
type YAMLGenerator struct {
	persister state.Persister
	sizeLimit int
}

func NewYAMLGenerator(persister state.Persister) *YAMLGenerator {
	return &YAMLGenerator{persister: persister, sizeLimit: defaultYAMLSizeLimitBytes}
}

func (g *YAMLGenerator) Generate(data []byte) (run.Run, error) {
	spec, err := taskset.ParseSpec(data)
	if err != nil {
		return nil, err
	}
	return taskset.NewRun(spec, state.NewStateStore(g.persister, spec.Name)), nil
}

func (g *YAMLGenerator) MaxDataSizeBytes() int {
	return g.sizeLimit
}
