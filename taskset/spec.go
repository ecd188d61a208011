// Package taskset implements the active run variant for task-list
// submissions: a fixed set of tasks, each reserving its own resources and
// launched once onto a matching offer.
package taskset

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Run names become path components in storage and labels on reservations;
// keep them to a safe alphabet. Never '/'.
var nameRE = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// Spec is the parsed form of a yaml-kind submission.
type Spec struct {
	Name      string     `yaml:"name"`
	Role      string     `yaml:"role"`
	Principal string     `yaml:"principal"`
	Tasks     []TaskSpec `yaml:"tasks"`
}

type TaskSpec struct {
	Name string  `yaml:"name"`
	Cpus float64 `yaml:"cpus"`
	Mem  float64 `yaml:"mem"`

	// Disk, when positive, additionally creates a persistent volume of
	// this many megabytes.
	Disk float64 `yaml:"disk"`

	// Command is opaque to the scheduler; it rides along in the launch.
	Command string `yaml:"cmd"`
}

// ParseSpec parses and validates submission bytes.
func ParseSpec(data []byte) (*Spec, error) {
	spec := &Spec{}
	if err := yaml.UnmarshalStrict(data, spec); err != nil {
		return nil, errors.Wrap(err, "parsing spec yaml")
	}
	if !nameRE.MatchString(spec.Name) {
		return nil, fmt.Errorf("invalid service name %q: must be alphanumeric-plus-hyphen", spec.Name)
	}
	if spec.Role == "" {
		spec.Role = spec.Name + "-role"
	}
	if spec.Principal == "" {
		spec.Principal = spec.Name + "-principal"
	}
	if len(spec.Tasks) == 0 {
		return nil, fmt.Errorf("service %q has no tasks", spec.Name)
	}
	seen := map[string]bool{}
	for _, task := range spec.Tasks {
		if !nameRE.MatchString(task.Name) {
			return nil, fmt.Errorf("invalid task name %q", task.Name)
		}
		if seen[task.Name] {
			return nil, fmt.Errorf("duplicate task name %q", task.Name)
		}
		seen[task.Name] = true
		if task.Cpus <= 0 || task.Mem <= 0 {
			return nil, fmt.Errorf("task %q must request positive cpus and mem", task.Name)
		}
		if task.Disk < 0 {
			return nil, fmt.Errorf("task %q has negative disk", task.Name)
		}
	}
	return spec, nil
}
