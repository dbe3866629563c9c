package mlmodel

import (
	"fmt"
	"path/filepath"
)

// LoadFailure records why one competitor's model could not be loaded.
type LoadFailure struct {
	Competitor string
	Err        error
}

// Registry maps competitor names to their loaded models. It is built once
// at startup and never mutated afterwards, so lookups are safe for
// concurrent use. Competitors whose artifacts failed to load are not
// present; their failures are kept for reporting.
type Registry struct {
	models      map[string]Model
	competitors []string
	failures    []LoadFailure
}

// ArtifactFileName returns the artifact file name of a competitor's model.
func ArtifactFileName(competitor string) string {
	return "model_" + competitor + ".json"
}

// LoadAll builds the registry by reading model_<competitor>.json from dir
// for each configured competitor. A load failure does not abort the rest:
// it is recorded and the competitor stays unavailable.
func LoadAll(dir string, competitors []string) *Registry {
	r := &Registry{models: make(map[string]Model, len(competitors))}
	for _, competitor := range competitors {
		m, err := LoadArtifact(filepath.Join(dir, ArtifactFileName(competitor)))
		if err != nil {
			r.failures = append(r.failures, LoadFailure{Competitor: competitor, Err: err})
			continue
		}
		r.models[competitor] = m
		r.competitors = append(r.competitors, competitor)
	}
	return r
}

// Model returns the loaded model of the competitor. An unknown name and a
// configured-but-never-loaded competitor are the same miss.
func (r *Registry) Model(competitor string) (Model, error) {
	m, ok := r.models[competitor]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrModelNotFound, competitor)
	}
	return m, nil
}

// Competitors returns the successfully loaded competitor names in
// configured order.
func (r *Registry) Competitors() []string {
	return append([]string(nil), r.competitors...)
}

// Failures returns the per-competitor load failures in configured order.
func (r *Registry) Failures() []LoadFailure {
	return append([]LoadFailure(nil), r.failures...)
}

// Len returns the number of loaded models.
func (r *Registry) Len() int {
	return len(r.models)
}
