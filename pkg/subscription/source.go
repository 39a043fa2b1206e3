package subscription

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PlansListSource loads plan definitions for a Catalog.
type PlansListSource interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// PlansListSourceFunc adapts a function to PlansListSource.
type PlansListSourceFunc func(ctx context.Context) (map[string]Plan, error)

func (f PlansListSourceFunc) Load(ctx context.Context) (map[string]Plan, error) { return f(ctx) }

type inMemSource struct {
	plans map[string]Plan
}

// NewInMemSource returns a source serving a copy of the given plans.
// Panics if no plans are provided.
func NewInMemSource(plans ...Plan) PlansListSource {
	if len(plans) == 0 {
		panic("subscription: at least one plan is required")
	}
	byID := make(map[string]Plan, len(plans))
	for _, p := range plans {
		byID[p.ID] = p
	}
	return &inMemSource{plans: byID}
}

func (s *inMemSource) Load(context.Context) (map[string]Plan, error) {
	out := make(map[string]Plan, len(s.plans))
	for id, p := range s.plans {
		out[id] = p
	}
	return out, nil
}

// yamlPlans is the document layout of a plans file:
//
//	plans:
//	  - id: "1"
//	    name: Free
//	    max_businesses: 1
//	    max_offers: 3
//	    interval: none
type yamlPlans struct {
	Plans []Plan `yaml:"plans"`
}

// ParseYAMLPlans decodes a plans document.
func ParseYAMLPlans(data []byte) (map[string]Plan, error) {
	var doc yamlPlans
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrInvalidPlanConfiguration, err)
	}
	if len(doc.Plans) == 0 {
		return nil, errors.Join(ErrInvalidPlanConfiguration, errors.New("plans document is empty"))
	}

	out := make(map[string]Plan, len(doc.Plans))
	for _, p := range doc.Plans {
		if _, dup := out[p.ID]; dup {
			return nil, errors.Join(ErrInvalidPlanConfiguration, fmt.Errorf("duplicate plan %q", p.ID))
		}
		out[p.ID] = p
	}
	return out, nil
}

type yamlFileSource struct {
	path string
}

// NewYAMLFileSource reads plans from a YAML file on every Load.
func NewYAMLFileSource(path string) PlansListSource {
	return &yamlFileSource{path: path}
}

func (s *yamlFileSource) Load(context.Context) (map[string]Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read plans file %s: %w", s.path, err)
	}
	return ParseYAMLPlans(data)
}
