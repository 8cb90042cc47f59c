// Package regions holds the fixed, ordered district table the sync job walks.
package regions

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"toiletsync/internal/domain"
)

//go:embed regions.yaml
var defaultTable []byte

type table struct {
	Cities []struct {
		Key     string          `yaml:"key"`
		Name    string          `yaml:"name"`
		Regions []domain.Region `yaml:"regions"`
	} `yaml:"cities"`
}

// Registry is immutable once loaded; every accessor returns a copy.
type Registry struct {
	all    []domain.Region
	byID   map[string]int
	cities []string
}

// Load parses a YAML region table. Order in the file is the batch order.
func Load(data []byte) (*Registry, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse region table: %w", err)
	}
	r := &Registry{byID: map[string]int{}}
	for _, c := range t.Cities {
		if strings.TrimSpace(c.Key) == "" || strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("city entry needs key and name")
		}
		r.cities = append(r.cities, c.Key)
		for _, reg := range c.Regions {
			if reg.ID == "" || reg.Name == "" {
				return nil, fmt.Errorf("city %s: region needs id and name", c.Key)
			}
			if _, dup := r.byID[reg.ID]; dup {
				return nil, fmt.Errorf("duplicate region id %q", reg.ID)
			}
			reg.City = c.Key
			reg.CityName = c.Name
			r.byID[reg.ID] = len(r.all)
			r.all = append(r.all, reg)
		}
	}
	if len(r.all) == 0 {
		return nil, fmt.Errorf("region table is empty")
	}
	return r, nil
}

// Default returns the embedded Taipei + New Taipei table.
func Default() *Registry {
	r, err := Load(defaultTable)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) All() []domain.Region {
	out := make([]domain.Region, len(r.all))
	copy(out, r.all)
	return out
}

func (r *Registry) ByID(id string) (domain.Region, bool) {
	i, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Region{}, false
	}
	return r.all[i], true
}

func (r *Registry) ByCity(city string) []domain.Region {
	var out []domain.Region
	for _, reg := range r.all {
		if reg.City == city {
			out = append(out, reg)
		}
	}
	return out
}

func (r *Registry) IsCity(city string) bool {
	for _, c := range r.cities {
		if c == city {
			return true
		}
	}
	return false
}

func (r *Registry) Cities() []string {
	out := make([]string, len(r.cities))
	copy(out, r.cities)
	return out
}

func (r *Registry) Len() int { return len(r.all) }

// Refs lists {id,name} for every region, used in "unknown district" replies.
func (r *Registry) Refs() []domain.RegionRef {
	out := make([]domain.RegionRef, 0, len(r.all))
	for _, reg := range r.all {
		out = append(out, reg.Ref())
	}
	return out
}
