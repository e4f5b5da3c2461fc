package scoring

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/water-risk-service/internal/domain"
)

//go:embed regions.yaml
var defaultRegionsYAML []byte

// Region is a named bounding box.
type Region struct {
	Name          string `yaml:"name"`
	domain.Bounds `yaml:",inline"`
}

// Regions holds the coastal and urban areas used by ProximityImpact.
type Regions struct {
	Coastal []Region `yaml:"coastal"`
	Urban   []Region `yaml:"urban"`
}

// IsCoastal reports whether c lies inside any coastal region.
func (r Regions) IsCoastal(c domain.Coordinate) bool {
	return anyContains(r.Coastal, c)
}

// IsUrban reports whether c lies inside any urban region.
func (r Regions) IsUrban(c domain.Coordinate) bool {
	return anyContains(r.Urban, c)
}

func anyContains(regions []Region, c domain.Coordinate) bool {
	for _, reg := range regions {
		if reg.Contains(c) {
			return true
		}
	}
	return false
}

// DefaultRegions returns the built-in region set.
func DefaultRegions() Regions {
	r, err := ParseRegions(defaultRegionsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded regions.yaml: %v", err))
	}
	return r
}

// LoadRegions reads a region file. An empty path yields DefaultRegions.
func LoadRegions(path string) (Regions, error) {
	if path == "" {
		return DefaultRegions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Regions{}, fmt.Errorf("read regions file: %w", err)
	}
	return ParseRegions(data)
}

// ErrInvertedRegion is returned for a region whose minimum exceeds its maximum.
var ErrInvertedRegion = errors.New("inverted region")

// ParseRegions decodes YAML region definitions.
func ParseRegions(data []byte) (Regions, error) {
	var r Regions
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Regions{}, fmt.Errorf("parse regions: %w", err)
	}
	for _, set := range [][]Region{r.Coastal, r.Urban} {
		for _, reg := range set {
			if reg.MinLat > reg.MaxLat || reg.MinLon > reg.MaxLon {
				return Regions{}, fmt.Errorf("parse regions: %w: %q", ErrInvertedRegion, reg.Name)
			}
		}
	}
	return r, nil
}
