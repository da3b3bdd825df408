// Package anatomy holds the landmark catalog and resolves model-authored pain
// points against it.
package anatomy

import (
	"fmt"
	"os"

	"github.com/Rrens/pain-mapper/internal/domain"
	"gopkg.in/yaml.v3"
)

// Catalog is an immutable, name-indexed set of landmarks
type Catalog struct {
	landmarks []domain.Landmark
	byName    map[string]int
}

// NewCatalog builds a catalog. Names must be non-empty and unique.
func NewCatalog(landmarks []domain.Landmark) (*Catalog, error) {
	c := &Catalog{
		landmarks: make([]domain.Landmark, len(landmarks)),
		byName:    make(map[string]int, len(landmarks)),
	}
	copy(c.landmarks, landmarks)

	for i, l := range c.landmarks {
		if l.Name == "" {
			return nil, fmt.Errorf("%w: landmark %d has no name", domain.ErrInvalidInput, i)
		}
		if _, dup := c.byName[l.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate landmark %q", domain.ErrInvalidInput, l.Name)
		}
		c.byName[l.Name] = i
	}
	return c, nil
}

// Lookup finds a landmark by exact, case-sensitive name
func (c *Catalog) Lookup(name string) (domain.Landmark, bool) {
	if c == nil {
		return domain.Landmark{}, false
	}
	i, ok := c.byName[name]
	if !ok {
		return domain.Landmark{}, false
	}
	return c.landmarks[i], true
}

// NameAt returns the first landmark sitting exactly at pos
func (c *Catalog) NameAt(pos domain.Vec3) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, l := range c.landmarks {
		if l.Position == pos {
			return l.Name, true
		}
	}
	return "", false
}

// Landmarks returns a copy of the catalog in its original order
func (c *Catalog) Landmarks() []domain.Landmark {
	if c == nil {
		return nil
	}
	out := make([]domain.Landmark, len(c.landmarks))
	copy(out, c.landmarks)
	return out
}

// Len returns the number of landmarks
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.landmarks)
}

type catalogFile struct {
	Landmarks []domain.Landmark `yaml:"landmarks"`
}

// LoadCatalog reads a YAML landmark file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read landmark catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse landmark catalog: %w", err)
	}

	return NewCatalog(f.Landmarks)
}
