package domain

// Landmark is a named anatomical reference point with a fixed position.
// The model refers to body locations by landmark name only.
type Landmark struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	Position Vec3   `json:"position" yaml:"position"`
	Label    string `json:"label" yaml:"label"`
	Category string `json:"category" yaml:"category"`
}
