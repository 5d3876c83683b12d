package domain

// CelestialObject is a shared reference entry (galaxy, nebula, star...).
// Not owned by a user; seeded via cmd/seed.
type CelestialObject struct {
	ID             string   `json:"object_id" gorm:"column:object_id;primaryKey;size:36"`
	Name           string   `json:"name" gorm:"size:100"`
	ObjectType     string   `json:"object_type" gorm:"size:50"`
	RightAscension *float64 `json:"right_ascension,omitempty"`
	Declination    *float64 `json:"declination,omitempty"`
	Magnitude      *float64 `json:"magnitude,omitempty"`
	Description    string   `json:"description,omitempty" gorm:"type:text"`
}

func (CelestialObject) TableName() string { return "celestial_objects" }

// Gear is one piece of equipment (telescope, camera, mount) owned by a user.
type Gear struct {
	ID       string `json:"gear_id" gorm:"column:gear_id;primaryKey;size:36"`
	UserID   string `json:"user_id" gorm:"size:36;index"`
	GearType string `json:"gear_type" gorm:"size:50"`
	Brand    string `json:"brand" gorm:"size:100"`
	Model    string `json:"model" gorm:"size:100"`
}

func (Gear) TableName() string { return "gear" }
