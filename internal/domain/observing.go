package domain

import "time"

// Location is a physical observing site.
type Location struct {
	ID          string   `json:"location_id" gorm:"column:location_id;primaryKey;size:36"`
	UserID      string   `json:"user_id" gorm:"size:36;index"`
	Name        string   `json:"name" gorm:"size:100"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	BortleClass *int     `json:"bortle_class,omitempty"`
	Notes       string   `json:"notes,omitempty" gorm:"type:text"`
}

func (Location) TableName() string { return "locations" }

// ObservingSession is one observing event, optionally tied to a location.
// Named to avoid colliding with upload sessions.
type ObservingSession struct {
	ID                  string     `json:"session_id" gorm:"column:session_id;primaryKey;size:36"`
	UserID              string     `json:"user_id" gorm:"size:36;index"`
	SessionDate         *time.Time `json:"session_date,omitempty" gorm:"type:date"`
	WeatherConditions   string     `json:"weather_conditions,omitempty" gorm:"type:text"`
	SeeingConditions    string     `json:"seeing_conditions,omitempty" gorm:"type:text"`
	MoonPhase           string     `json:"moon_phase,omitempty" gorm:"size:50"`
	LightPollutionIndex *int       `json:"light_pollution_index,omitempty"`
	LocationID          *string    `json:"location_id,omitempty" gorm:"size:36"`
}

func (ObservingSession) TableName() string { return "sessions" }
