package domain

import "time"

// Image is one catalogued astrophotograph.
type Image struct {
	ID              string     `json:"image_id" gorm:"column:image_id;primaryKey;size:36"`
	UserID          string     `json:"user_id" gorm:"size:36;index;not null"`
	Title           string     `json:"title" gorm:"size:100"`
	Description     string     `json:"description,omitempty" gorm:"type:text"`
	FilePath        string     `json:"file_path,omitempty" gorm:"type:text"`
	CaptureDateTime *time.Time `json:"capture_date_time,omitempty"`
	ExposureTime    *float64   `json:"exposure_time,omitempty"`
	ISO             *int       `json:"iso,omitempty" gorm:"column:iso"`
	Aperture        *float64   `json:"aperture,omitempty"`
	FocalLength     *float64   `json:"focal_length,omitempty"`
	FocusScore      *float64   `json:"focus_score,omitempty"`
}

func (Image) TableName() string { return "images" }

// Join rows. The schema keeps these as explicit entities with composite keys
// rather than gorm many2many tables, so finalization can create them inside
// the same transaction as everything else.

type ImageObject struct {
	ImageID  string `json:"image_id" gorm:"primaryKey;size:36"`
	ObjectID string `json:"object_id" gorm:"primaryKey;size:36"`
}

func (ImageObject) TableName() string { return "image_objects" }

type ImageGear struct {
	ImageID string `json:"image_id" gorm:"primaryKey;size:36"`
	GearID  string `json:"gear_id" gorm:"primaryKey;size:36"`
}

func (ImageGear) TableName() string { return "image_gear" }

type ImageSession struct {
	ImageID   string `json:"image_id" gorm:"primaryKey;size:36"`
	SessionID string `json:"session_id" gorm:"primaryKey;size:36"`
}

func (ImageSession) TableName() string { return "image_sessions" }

// ProcessingLog records one post-processing step applied to an image.
type ProcessingLog struct {
	ID              string    `json:"log_id" gorm:"column:log_id;primaryKey;size:36"`
	ImageID         string    `json:"image_id" gorm:"size:36;index"`
	StepDescription string    `json:"step_description" gorm:"type:text"`
	Timestamp       time.Time `json:"timestamp"`
	SoftwareUsed    string    `json:"software_used,omitempty" gorm:"size:100"`
	Notes           string    `json:"notes,omitempty" gorm:"type:text"`
}

func (ProcessingLog) TableName() string { return "processing_logs" }
