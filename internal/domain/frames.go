package domain

import "time"

// FrameType is the persisted short tag for a raw calibration/light frame.
type FrameType string

const (
	FrameLight    FrameType = "light"
	FrameDark     FrameType = "dark"
	FrameFlat     FrameType = "flat"
	FrameBias     FrameType = "bias"
	FrameDarkFlat FrameType = "dark_flat"
)

// FrameSet groups the raw frames belonging to one image. At most one per image.
type FrameSet struct {
	ID        string    `json:"frameset_id" gorm:"column:frameset_id;primaryKey;size:36"`
	ImageID   string    `json:"image_id" gorm:"size:36;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

func (FrameSet) TableName() string { return "frame_sets" }

// RawFrame is one physical calibration or light frame on disk.
type RawFrame struct {
	ID           string     `json:"frame_id" gorm:"column:frame_id;primaryKey;size:36"`
	FrameSetID   string     `json:"frameset_id" gorm:"column:frameset_id;size:36;index"`
	FrameType    FrameType  `json:"frame_type" gorm:"size:20"`
	FilePath     string     `json:"file_path" gorm:"type:text"`
	ExposureTime *float64   `json:"exposure_time,omitempty"`
	ISO          *int       `json:"iso,omitempty" gorm:"column:iso"`
	Temperature  *float64   `json:"temperature,omitempty"`
	CaptureTime  *time.Time `json:"capture_time,omitempty"`
}

func (RawFrame) TableName() string { return "raw_frames" }

// FrameSummary caches per-type frame counts for one image. Written once at
// finalize time; counts must equal the RawFrame rows of the same frame set
// at the moment of creation.
type FrameSummary struct {
	ID              string `json:"summary_id" gorm:"column:summary_id;primaryKey;size:36"`
	ImageID         string `json:"image_id" gorm:"size:36;uniqueIndex"`
	LightFrameCount int    `json:"light_frame_count"`
	DarkFrameCount  int    `json:"dark_frame_count"`
	FlatFrameCount  int    `json:"flat_frame_count"`
	BiasFrameCount  int    `json:"bias_frame_count"`
	DarkFlatCount   int    `json:"dark_flat_count"`
}

func (FrameSummary) TableName() string { return "frame_summaries" }
