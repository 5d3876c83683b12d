package upload

// Chunk-upload protocol bodies. Field names are fixed by the client contract.

type InitRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	FileSize    int64  `json:"fileSize"`
	FileType    string `json:"fileType"`
	UploadType  string `json:"uploadType" binding:"required"`
	FileID      string `json:"fileId"`
	TotalChunks int    `json:"totalChunks" binding:"required,gt=0"`
}

type CompleteRequest struct {
	UploadID string `json:"uploadId" binding:"required"`
}

// Finalize-form metadata blocks, each submitted as an independent JSON
// string field.

type ImageDetails struct {
	Title           string   `json:"title" validate:"max=100"`
	Description     string   `json:"description"`
	CaptureDateTime string   `json:"capture_date_time"`
	ExposureTime    *float64 `json:"exposure_time" validate:"omitempty,gte=0"`
	ISO             *int     `json:"iso" validate:"omitempty,gte=0"`
	Aperture        *float64 `json:"aperture" validate:"omitempty,gt=0"`
	FocalLength     *float64 `json:"focal_length" validate:"omitempty,gt=0"`
	FocusScore      *float64 `json:"focus_score"`
	ObjectID        string   `json:"object_id"`
}

type LocationDetails struct {
	LocationID  string   `json:"location_id"`
	Name        string   `json:"name" validate:"max=100"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	BortleClass *int     `json:"bortle_class" validate:"omitempty,gte=1,lte=9"`
	Notes       string   `json:"notes"`
}

type SessionDetails struct {
	SessionID           string `json:"session_id"`
	SessionDate         string `json:"session_date"`
	WeatherConditions   string `json:"weather_conditions"`
	SeeingConditions    string `json:"seeing_conditions"`
	MoonPhase           string `json:"moon_phase" validate:"max=50"`
	LightPollutionIndex *int   `json:"light_pollution_index" validate:"omitempty,gte=0"`
}

type gearDetails struct {
	SelectedGear []string `json:"selectedGear"`
}

// CategorizedFileSet is the finalizer's output: resolved file paths per
// frame category, the optional main image, and any documentation
// attachments. An all-empty set is legal; persisting it is the catalog
// writer's concern. Documentation files live on disk only; no database
// row tracks them.
type CategorizedFileSet struct {
	MainImage     string
	Frames        map[Category][]string
	Documentation []string
}

func newCategorizedFileSet() CategorizedFileSet {
	frames := make(map[Category][]string, len(FrameCategories))
	for _, c := range FrameCategories {
		frames[c] = nil
	}
	return CategorizedFileSet{Frames: frames}
}

// FinalizeResult bundles the parsed metadata with the categorized files.
type FinalizeResult struct {
	Image    *ImageDetails
	Location *LocationDetails
	Session  *SessionDetails
	Gear     []string
	Files    CategorizedFileSet
}
