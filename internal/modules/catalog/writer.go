package catalog

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"astrocat/internal/domain"
	"astrocat/internal/modules/upload"
)

// FinalizationError wraps whatever failed inside the finalize transaction.
// The transaction is rolled back as a whole; no partial graph survives.
type FinalizationError struct {
	Cause error
}

func (e *FinalizationError) Error() string {
	return fmt.Sprintf("finalization failed: %v", e.Cause)
}

func (e *FinalizationError) Unwrap() error { return e.Cause }

// Writer turns a finalize result into the persisted record graph: image,
// object/gear/session links, frame set, raw frames and the frame summary —
// one transaction, all or nothing.
type Writer struct {
	db *gorm.DB
}

func NewWriter(db *gorm.DB) *Writer {
	return &Writer{db: db}
}

func (w *Writer) Finalize(ctx context.Context, userID string, res *upload.FinalizeResult) (string, error) {
	imageID := uuid.New().String()

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(buildImage(imageID, userID, res)).Error; err != nil {
			return err
		}

		if res.Image != nil && res.Image.ObjectID != "" {
			join := &domain.ImageObject{ImageID: imageID, ObjectID: res.Image.ObjectID}
			if err := tx.Create(join).Error; err != nil {
				return err
			}
		}

		for _, gearID := range res.Gear {
			join := &domain.ImageGear{ImageID: imageID, GearID: gearID}
			if err := tx.Create(join).Error; err != nil {
				return err
			}
		}

		if res.Session != nil {
			if err := w.linkSession(tx, userID, imageID, res); err != nil {
				return err
			}
		}

		frameSet := &domain.FrameSet{
			ID:        uuid.New().String(),
			ImageID:   imageID,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(frameSet).Error; err != nil {
			return err
		}

		counts, err := createRawFrames(tx, frameSet.ID, res.Files.Frames)
		if err != nil {
			return err
		}

		summary := &domain.FrameSummary{
			ID:              uuid.New().String(),
			ImageID:         imageID,
			LightFrameCount: counts[upload.CategoryLightFrames],
			DarkFrameCount:  counts[upload.CategoryDarkFrames],
			FlatFrameCount:  counts[upload.CategoryFlatFrames],
			BiasFrameCount:  counts[upload.CategoryBiasFrames],
			DarkFlatCount:   counts[upload.CategoryDarkFlats],
		}
		return tx.Create(summary).Error
	})
	if err != nil {
		return "", &FinalizationError{Cause: err}
	}

	return imageID, nil
}

func buildImage(imageID, userID string, res *upload.FinalizeResult) *domain.Image {
	img := &domain.Image{
		ID:       imageID,
		UserID:   userID,
		FilePath: res.Files.MainImage,
	}
	d := res.Image
	if d == nil {
		return img
	}

	img.Title = d.Title
	img.Description = d.Description
	img.ExposureTime = d.ExposureTime
	img.ISO = d.ISO
	img.Aperture = d.Aperture
	img.FocalLength = d.FocalLength
	img.FocusScore = d.FocusScore
	if d.CaptureDateTime != "" {
		if t, ok := parseTimestamp(d.CaptureDateTime); ok {
			img.CaptureDateTime = &t
		} else {
			log.Printf("finalize_capture_time_skip value=%q", d.CaptureDateTime)
		}
	}
	return img
}

// linkSession resolves or creates the observing session (and its location)
// and joins it to the image. A reused identifier must exist.
func (w *Writer) linkSession(tx *gorm.DB, userID, imageID string, res *upload.FinalizeResult) error {
	sessionID := res.Session.SessionID
	if sessionID != "" {
		var existing domain.ObservingSession
		if err := tx.Where("session_id = ?", sessionID).First(&existing).Error; err != nil {
			return fmt.Errorf("observing session %s: %w", sessionID, err)
		}
	} else {
		locationID, err := w.resolveLocation(tx, userID, res.Location)
		if err != nil {
			return err
		}

		session := &domain.ObservingSession{
			ID:                  uuid.New().String(),
			UserID:              userID,
			WeatherConditions:   res.Session.WeatherConditions,
			SeeingConditions:    res.Session.SeeingConditions,
			MoonPhase:           res.Session.MoonPhase,
			LightPollutionIndex: res.Session.LightPollutionIndex,
			LocationID:          locationID,
		}
		// malformed dates are tolerated: the session is kept, the date dropped
		if res.Session.SessionDate != "" {
			if d, err := time.Parse("2006-01-02", res.Session.SessionDate); err == nil {
				session.SessionDate = &d
			} else {
				log.Printf("finalize_session_date_skip value=%q", res.Session.SessionDate)
			}
		}
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		sessionID = session.ID
	}

	join := &domain.ImageSession{ImageID: imageID, SessionID: sessionID}
	return tx.Create(join).Error
}

func (w *Writer) resolveLocation(tx *gorm.DB, userID string, d *upload.LocationDetails) (*string, error) {
	if d == nil {
		return nil, nil
	}
	if d.LocationID != "" {
		var existing domain.Location
		if err := tx.Where("location_id = ?", d.LocationID).First(&existing).Error; err != nil {
			return nil, fmt.Errorf("location %s: %w", d.LocationID, err)
		}
		return &existing.ID, nil
	}
	if d.Name == "" && d.Latitude == nil && d.Longitude == nil && d.BortleClass == nil && d.Notes == "" {
		return nil, nil
	}

	loc := &domain.Location{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        d.Name,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		BortleClass: d.BortleClass,
		Notes:       d.Notes,
	}
	if err := tx.Create(loc).Error; err != nil {
		return nil, err
	}
	return &loc.ID, nil
}

// createRawFrames persists one RawFrame per resolved path and returns the
// per-category counts the summary is built from. Entries with no usable
// path are skipped.
func createRawFrames(tx *gorm.DB, frameSetID string, frames map[upload.Category][]string) (map[upload.Category]int, error) {
	counts := make(map[upload.Category]int, len(upload.FrameCategories))
	for _, cat := range upload.FrameCategories {
		frameType, ok := cat.FrameType()
		if !ok {
			continue
		}
		for _, path := range frames[cat] {
			if path == "" {
				continue
			}
			frame := &domain.RawFrame{
				ID:         uuid.New().String(),
				FrameSetID: frameSetID,
				FrameType:  frameType,
				FilePath:   path,
			}
			if err := tx.Create(frame).Error; err != nil {
				return nil, err
			}
			counts[cat]++
		}
	}
	return counts, nil
}

func parseTimestamp(v string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
