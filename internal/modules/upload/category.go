package upload

import (
	"strings"

	"astrocat/internal/domain"
)

// Category is one of the fixed upload slots a file can belong to.
type Category string

const (
	CategoryMainImage     Category = "main-image"
	CategoryLightFrames   Category = "lightFrames"
	CategoryDarkFrames    Category = "darkFrames"
	CategoryFlatFrames    Category = "flatFrames"
	CategoryBiasFrames    Category = "biasFrames"
	CategoryDarkFlats     Category = "darkFlats"
	CategoryDocumentation Category = "documentation"

	// CategoryUnknown marks an identifier the classifier could not place.
	CategoryUnknown Category = ""
)

// FrameCategories are the categories that persist as raw frames, in the
// order summaries report them.
var FrameCategories = []Category{
	CategoryLightFrames,
	CategoryDarkFrames,
	CategoryFlatFrames,
	CategoryBiasFrames,
	CategoryDarkFlats,
}

var validCategories = map[Category]bool{
	CategoryMainImage:     true,
	CategoryLightFrames:   true,
	CategoryDarkFrames:    true,
	CategoryFlatFrames:    true,
	CategoryBiasFrames:    true,
	CategoryDarkFlats:     true,
	CategoryDocumentation: true,
}

// ParseCategory validates a client-supplied category string.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, validCategories[c]
}

// FrameType maps a frame category to its persisted short tag.
func (c Category) FrameType() (domain.FrameType, bool) {
	switch c {
	case CategoryLightFrames:
		return domain.FrameLight, true
	case CategoryDarkFrames:
		return domain.FrameDark, true
	case CategoryFlatFrames:
		return domain.FrameFlat, true
	case CategoryBiasFrames:
		return domain.FrameBias, true
	case CategoryDarkFlats:
		return domain.FrameDarkFlat, true
	}
	return "", false
}

// ClassifyFrame infers a frame category from an opaque upload identifier.
// Matching is case-insensitive with a fixed priority: an identifier carrying
// both "dark" and "flat" is a dark-flat, never a plain dark.
func ClassifyFrame(identifier string) Category {
	id := strings.ToLower(identifier)
	switch {
	case strings.Contains(id, "dark") && strings.Contains(id, "flat"):
		return CategoryDarkFlats
	case strings.Contains(id, "dark"):
		return CategoryDarkFrames
	case strings.Contains(id, "flat"):
		return CategoryFlatFrames
	case strings.Contains(id, "bias"):
		return CategoryBiasFrames
	case strings.Contains(id, "light"):
		return CategoryLightFrames
	}
	return CategoryUnknown
}
