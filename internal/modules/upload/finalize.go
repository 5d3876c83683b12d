package upload

import (
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"sort"
	"strings"

	"astrocat/internal/pkg/storage"
	"astrocat/internal/pkg/validator"
)

// Finalize-form field schema. The submission is heterogeneous by contract:
// JSON metadata blocks, direct file attachments under category-prefixed
// names, a fileData side-channel describing expected files, and references
// to already-completed chunked uploads.
const (
	fieldImageDetails    = "imageDetails"
	fieldLocationDetails = "locationDetails"
	fieldGearDetails     = "gearDetails.selectedGear"
	fieldSessionDetails  = "sessionDetails"
	fieldMainImage       = "images.mainImage"
	fieldFileData        = "images.fileData"
	filePrefix           = "images."
	chunkRefPrefix       = "chunkedFiles["
)

type fileDataEntry struct {
	Name string `json:"name"`
}

// Finalizer reconciles one finalize submission into a CategorizedFileSet
// plus parsed metadata. It touches the blob store but never the database.
type Finalizer struct {
	store *storage.Store
}

func NewFinalizer(store *storage.Store) *Finalizer {
	return &Finalizer{store: store}
}

// Parse runs the categorization steps in order. Each step is additive: a
// later step never removes or replaces what an earlier one resolved.
func (f *Finalizer) Parse(form *multipart.Form) (*FinalizeResult, error) {
	res := &FinalizeResult{Files: newCategorizedFileSet()}

	if err := f.parseMetadata(form, res); err != nil {
		return nil, err
	}
	if err := f.saveMainImage(form, res); err != nil {
		return nil, err
	}
	if err := f.saveCategoryFiles(form, res); err != nil {
		return nil, err
	}
	if err := f.applyFileData(form, res); err != nil {
		return nil, err
	}
	f.applyChunkRefs(form, res)

	return res, nil
}

// parseMetadata decodes each JSON block independently; any present block
// that fails to parse or validate fails the whole request.
func (f *Finalizer) parseMetadata(form *multipart.Form, res *FinalizeResult) error {
	if raw, ok := formValue(form, fieldImageDetails); ok {
		var d ImageDetails
		if err := decodeBlock(fieldImageDetails, raw, &d); err != nil {
			return err
		}
		res.Image = &d
	}
	if raw, ok := formValue(form, fieldLocationDetails); ok {
		var d LocationDetails
		if err := decodeBlock(fieldLocationDetails, raw, &d); err != nil {
			return err
		}
		res.Location = &d
	}
	if raw, ok := formValue(form, fieldSessionDetails); ok {
		var d SessionDetails
		if err := decodeBlock(fieldSessionDetails, raw, &d); err != nil {
			return err
		}
		res.Session = &d
	}
	if raw, ok := formValue(form, fieldGearDetails); ok {
		gear, err := decodeGear(raw)
		if err != nil {
			return err
		}
		res.Gear = gear
	}
	return nil
}

func decodeBlock(block, raw string, dst any) error {
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return &InvalidMetadataError{Block: block, Err: err}
	}
	if fields := validator.Validate(dst); fields != nil {
		return &InvalidMetadataError{Block: block, Err: fmt.Errorf("validation failed: %v", fields)}
	}
	return nil
}

// decodeGear accepts either a bare id array or an object wrapping one.
func decodeGear(raw string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err == nil {
		return ids, nil
	}
	var d gearDetails
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, &InvalidMetadataError{Block: fieldGearDetails, Err: err}
	}
	return d.SelectedGear, nil
}

func (f *Finalizer) saveMainImage(form *multipart.Form, res *FinalizeResult) error {
	files := form.File[fieldMainImage]
	if len(files) == 0 {
		return nil
	}
	path, err := f.store.SaveMultipart(string(CategoryMainImage), files[0])
	if err != nil {
		return &StorageError{Field: fieldMainImage, Err: err}
	}
	res.Files.MainImage = path
	return nil
}

// saveCategoryFiles stores every direct attachment whose field name is
// prefixed by a known category. Frame attachments feed the frame set;
// documentation attachments are saved under their own directory only.
func (f *Finalizer) saveCategoryFiles(form *multipart.Form, res *FinalizeResult) error {
	for _, field := range sortedFileFields(form) {
		cat := fieldCategory(field)
		if cat == CategoryUnknown {
			continue
		}
		for _, fh := range form.File[field] {
			path, err := f.store.SaveMultipart(string(cat), fh)
			if err != nil {
				return &StorageError{Field: field, Err: err}
			}
			if cat == CategoryDocumentation {
				res.Files.Documentation = append(res.Files.Documentation, path)
				continue
			}
			res.Files.Frames[cat] = append(res.Files.Frames[cat], path)
		}
	}
	return nil
}

// applyFileData reconciles the side-channel: declared entries are matched
// against attachments that arrived under ambiguous field names, and raw
// positional values that already look like resolved paths or URLs are
// accepted as references. Unmatched entries are skipped, not failed.
func (f *Finalizer) applyFileData(form *multipart.Form, res *FinalizeResult) error {
	raw, ok := formValue(form, fieldFileData)
	if !ok {
		return nil
	}

	var declared map[string][]fileDataEntry
	if err := json.Unmarshal([]byte(raw), &declared); err != nil {
		return &InvalidMetadataError{Block: fieldFileData, Err: err}
	}

	for _, cat := range FrameCategories {
		entries := declared[string(cat)]
		for i, entry := range entries {
			if entry.Name != "" {
				fh := findAmbiguousAttachment(form, entry.Name)
				if fh != nil {
					path, err := f.store.SaveMultipart(string(cat), fh)
					if err != nil {
						return &StorageError{Field: fieldFileData, Err: err}
					}
					appendUnique(res.Files.Frames, cat, path)
					continue
				}
			}

			// positional hidden field, e.g. images.lightFrames[0]
			key := fmt.Sprintf("%s%s[%d]", filePrefix, cat, i)
			if v, ok := formValue(form, key); ok && isResolvedReference(v) {
				appendUnique(res.Files.Frames, cat, v)
				continue
			}

			log.Printf("finalize_filedata_skip category=%s entry=%q", cat, entry.Name)
		}
	}
	return nil
}

// applyChunkRefs routes completed chunked uploads by classifying their file
// identifier; an identifier naming the main-image slot fills that slot only
// if no direct main image arrived.
func (f *Finalizer) applyChunkRefs(form *multipart.Form, res *FinalizeResult) {
	for _, key := range sortedValueKeys(form) {
		if !strings.HasPrefix(key, chunkRefPrefix) || !strings.HasSuffix(key, "]") {
			continue
		}
		fileID := key[len(chunkRefPrefix) : len(key)-1]
		path, _ := formValue(form, key)
		if path == "" {
			continue
		}

		if cat := ClassifyFrame(fileID); cat != CategoryUnknown {
			appendUnique(res.Files.Frames, cat, path)
			continue
		}
		if isMainImageSlot(fileID) && res.Files.MainImage == "" {
			res.Files.MainImage = path
			continue
		}
		log.Printf("finalize_chunkref_skip file_id=%q", fileID)
	}
}

func isMainImageSlot(fileID string) bool {
	return strings.Contains(strings.ToLower(fileID), "main")
}

// isResolvedReference accepts values that already point somewhere: an
// existing file on disk or an absolute URL.
func isResolvedReference(v string) bool {
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return true
	}
	return storage.Exists(v)
}

// findAmbiguousAttachment searches attachments that did not arrive under a
// recognized category field for a file-name match.
func findAmbiguousAttachment(form *multipart.Form, name string) *multipart.FileHeader {
	for field, files := range form.File {
		if field == fieldMainImage || fieldCategory(field) != CategoryUnknown {
			continue
		}
		for _, fh := range files {
			if fh.Filename == name {
				return fh
			}
		}
	}
	return nil
}

// attachmentCategories are the categories a direct file field may name:
// the frame categories plus documentation. The main image has its own
// dedicated field.
var attachmentCategories = append(append([]Category(nil), FrameCategories...), CategoryDocumentation)

// fieldCategory maps a file field name like "images.darkFrames" (or
// "images.darkFrames[2]") to its category.
func fieldCategory(field string) Category {
	if !strings.HasPrefix(field, filePrefix) {
		return CategoryUnknown
	}
	rest := strings.TrimPrefix(field, filePrefix)
	for _, cat := range attachmentCategories {
		if rest == string(cat) || strings.HasPrefix(rest, string(cat)+"[") {
			return cat
		}
	}
	return CategoryUnknown
}

func appendUnique(frames map[Category][]string, cat Category, path string) {
	for _, existing := range frames[cat] {
		if existing == path {
			return
		}
	}
	frames[cat] = append(frames[cat], path)
}

func formValue(form *multipart.Form, key string) (string, bool) {
	vs := form.Value[key]
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Map iteration order is randomized; sort so repeated submissions resolve
// files in a stable order.
func sortedFileFields(form *multipart.Form) []string {
	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func sortedValueKeys(form *multipart.Form) []string {
	keys := make([]string, 0, len(form.Value))
	for key := range form.Value {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
