package upload

import (
	"archive/zip"
	"fmt"
	"geo-upload/internal/core/domain"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// multipart field names of the save form
const (
	fieldBaseFile = "base_file"
	fieldDBFFile  = "dbf_file"
	fieldSHXFile  = "shx_file"
	fieldPRJFile  = "prj_file"
	fieldSLDFile  = "sld_file"
	fieldXMLFile  = "xml_file"
)

// companion fields and the extension each accepts
var companionFields = map[string]string{
	fieldDBFFile: ".dbf",
	fieldSHXFile: ".shx",
	fieldPRJFile: ".prj",
	fieldSLDFile: ".sld",
	fieldXMLFile: ".xml",
}

// extensions allowed next to a main file, inside archives too
var companionExtensions = []string{".dbf", ".shx", ".prj", ".sld", ".xml", ".cpg"}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// fileSet is a validated set of uploaded files
type fileSet struct {
	uploadType domain.UploadType
	base       domain.UploadedFile
	companions []domain.UploadedFile
	// layerName is derived from the main file name
	layerName string
}

// all returns the base file followed by its companions
func (f fileSet) all() []domain.UploadedFile {
	return append([]domain.UploadedFile{f.base}, f.companions...)
}

func uploadTypeForExtension(ext string) (domain.UploadType, bool) {
	switch strings.ToLower(ext) {
	case ".shp":
		return domain.UploadTypeShapefile, true
	case ".tif", ".tiff":
		return domain.UploadTypeRaster, true
	case ".kml":
		return domain.UploadTypeKML, true
	case ".csv":
		return domain.UploadTypeCSV, true
	default:
		return "", false
	}
}

// sanitizeLayerName strips the extension and replaces everything but ascii
// letters, digits and underscores
func sanitizeLayerName(fileName string) string {
	base := filepath.Base(fileName)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if name == "" {
		return "layer"
	}
	return name
}

func baseName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// inspectFiles validates the files of a save request and infers the upload type
func inspectFiles(files []domain.UploadedFile) (*fileSet, error) {
	byField := make(map[string]domain.UploadedFile, len(files))
	for _, file := range files {
		byField[file.Field] = file
	}

	base, ok := byField[fieldBaseFile]
	if !ok || base.Name == "" {
		return nil, domain.NewValidationError(fieldBaseFile + ": This field is required.")
	}

	ext := strings.ToLower(filepath.Ext(base.Name))
	if !slices.Contains(domain.SupportedExtensions, ext) {
		return nil, &domain.UnsupportedTypeError{Extension: ext}
	}

	set := &fileSet{base: base, layerName: sanitizeLayerName(base.Name)}

	var messages []string
	for _, field := range []string{fieldDBFFile, fieldSHXFile, fieldPRJFile, fieldSLDFile, fieldXMLFile} {
		companion, ok := byField[field]
		if !ok || companion.Name == "" {
			continue
		}
		want := companionFields[field]
		if strings.ToLower(filepath.Ext(companion.Name)) != want {
			messages = append(messages, fmt.Sprintf("%s: Only %s files are accepted.", field, want))
			continue
		}
		set.companions = append(set.companions, companion)
	}
	if len(messages) > 0 {
		return nil, domain.NewValidationError(messages...)
	}

	if ext == ".zip" {
		uploadType, err := inspectArchive(base)
		if err != nil {
			return nil, err
		}
		set.uploadType = uploadType
		return set, nil
	}

	set.uploadType, _ = uploadTypeForExtension(ext)
	if set.uploadType == domain.UploadTypeShapefile {
		if err := checkShapefileParts(set, byField); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func checkShapefileParts(set *fileSet, byField map[string]domain.UploadedFile) error {
	var messages []string
	for _, field := range []string{fieldDBFFile, fieldSHXFile} {
		if file, ok := byField[field]; !ok || file.Name == "" {
			messages = append(messages, fmt.Sprintf("%s: This field is required for shapefiles.", field))
		}
	}
	if len(messages) > 0 {
		return domain.NewValidationError(messages...)
	}

	want := baseName(set.base.Name)
	for _, field := range []string{fieldDBFFile, fieldSHXFile, fieldPRJFile} {
		file, ok := byField[field]
		if !ok || file.Name == "" {
			continue
		}
		if !strings.EqualFold(baseName(file.Name), want) {
			return domain.NewValidationError("It looks like you're uploading components from different Shapefiles. Please double-check your file selection.")
		}
	}
	return nil
}

// inspectArchive finds the main spatial file inside a zip archive
func inspectArchive(file domain.UploadedFile) (domain.UploadType, error) {
	content, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("could not open %s: %w", file.Name, err)
	}
	defer content.Close()

	reader, err := zip.NewReader(content, file.Size)
	if err != nil {
		return "", domain.NewValidationError(fmt.Sprintf("%s: The zip archive is not readable.", fieldBaseFile))
	}

	entries := make(map[string]bool, len(reader.File))
	var mainEntry string
	var mainType domain.UploadType
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() || strings.HasPrefix(path.Base(entry.Name), ".") {
			continue
		}
		ext := strings.ToLower(path.Ext(entry.Name))
		entries[strings.ToLower(entry.Name)] = true

		if uploadType, ok := uploadTypeForExtension(ext); ok {
			if mainEntry != "" {
				return "", domain.NewValidationError(fmt.Sprintf("%s: The zip archive contains more than one spatial file.", fieldBaseFile))
			}
			mainEntry, mainType = entry.Name, uploadType
			continue
		}
		if !slices.Contains(companionExtensions, ext) {
			return "", domain.NewValidationError(fmt.Sprintf("%s: The zip archive contains an unsupported file: %s", fieldBaseFile, path.Base(entry.Name)))
		}
	}

	if mainEntry == "" {
		return "", domain.NewValidationError(fmt.Sprintf("%s: The zip archive does not contain a Shapefile, GeoTiff, KML or CSV file.", fieldBaseFile))
	}

	if mainType == domain.UploadTypeShapefile {
		stem := strings.ToLower(strings.TrimSuffix(mainEntry, path.Ext(mainEntry)))
		for _, ext := range []string{".dbf", ".shx"} {
			if !entries[stem+ext] {
				return "", domain.NewValidationError(fmt.Sprintf("%s: The shapefile in the zip archive is missing its %s file.", fieldBaseFile, ext))
			}
		}
	}
	return mainType, nil
}
