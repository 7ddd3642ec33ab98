package upload

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const bytesPerMB = 1024 * 1024

// stagedContentTypes is fixed so staging does not depend on the OS mime database
var stagedContentTypes = map[string]string{
	".csv":  "text/csv",
	".kml":  "application/vnd.google-earth.kml+xml",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".zip":  "application/zip",
	".sld":  "application/vnd.ogc.sld+xml",
	".xml":  "application/xml",
	".prj":  "text/plain",
	".cpg":  "text/plain",
}

func (s *uploadService) saveStep(ctx context.Context, req domain.StepRequest) (stepOutcome, error) {
	if !req.Write {
		form, err := s.saveForm(ctx, req.UserID)
		if err != nil {
			return stepOutcome{}, err
		}
		return render(nil, form), nil
	}

	form := saveForm{
		LayerTitle:  strings.TrimSpace(req.FormValue("layer_title")),
		Abstract:    strings.TrimSpace(req.FormValue("abstract")),
		Permissions: strings.TrimSpace(req.FormValue("permissions")),
	}
	if err := validate.Struct(form); err != nil {
		return stepOutcome{}, domain.NewValidationError(fieldMessages(err)...)
	}

	files, err := inspectFiles(req.Files)
	if err != nil {
		return stepOutcome{}, err
	}

	session, err := s.stageUpload(ctx, req.UserID, form, files)
	if err != nil {
		return stepOutcome{}, err
	}
	return advance(session), nil
}

func (s *uploadService) saveForm(ctx context.Context, userID string) (*domain.FormView, error) {
	save := &domain.SaveForm{}

	free, err := s.space.FreeBytes(os.TempDir())
	if err != nil {
		s.logger.Warn("could not read free space", "error", err)
	} else {
		save.StorageRemainingMB = free / bytesPerMB
		save.EnoughStorage = save.StorageRemainingMB > s.cfg.MinFreeMB
	}

	incomplete, err := s.uow.UploadRepo().FindResumableByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list incomplete uploads: %w", err)
	}
	save.Incomplete = incomplete
	if save.Incomplete == nil {
		save.Incomplete = []domain.Upload{}
	}

	return &domain.FormView{AsyncUpload: s.asyncEnabled(), Save: save}, nil
}

// stageUpload copies the files to staging, opens the import job and records
// the upload. Staged files are released when any part fails.
func (s *uploadService) stageUpload(ctx context.Context, userID string, form saveForm, files *fileSet) (session *domain.UploadSession, err error) {
	id := uuid.New()
	prefix := domain.StagingPrefixFor(id)
	session = domain.NewUploadSession(id, userID, files.uploadType, prefix, files.base.Name, files.layerName, s.now())

	defer func() {
		if err == nil {
			return
		}
		if releaseErr := s.staging.Release(ctx, prefix); releaseErr != nil {
			s.logger.Warn("could not release staged files", "prefix", prefix, "error", releaseErr)
		}
	}()

	staged := make([]domain.UploadFile, 0, len(files.companions)+1)
	var baseKey string
	for _, file := range files.all() {
		key := prefix + files.layerName + strings.ToLower(filepath.Ext(file.Name))
		uploadFile, err := s.stageFile(ctx, id, key, file)
		if err != nil {
			return nil, err
		}
		staged = append(staged, *uploadFile)

		switch file.Field {
		case fieldBaseFile:
			baseKey = key
		case fieldSLDFile:
			session.Options.StyleFile = key
		}
	}

	location, err := s.staging.DownloadURL(ctx, baseKey)
	if err != nil {
		return nil, fmt.Errorf("could not sign staged file: %w", err)
	}

	job, err := s.importer.StartJob(ctx, userID, files.layerName, location, false)
	if err != nil {
		return nil, err
	}
	if err := session.SetImportJob(job); err != nil {
		return nil, err
	}

	item, err := s.importer.Describe(ctx, job)
	if err != nil {
		return nil, err
	}
	session.TargetResourceType = item.ResourceType

	session.Options.Title = form.LayerTitle
	if session.Options.Title == "" {
		session.Options.Title = files.layerName
	}
	session.Options.Abstract = form.Abstract
	session.Options.Permissions = form.Permissions

	err = s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.UploadRepo().Upsert(ctx, domain.UploadFromSession(*session, domain.UploadStatePending)); err != nil {
			return err
		}
		_, err := uow.UploadFileRepo().CreateMany(ctx, staged)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not record upload: %w", err)
	}

	s.logger.Info("upload staged",
		"upload_id", id,
		"import_id", job.ImportID,
		"upload_type", files.uploadType,
		"files", len(staged),
	)
	return session, nil
}

func (s *uploadService) stageFile(ctx context.Context, uploadID uuid.UUID, key string, file domain.UploadedFile) (*domain.UploadFile, error) {
	content, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", file.Name, err)
	}
	defer content.Close()

	contentType, ok := stagedContentTypes[filepath.Ext(key)]
	if !ok {
		contentType = "application/octet-stream"
	}

	hash := sha256.New()
	if err := s.staging.Stage(ctx, key, io.TeeReader(content, hash), file.Size, contentType); err != nil {
		return nil, fmt.Errorf("could not stage %s: %w", file.Name, err)
	}

	return &domain.UploadFile{
		ID:         uuid.New(),
		UploadID:   uploadID,
		FileName:   file.Name,
		StorageKey: key,
		SizeBytes:  file.Size,
		Checksum:   base64.StdEncoding.EncodeToString(hash.Sum(nil)),
		CreatedAt:  s.now(),
	}, nil
}
