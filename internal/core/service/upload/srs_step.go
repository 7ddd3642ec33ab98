package upload

import (
	"context"
	"geo-upload/internal/core/domain"
)

// srsStep asks for a coordinate reference system when the import engine
// could not find a usable one, and skips itself otherwise
func (s *uploadService) srsStep(ctx context.Context, req domain.StepRequest, session *domain.UploadSession) (stepOutcome, error) {
	job, err := session.Job()
	if err != nil {
		return stepOutcome{}, err
	}

	if session.TargetResourceType != domain.ResourceTypeFeatureType {
		session.CompletedStep = domain.StepSRS
		return advance(session), nil
	}

	status, err := s.importer.JobState(ctx, job)
	if err != nil {
		return stepOutcome{}, err
	}
	if !status.NeedsCRS() {
		session.CompletedStep = domain.StepSRS
		return advance(session), nil
	}

	if !req.Write {
		return s.srsForm(ctx, session, job, "", nil)
	}

	form := srsForm{SRS: req.FormValue("srs")}
	if err := validate.Struct(form); err != nil {
		return s.srsForm(ctx, session, job, form.SRS, fieldMessages(err))
	}

	code := normalizeSRS(form.SRS)
	if err := s.importer.ApplySRS(ctx, job, code); err != nil {
		return stepOutcome{}, err
	}
	session.Options.SRS = code
	return advance(session), nil
}

func (s *uploadService) srsForm(ctx context.Context, session *domain.UploadSession, job domain.JobHandle, selected string, errs []string) (stepOutcome, error) {
	item, err := s.importer.Describe(ctx, job)
	if err != nil {
		return stepOutcome{}, err
	}
	return render(session, &domain.FormView{
		LayerName:   session.LayerName,
		AsyncUpload: s.asyncStep(session),
		Errors:      errs,
		SRS:         &domain.SRSForm{NativeCRS: item.NativeCRS, Selected: selected},
	}), nil
}
