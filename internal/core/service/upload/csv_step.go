package upload

import (
	"context"
	"geo-upload/internal/core/domain"
	"slices"
	"strings"
)

var (
	latitudeNames  = []string{"latitude", "lat"}
	longitudeNames = []string{"longitude", "lon", "lng", "long"}
)

// csvStep maps two numeric columns to a point geometry. It skips itself when
// the import engine already found a point column.
func (s *uploadService) csvStep(ctx context.Context, req domain.StepRequest, session *domain.UploadSession) (stepOutcome, error) {
	job, err := session.Job()
	if err != nil {
		return stepOutcome{}, err
	}

	item, err := s.importer.Describe(ctx, job)
	if err != nil {
		return stepOutcome{}, err
	}

	if len(item.AttributesWithBinding(domain.BindingPoint)) > 0 {
		session.CompletedStep = domain.StepCSV
		return advance(session), nil
	}

	candidates := item.AttributesWithBinding(domain.BindingInteger, domain.BindingDouble)
	slices.Sort(candidates)

	form := &domain.CSVForm{
		PresentChoices:  len(candidates) >= 2,
		PointCandidates: candidates,
	}

	var errs []string
	if req.Write {
		lat, lng := req.FormValue("lat"), req.FormValue("lng")
		if err := checkPointColumns(lat, lng, candidates); err != nil {
			errs = err.Messages
			form.SelectedLat, form.SelectedLng = lat, lng
		} else {
			if err := s.importer.ApplyGeometryFromColumns(ctx, job, lat, lng); err != nil {
				return stepOutcome{}, err
			}
			session.Options.LatField, session.Options.LngField = lat, lng
			return advance(session), nil
		}
	} else {
		form.SelectedLat, form.SelectedLng = guessPointColumns(candidates)
		form.GuessedLatOrLng = form.SelectedLat != "" || form.SelectedLng != ""
	}

	return render(session, &domain.FormView{
		LayerName:   session.LayerName,
		AsyncUpload: s.asyncStep(session),
		Errors:      errs,
		CSV:         form,
	}), nil
}

// checkPointColumns validates a latitude and longitude column choice
func checkPointColumns(lat, lng string, candidates []string) *domain.ValidationError {
	switch {
	case lat == "" || lng == "":
		return domain.NewValidationError("Missing latitude/longitude fields")
	case lat == lng:
		return domain.NewValidationError("Cannot choose same column for latitude and longitude")
	case !slices.Contains(candidates, lat) || !slices.Contains(candidates, lng):
		return domain.NewValidationError("Invalid latitude/longitude fields")
	}
	return nil
}

// guessPointColumns picks latitude and longitude columns by name among the
// numeric candidates. The last match wins.
func guessPointColumns(candidates []string) (lat, lng string) {
	for _, candidate := range candidates {
		name := strings.ToLower(candidate)
		switch {
		case slices.Contains(latitudeNames, name):
			lat = candidate
		case slices.Contains(longitudeNames, name):
			lng = candidate
		}
	}
	return lat, lng
}
