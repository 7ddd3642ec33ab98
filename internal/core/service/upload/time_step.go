package upload

import (
	"context"
	"geo-upload/internal/core/domain"
	"slices"
	"strconv"
	"strings"
)

const defaultPresentation = "LIST"

// timeStep configures the time dimension of a vector layer
func (s *uploadService) timeStep(ctx context.Context, req domain.StepRequest, session *domain.UploadSession) (stepOutcome, error) {
	job, err := session.Job()
	if err != nil {
		return stepOutcome{}, err
	}

	item, err := s.importer.Describe(ctx, job)
	if err != nil {
		return stepOutcome{}, err
	}
	choices := timeChoices(*item)

	if !req.Write {
		var spaced []string
		for _, attr := range item.Attributes {
			if strings.Contains(attr.Name, " ") {
				spaced = append(spaced, attr.Name)
			}
		}
		if len(spaced) > 0 {
			return stepOutcome{}, domain.NewValidationError("Attributes with spaces are not supported : " + strings.Join(spaced, ","))
		}

		return render(session, &domain.FormView{
			LayerName:   session.LayerName,
			AsyncUpload: s.asyncStep(session),
			Time:        choices,
		}), nil
	}

	cfg, err := parseTimeForm(req, choices)
	if err != nil {
		return stepOutcome{}, err
	}
	if cfg == nil {
		// no time attribute chosen, the layer has no time dimension
		return advance(session), nil
	}

	if err := s.importer.ApplyTimeConfig(ctx, job, *cfg); err != nil {
		return stepOutcome{}, err
	}
	session.Options.Time = cfg
	return advance(session), nil
}

func timeChoices(item domain.ImportItem) *domain.TimeForm {
	return &domain.TimeForm{
		TimeNames: orEmpty(item.AttributesWithBinding(domain.BindingDate)),
		TextNames: orEmpty(item.AttributesWithBinding(domain.BindingString)),
		YearNames: orEmpty(item.AttributesWithBinding(domain.BindingInteger, domain.BindingLong, domain.BindingDouble)),
	}
}

func orEmpty(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

// parseTimeForm reads the submitted time configuration. It returns nil when
// no start attribute was chosen.
func parseTimeForm(req domain.StepRequest, choices *domain.TimeForm) (*domain.TimeConfig, error) {
	form := timeForm{
		TimeAttribute:          req.FormValue("time_attribute"),
		TextAttribute:          req.FormValue("text_attribute"),
		TextAttributeFormat:    req.FormValue("text_attribute_format"),
		YearAttribute:          req.FormValue("year_attribute"),
		EndTimeAttribute:       req.FormValue("end_time_attribute"),
		EndTextAttribute:       req.FormValue("end_text_attribute"),
		EndTextAttributeFormat: req.FormValue("end_text_attribute_format"),
		EndYearAttribute:       req.FormValue("end_year_attribute"),
		PresentationStrategy:   req.FormValue("presentation_strategy"),
		PrecisionStep:          req.FormValue("precision_step"),
	}

	invalid := domain.NewValidationError("Invalid Submission")

	if raw := req.FormValue("precision_value"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, invalid
		}
		form.PrecisionValue = value
	}
	if err := validate.Struct(form); err != nil {
		return nil, domain.NewValidationError(append(invalid.Messages, fieldMessages(err)...)...)
	}

	start, ok := pickTimeAttribute(choices, form.TimeAttribute, form.TextAttribute, form.TextAttributeFormat, form.YearAttribute)
	if !ok {
		return nil, invalid
	}
	end, ok := pickTimeAttribute(choices, form.EndTimeAttribute, form.EndTextAttribute, form.EndTextAttributeFormat, form.EndYearAttribute)
	if !ok {
		return nil, invalid
	}
	if start == nil {
		return nil, nil
	}

	cfg := &domain.TimeConfig{
		Start:          *start,
		End:            end,
		Presentation:   form.PresentationStrategy,
		PrecisionValue: form.PrecisionValue,
		PrecisionStep:  form.PrecisionStep,
	}
	if cfg.Presentation == "" {
		cfg.Presentation = defaultPresentation
	}
	return cfg, nil
}

// pickTimeAttribute takes the first non-empty of the date, text and year
// attributes. ok is false when the chosen attribute is not offered.
func pickTimeAttribute(choices *domain.TimeForm, dateAttr, textAttr, textFormat, yearAttr string) (*domain.TimeAttribute, bool) {
	switch {
	case dateAttr != "":
		return &domain.TimeAttribute{Name: dateAttr}, slices.Contains(choices.TimeNames, dateAttr)
	case textAttr != "":
		return &domain.TimeAttribute{
			Name:      textAttr,
			Transform: domain.TimeTransformDateFormat,
			Format:    textFormat,
		}, slices.Contains(choices.TextNames, textAttr)
	case yearAttr != "":
		return &domain.TimeAttribute{Name: yearAttr, Transform: domain.TimeTransformYear}, slices.Contains(choices.YearNames, yearAttr)
	default:
		return nil, true
	}
}
