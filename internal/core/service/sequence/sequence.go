// Package sequence maps an upload type to the ordered steps it goes through.
package sequence

import (
	"fmt"
	"geo-upload/internal/core/domain"
	"slices"
)

// run is not a form step but a transition handled by the orchestrator, and
// save is the implied first step of every sequence.
var baseSequences = map[domain.UploadType][]domain.Step{
	domain.UploadTypeShapefile: {domain.StepSRS, domain.StepTime, domain.StepRun, domain.StepFinal},
	domain.UploadTypeRaster:    {domain.StepTime, domain.StepRun, domain.StepFinal},
	domain.UploadTypeKML:       {domain.StepRun, domain.StepFinal},
	domain.UploadTypeCSV:       {domain.StepCSV, domain.StepTime, domain.StepRun, domain.StepFinal},
}

// Policy computes step sequences. It holds no state besides the time step flag.
type Policy struct {
	timeEnabled bool
}

// NewPolicy creates a Policy; the time step is only part of sequences when timeEnabled is set
func NewPolicy(timeEnabled bool) Policy {
	return Policy{timeEnabled: timeEnabled}
}

// TimeEnabled reports whether sequences include the time step
func (p Policy) TimeEnabled() bool {
	return p.timeEnabled
}

// SequenceFor returns the ordered steps following save for the upload type
func (p Policy) SequenceFor(uploadType domain.UploadType) ([]domain.Step, error) {
	base, ok := baseSequences[uploadType]
	if !ok {
		return nil, &domain.UnsupportedTypeError{UploadType: uploadType}
	}

	steps := make([]domain.Step, 0, len(base))
	for _, step := range base {
		if step == domain.StepTime && !p.timeEnabled {
			continue
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// NextStep returns the step offset positions after completed. Offsets running
// past either end are clamped, so the terminal step is returned for any
// offset beyond it.
func (p Policy) NextStep(uploadType domain.UploadType, completed domain.Step, offset int) (domain.Step, error) {
	steps, err := p.SequenceFor(uploadType)
	if err != nil {
		return "", err
	}

	index := -1
	if completed != "" && completed != domain.StepNone && completed != domain.StepSave {
		index = slices.Index(steps, completed)
		if index < 0 {
			return "", fmt.Errorf("%w: %s is not a %s step", domain.ErrStepNotInSequence, completed, uploadType)
		}
	}

	return steps[max(min(len(steps)-1, index+offset), 0)], nil
}

// PreviousStep returns the step preceding target, or save when target comes first
func (p Policy) PreviousStep(uploadType domain.UploadType, target domain.Step) (domain.Step, error) {
	steps, err := p.SequenceFor(uploadType)
	if err != nil {
		return "", err
	}

	index := slices.Index(steps, target)
	if index < 0 {
		return "", fmt.Errorf("%w: %s is not a %s step", domain.ErrStepNotInSequence, target, uploadType)
	}
	if index == 0 {
		return domain.StepSave, nil
	}
	return steps[index-1], nil
}

// Contains reports whether step belongs to the sequence of the upload type
func (p Policy) Contains(uploadType domain.UploadType, step domain.Step) bool {
	steps, err := p.SequenceFor(uploadType)
	if err != nil {
		return false
	}
	return slices.Contains(steps, step)
}
