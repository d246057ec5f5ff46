package wizard

import "fmt"

// Step identifies a wizard screen. Steps form a fixed linear flow, forward
// movement is guarded, backward movement is always allowed.
type Step string

const (
	StepUpload        Step = "upload"
	StepIdentify      Step = "identify"
	StepRelationships Step = "relationships"
	StepAggregations  Step = "aggregations"
	StepReview        Step = "review"
)

var stepOrder = []Step{StepUpload, StepIdentify, StepRelationships, StepAggregations, StepReview}

func ParseStep(raw string) (Step, error) {
	step := Step(raw)
	if !step.Valid() {
		return "", fmt.Errorf("unknown wizard step %q", raw)
	}
	return step, nil
}

func (s Step) Valid() bool {
	return s.Index() >= 0
}

func (s Step) Index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

func (s Step) next() (Step, bool) {
	i := s.Index()
	if i < 0 || i >= len(stepOrder)-1 {
		return s, false
	}
	return stepOrder[i+1], true
}

func (s Step) previous() (Step, bool) {
	i := s.Index()
	if i <= 0 {
		return s, false
	}
	return stepOrder[i-1], true
}
