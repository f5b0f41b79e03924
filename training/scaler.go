package training

import (
	"math"

	"github.com/slotnet/slotnet/models"
)

// LossScaler implements loss-scaled training: the loss is multiplied
// before backward so small gradients survive reduced precision, then
// gradients are unscaled before clipping. A step that produces non-finite
// gradients is skipped and the scale halved; after a run of clean steps
// the scale grows back.
type LossScaler struct {
	scale          float32
	growthInterval int
	goodSteps      int
}

func NewLossScaler() *LossScaler {
	return &LossScaler{
		scale:          65536,
		growthInterval: 2000,
	}
}

func (s *LossScaler) Scale() float32 {
	if s == nil {
		return 1
	}
	return s.scale
}

// Unscale divides gradients by the current scale and reports whether they
// are all finite. On overflow the caller must skip the optimizer step.
func (s *LossScaler) Unscale(params *models.Params) (finite bool) {
	if s == nil {
		return checkFinite(params)
	}

	inv := 1 / s.scale
	finite = true
	for t := range params.All() {
		if t.Grad == nil {
			continue
		}
		for i := range t.Grad {
			t.Grad[i] *= inv
			if math.IsNaN(float64(t.Grad[i])) || math.IsInf(float64(t.Grad[i]), 0) {
				finite = false
			}
		}
	}

	if !finite {
		s.scale /= 2
		if s.scale < 1 {
			s.scale = 1
		}
		s.goodSteps = 0
	} else {
		s.goodSteps++
		if s.goodSteps >= s.growthInterval {
			s.scale *= 2
			s.goodSteps = 0
		}
	}
	return finite
}

func checkFinite(params *models.Params) bool {
	for t := range params.All() {
		if t.Grad == nil {
			continue
		}
		for _, g := range t.Grad {
			if math.IsNaN(float64(g)) || math.IsInf(float64(g), 0) {
				return false
			}
		}
	}
	return true
}
