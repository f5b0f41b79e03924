package training

import (
	"math"

	"github.com/slotnet/slotnet/models"
)

// ClipGradNorm rescales all gradients so their global L2 norm does not
// exceed maxNorm, guarding against the heterogeneous per-head loss scales
// destabilizing a step. Returns the pre-clip norm.
func ClipGradNorm(params *models.Params, maxNorm float32) float32 {
	var sum float64
	for t := range params.All() {
		if t.Grad == nil {
			continue
		}
		for _, g := range t.Grad {
			sum += float64(g) * float64(g)
		}
	}
	norm := float32(math.Sqrt(sum))
	if norm <= maxNorm || norm == 0 {
		return norm
	}

	scale := maxNorm / norm
	for t := range params.All() {
		if t.Grad == nil {
			continue
		}
		for i := range t.Grad {
			t.Grad[i] *= scale
		}
	}
	return norm
}
