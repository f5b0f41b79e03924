package losses

import (
	"fmt"

	"github.com/slotnet/slotnet/models"
	"github.com/slotnet/slotnet/tensors"
)

const maskEpsilon = 1e-8

// Loss combines the eight per-head cross-entropies into one trainable
// scalar. The valid head trains on every slot; all other heads are masked
// to slots the ground truth marks valid.
type Loss struct {
	weights map[string]float32
}

func New() *Loss {
	weights := make(map[string]float32)
	for _, spec := range models.HeadTable() {
		weights[spec.Name] = spec.Weight
	}
	return &Loss{
		weights: weights,
	}
}

// WithWeight overrides one head weight. Weights must stay positive.
func (l *Loss) WithWeight(name string, weight float32) *Loss {
	if weight <= 0 {
		panic(fmt.Errorf("head weight must be positive, got %v", weight))
	}
	if _, ok := l.weights[name]; !ok {
		panic(fmt.Errorf("unknown head %s", name))
	}
	l.weights[name] = weight
	return l
}

// Forward returns the weighted total and the unweighted per-head averages
// (keyed by head name, plus "total"). scores hold (B, NumSlots, C) tensors;
// targets hold B*NumSlots labels per head in row-major order.
func (l *Loss) Forward(
	scores map[string]*tensors.Tensor,
	targets map[string][]int32,
) (*tensors.Tensor, map[string]float32) {

	validTargets := targets["valid"]
	numSlots := len(validTargets)

	mask := tensors.Zeros(numSlots)
	var maskSum float32
	for i, v := range validTargets {
		if v != 0 {
			mask.Data[i] = 1
			maskSum++
		}
	}

	total := tensors.Zeros(1)
	breakdown := make(map[string]float32)

	for _, spec := range models.HeadTable() {
		score, ok := scores[spec.Name]
		if !ok {
			panic(fmt.Errorf("missing scores for head %s", spec.Name))
		}
		target, ok := targets[spec.Name]
		if !ok {
			panic(fmt.Errorf("missing targets for head %s", spec.Name))
		}
		if len(target) != numSlots {
			panic(fmt.Errorf("head %s: %d targets, want %d", spec.Name, len(target), numSlots))
		}

		perSlot := tensors.CrossEntropyRows(score, target)

		var avg *tensors.Tensor
		if spec.Name == "valid" {
			// the valid head must also learn to predict padding
			avg = tensors.Scale(tensors.Sum(perSlot), 1/float32(numSlots))
		} else {
			flat := tensors.Reshape(perSlot, numSlots)
			avg = tensors.Scale(
				tensors.Sum(tensors.Mul(flat, mask)),
				1/(maskSum+maskEpsilon),
			)
		}

		breakdown[spec.Name] = avg.Data[0]
		total = tensors.Add(total, tensors.Scale(avg, l.weights[spec.Name]))
	}

	breakdown["total"] = total.Data[0]
	return total, breakdown
}

// Weight reports the configured weight for a head.
func (l *Loss) Weight(name string) float32 {
	return l.weights[name]
}
