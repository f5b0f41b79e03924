package training

import (
	"github.com/slotnet/slotnet/datasets"
	"github.com/slotnet/slotnet/tensors"
)

// accCounters accumulates the two model-selection metrics across
// validation batches: validity accuracy over every slot, and opcode
// accuracy restricted to slots the ground truth marks valid.
type accCounters struct {
	correctValid  int
	totalSlots    int
	correctOpcode int
	totalValid    int
}

func (c *accCounters) observe(scores map[string]*tensors.Tensor, batch *datasets.Batch) {
	validPred := argmaxFlat(scores["valid"])
	opcodePred := argmaxFlat(scores["opcode"])
	validTargets := batch.Targets["valid"]
	opcodeTargets := batch.Targets["opcode"]

	for i := range validTargets {
		if validPred[i] == validTargets[i] {
			c.correctValid++
		}
		c.totalSlots++
		if validTargets[i] == 1 {
			c.totalValid++
			if opcodePred[i] == opcodeTargets[i] {
				c.correctOpcode++
			}
		}
	}
}

func (c *accCounters) validAcc() float64 {
	if c.totalSlots == 0 {
		return 0
	}
	return float64(c.correctValid) / float64(c.totalSlots)
}

func (c *accCounters) opcodeAcc() float64 {
	if c.totalValid == 0 {
		return 0
	}
	return float64(c.correctOpcode) / float64(c.totalValid)
}

func argmaxFlat(t *tensors.Tensor) []int32 {
	shape := t.Shape()
	classes := shape[len(shape)-1]
	rows := t.Len() / classes
	out := make([]int32, rows)
	for r := range rows {
		off := r * classes
		best := int32(0)
		bestVal := t.Data[off]
		for c := 1; c < classes; c++ {
			if t.Data[off+c] > bestVal {
				bestVal = t.Data[off+c]
				best = int32(c)
			}
		}
		out[r] = best
	}
	return out
}
