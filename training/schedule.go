package training

import "math"

// CosineLR decays the base learning rate over the full epoch budget:
// full rate at epoch 0, near zero at the final epoch. Early stopping does
// not change the shape of the curve.
func CosineLR(base float32, epoch, totalEpochs int) float32 {
	if totalEpochs <= 1 {
		return base
	}
	progress := float64(epoch) / float64(totalEpochs)
	return base * float32(0.5*(1+math.Cos(math.Pi*progress)))
}
