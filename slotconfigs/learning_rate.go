package slotconfigs

import (
	"github.com/slotnet/slotnet/cmds"
	"github.com/slotnet/slotnet/configs"
)

type LearningRate float32

var learningRateFlag = cmds.Var[float64]("-lr")

func (Module) LearningRate(
	loader configs.Loader,
) LearningRate {
	// flag
	if *learningRateFlag != 0 {
		return LearningRate(*learningRateFlag)
	}
	// config
	if v := configs.First[float64](loader, "learning_rate"); v != 0 {
		return LearningRate(v)
	}
	return 1e-3
}
