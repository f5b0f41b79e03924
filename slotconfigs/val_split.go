package slotconfigs

import (
	"github.com/slotnet/slotnet/cmds"
	"github.com/slotnet/slotnet/configs"
)

// ValSplit is the fraction of samples held out for validation.
type ValSplit float64

var valSplitFlag = cmds.Var[float64]("-val-split")

func (Module) ValSplit(
	loader configs.Loader,
) ValSplit {
	if *valSplitFlag != 0 {
		return ValSplit(*valSplitFlag)
	}
	if v := configs.First[float64](loader, "val_split"); v != 0 {
		return ValSplit(v)
	}
	return 0.1
}
