package slotconfigs

import (
	"github.com/slotnet/slotnet/cmds"
	"github.com/slotnet/slotnet/configs"
)

type Epochs int

var epochsFlag = cmds.Var[int]("-epochs")

func (Module) Epochs(
	loader configs.Loader,
) Epochs {
	if *epochsFlag != 0 {
		return Epochs(*epochsFlag)
	}
	if v := configs.First[int](loader, "epochs"); v != 0 {
		return Epochs(v)
	}
	return 50
}
