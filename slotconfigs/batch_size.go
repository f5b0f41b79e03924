package slotconfigs

import (
	"github.com/slotnet/slotnet/cmds"
	"github.com/slotnet/slotnet/configs"
)

type BatchSize int

var batchSizeFlag = cmds.Var[int]("-batch-size")

func (Module) BatchSize(
	loader configs.Loader,
) BatchSize {
	if *batchSizeFlag != 0 {
		return BatchSize(*batchSizeFlag)
	}
	if v := configs.First[int](loader, "batch_size"); v != 0 {
		return BatchSize(v)
	}
	return 32
}
