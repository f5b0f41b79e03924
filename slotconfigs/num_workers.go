package slotconfigs

import (
	"runtime"

	"github.com/slotnet/slotnet/cmds"
	"github.com/slotnet/slotnet/configs"
)

type NumWorkers int

var numWorkersFlag = cmds.Var[int]("-num-workers")

func (Module) NumWorkers(
	loader configs.Loader,
) NumWorkers {
	if *numWorkersFlag != 0 {
		return NumWorkers(*numWorkersFlag)
	}
	if v := configs.First[int](loader, "num_workers"); v != 0 {
		return NumWorkers(v)
	}
	return NumWorkers(min(runtime.NumCPU(), 8))
}
