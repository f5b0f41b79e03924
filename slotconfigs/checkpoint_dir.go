package slotconfigs

import (
	"github.com/slotnet/slotnet/cmds"
	"github.com/slotnet/slotnet/configs"
	"github.com/slotnet/slotnet/vars"
)

type CheckpointDir string

var checkpointDirFlag = cmds.Var[string]("-checkpoint-dir")

func (Module) CheckpointDir(
	loader configs.Loader,
) CheckpointDir {
	return CheckpointDir(vars.FirstNonZero(
		*checkpointDirFlag,
		configs.First[string](loader, "checkpoint_dir"),
		".",
	))
}
