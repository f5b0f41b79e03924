package slotconfigs

import (
	"errors"

	"github.com/slotnet/slotnet/cmds"
	"github.com/slotnet/slotnet/configs"
)

// Patience is the number of epochs without improvement before training
// stops early. Zero disables early stopping, so unset is marked by -1.
type Patience int

var patienceFlag = cmds.VarDefault("-patience", -1)

func (Module) Patience(
	loader configs.Loader,
) Patience {
	if *patienceFlag >= 0 {
		return Patience(*patienceFlag)
	}
	var v int
	err := loader.AssignFirst("patience", &v)
	if err == nil {
		return Patience(v)
	}
	if !errors.Is(err, configs.ErrValueNotFound) {
		panic(err)
	}
	return 10
}
