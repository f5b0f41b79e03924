package training

import (
	"github.com/reusee/dscope"
	"github.com/slotnet/slotnet/datasets"
	"github.com/slotnet/slotnet/debugs"
	"github.com/slotnet/slotnet/logs"
)

type Module struct {
	dscope.Module
	Datasets datasets.Module
	Debugs   debugs.Module
	Logs     logs.Module
}
