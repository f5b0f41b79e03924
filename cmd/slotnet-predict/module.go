package main

import (
	"github.com/reusee/dscope"
	"github.com/slotnet/slotnet/datasets"
	"github.com/slotnet/slotnet/slotconfigs"
)

type Module struct {
	dscope.Module
	Datasets datasets.Module
	Configs  slotconfigs.Module
}
