package main

import (
	"github.com/reusee/dscope"
	"github.com/slotnet/slotnet/slotconfigs"
	"github.com/slotnet/slotnet/training"
)

type Module struct {
	dscope.Module
	Training training.Module
	Configs  slotconfigs.Module
}
