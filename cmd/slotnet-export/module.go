package main

import (
	"github.com/reusee/dscope"
	"github.com/slotnet/slotnet/exports"
	"github.com/slotnet/slotnet/slotconfigs"
)

type Module struct {
	dscope.Module
	Exports exports.Module
	Configs slotconfigs.Module
}
