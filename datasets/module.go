package datasets

import (
	"github.com/reusee/dscope"
	"github.com/slotnet/slotnet/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
