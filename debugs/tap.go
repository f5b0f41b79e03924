package debugs

import (
	"context"
	"maps"
	"slices"

	"github.com/slotnet/slotnet/cmds"
	"github.com/slotnet/slotnet/logs"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Tap exposes the given globals to an interactive starlark session, for
// poking at live training state without attaching a debugger.
type Tap func(ctx context.Context, what string, globals map[string]any)

var tapEnabled = cmds.Switch("-tap")

func (Module) Tap(
	logger logs.Logger,
) Tap {
	return func(ctx context.Context, what string, globals map[string]any) {
		logger.InfoContext(ctx, "tap: "+what,
			"globals", slices.Collect(maps.Keys(globals)),
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		if !*tapEnabled {
			return
		}

		mappings := make(starlark.StringDict)
		for name, value := range globals {
			mappings[name] = toStarlarkValue(value)
		}

		thread := &starlark.Thread{
			Name: "repl",
		}
		repl.REPLOptions(&syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
		}, thread, mappings)
	}
}
