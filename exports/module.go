package exports

import (
	"context"

	"github.com/reusee/dscope"
	"github.com/slotnet/slotnet/logs"
	"github.com/slotnet/slotnet/models"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}

// Export freezes a model and writes the graph artifact.
type Export func(ctx context.Context, model models.Model, path string) error

func (Module) Export(
	logger logs.Logger,
) Export {
	return func(ctx context.Context, model models.Model, path string) error {
		graph, err := Build(model)
		if err != nil {
			return err
		}
		if err := Save(path, graph); err != nil {
			return err
		}
		logger.InfoContext(ctx, "graph exported",
			"path", path,
			"nodes", len(graph.Nodes),
			"light", graph.Config.Light,
		)
		return nil
	}
}
