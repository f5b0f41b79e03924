package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/reusee/dscope"
	"github.com/slotnet/slotnet/checkpoints"
	"github.com/slotnet/slotnet/cmds"
	"github.com/slotnet/slotnet/exports"
	"github.com/slotnet/slotnet/logs"
	"github.com/slotnet/slotnet/models"
	"github.com/slotnet/slotnet/modes"
	"github.com/slotnet/slotnet/vars"
)

var (
	checkpointFlag = cmds.Var[string]("-checkpoint")
	outputFlag     = cmds.Var[string]("-output")
	lightFlag      = cmds.Switch("-light")
	maxSeqLenFlag  = cmds.Var[int]("-max-seq-len")
)

func main() {
	cmds.Execute(os.Args[1:])

	if *checkpointFlag == "" {
		fmt.Fprintln(os.Stderr, "Error: -checkpoint is required")
		os.Exit(1)
	}

	dscope.New(
		new(Module),
		modes.ForProduction(),
	).Call(func(
		logger logs.Logger,
		export exports.Export,
	) {
		ctx := context.Background()

		var cfg models.Config
		if *lightFlag {
			cfg = models.LightConfig()
		} else {
			cfg = models.DefaultConfig()
		}
		if *maxSeqLenFlag > 0 {
			cfg.SeqLen = *maxSeqLenFlag
		}

		model, err := models.New(cfg, rand.New(rand.NewPCG(0, 0)))
		ce(err)

		checkpoint, err := checkpoints.Load(*checkpointFlag)
		ce(err)
		ce(checkpoints.Restore(checkpoint, model))
		logger.Info("checkpoint loaded",
			"path", *checkpointFlag,
			"epoch", checkpoint.Epoch,
		)

		output := vars.FirstNonZero(*outputFlag, "model.graph")
		ce(export(ctx, model, output))
	})
}
