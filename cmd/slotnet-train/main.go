package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/reusee/dscope"
	"github.com/slotnet/slotnet/checkpoints"
	"github.com/slotnet/slotnet/cmds"
	"github.com/slotnet/slotnet/datasets"
	"github.com/slotnet/slotnet/logs"
	"github.com/slotnet/slotnet/models"
	"github.com/slotnet/slotnet/modes"
	"github.com/slotnet/slotnet/slotconfigs"
	"github.com/slotnet/slotnet/training"
	"github.com/slotnet/slotnet/vars"
)

var (
	dataFlag           = cmds.Var[string]("-data")
	outputFlag         = cmds.Var[string]("-output")
	lightFlag          = cmds.Switch("-light")
	deviceFlag         = cmds.VarDefault("-device", "cpu")
	maxSamplesFlag     = cmds.Var[int]("-max-samples")
	maxSeqLenFlag      = cmds.Var[int]("-max-seq-len")
	mixedPrecisionFlag = cmds.Switch("-mixed-precision")
	checkpointFlag     = cmds.Var[string]("-checkpoint")
	seedFlag           = cmds.VarDefault[uint64]("-seed", 42)
)

func main() {
	cmds.Execute(os.Args[1:])

	if *dataFlag == "" {
		fmt.Fprintln(os.Stderr, "Error: -data is required (a jsonl training file)")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dscope.New(
		new(Module),
		modes.ForProduction(),
	).Call(func(
		logger logs.Logger,
		load datasets.LoadSamples,
		train training.Train,
		learningRate slotconfigs.LearningRate,
		batchSize slotconfigs.BatchSize,
		numWorkers slotconfigs.NumWorkers,
		checkpointDir slotconfigs.CheckpointDir,
		epochs slotconfigs.Epochs,
		valSplit slotconfigs.ValSplit,
		patience slotconfigs.Patience,
	) {

		if *deviceFlag != "cpu" {
			logger.Warn("device not available, falling back to cpu",
				"requested", *deviceFlag,
			)
		}

		samples, _, err := load(*dataFlag, datasets.LoadOptions{
			MaxSamples: *maxSamplesFlag,
		})
		ce(err)
		if len(samples) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no usable samples in", *dataFlag)
			os.Exit(1)
		}

		var cfg models.Config
		if *lightFlag {
			cfg = models.LightConfig()
		} else {
			cfg = models.DefaultConfig()
		}
		if *maxSeqLenFlag > 0 {
			cfg.SeqLen = *maxSeqLenFlag
		}

		model, err := models.New(cfg, rand.New(rand.NewPCG(*seedFlag, 0)))
		ce(err)

		var resume *checkpoints.Checkpoint
		if *checkpointFlag != "" {
			resume, err = checkpoints.Load(*checkpointFlag)
			ce(err)
			ce(checkpoints.Restore(resume, model))
			logger.Info("checkpoint restored",
				"path", *checkpointFlag,
				"epoch", resume.Epoch,
			)
		}

		bestPath := vars.FirstNonZero(
			*outputFlag,
			filepath.Join(string(checkpointDir), "best.ckpt"),
		)
		finalPath := filepath.Join(string(checkpointDir), "final.ckpt")
		summaryPath := filepath.Join(string(checkpointDir), "run_summary.json")

		result, err := train(ctx, model, samples, training.Options{
			Epochs:         int(epochs),
			BatchSize:      int(batchSize),
			LearningRate:   float32(learningRate),
			ValSplit:       float64(valSplit),
			Patience:       int(patience),
			Workers:        int(numWorkers),
			MixedPrecision: *mixedPrecisionFlag,
			Seed:           *seedFlag,
			BestPath:       bestPath,
			FinalPath:      finalPath,
			SummaryPath:    summaryPath,
			Resume:         resume,
		})
		ce(err)

		logger.Info("training done",
			"run", result.RunID,
			"epochs", result.EpochsTrained,
			"best_opcode_acc", result.BestOpcodeAcc,
			"best_val_loss", result.BestValLoss,
			"early_stopped", result.EarlyStopped,
			"best", bestPath,
		)
	})
}
