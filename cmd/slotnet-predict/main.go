package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/reusee/dscope"
	"github.com/slotnet/slotnet/checkpoints"
	"github.com/slotnet/slotnet/cmds"
	"github.com/slotnet/slotnet/datasets"
	"github.com/slotnet/slotnet/exports"
	"github.com/slotnet/slotnet/logs"
	"github.com/slotnet/slotnet/models"
	"github.com/slotnet/slotnet/modes"
	"golang.org/x/term"
)

var (
	checkpointFlag = cmds.Var[string]("-checkpoint")
	graphFlag      = cmds.Var[string]("-graph")
	promptFlag     = cmds.Var[string]("-prompt")
	lightFlag      = cmds.Switch("-light")
	maxSeqLenFlag  = cmds.Var[int]("-max-seq-len")
	jsonFlag       = cmds.Switch("-json")
)

func main() {
	cmds.Execute(os.Args[1:])

	if *checkpointFlag == "" && *graphFlag == "" {
		fmt.Fprintln(os.Stderr, "Error: -checkpoint or -graph is required")
		os.Exit(1)
	}

	dscope.New(
		new(Module),
		modes.ForProduction(),
	).Call(func(
		logger logs.Logger,
	) {

		prompt := *promptFlag
		if stdin := getStdinContent(); len(stdin) > 0 {
			prompt = strings.TrimSpace(prompt + "\n" + string(stdin))
		}
		if prompt == "" {
			fmt.Fprintln(os.Stderr, "Error: no prompt (use -prompt or pipe stdin)")
			os.Exit(1)
		}

		var labels map[string][][]int32
		if *graphFlag != "" {
			graph, err := exports.Load(*graphFlag)
			ce(err)
			runner, err := exports.NewRunner(graph)
			ce(err)
			ids := [][]int32{datasets.Tokenize(prompt, graph.Config.SeqLen)}
			labels, err = runner.Run(ids)
			ce(err)
			logger.Info("graph loaded", "path", *graphFlag)
		} else {
			model := loadModel(logger)
			ids := [][]int32{datasets.Tokenize(prompt, model.Config().SeqLen)}
			labels = model.Predict(ids)
		}

		instructions := datasets.Decode(labels)[0]

		if *jsonFlag {
			ce(json.NewEncoder(os.Stdout).Encode(instructions))
			return
		}
		for i, instruction := range instructions {
			if instruction.Valid == 0 {
				continue
			}
			fmt.Printf("slot %2d: opcode=%d mode=%d rd=%d rs1=%d rs2=%d",
				i, instruction.Opcode, instruction.Mode,
				instruction.Rd, instruction.Rs1, instruction.Rs2)
			if instruction.HasImm != 0 {
				fmt.Printf(" imm=%d", datasets.DecodeImm(instruction.ImmBin))
			}
			fmt.Println()
		}
	})
}

func loadModel(logger logs.Logger) models.Model {
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
	return model
}

func getStdinContent() (ret []byte) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	ret, err := io.ReadAll(os.Stdin)
	ce(err)
	return
}
