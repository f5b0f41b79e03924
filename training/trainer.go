package training

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/slotnet/slotnet/checkpoints"
	"github.com/slotnet/slotnet/datasets"
	"github.com/slotnet/slotnet/debugs"
	"github.com/slotnet/slotnet/logs"
	"github.com/slotnet/slotnet/losses"
	"github.com/slotnet/slotnet/models"
	"github.com/slotnet/slotnet/tensors"
	"github.com/slotnet/slotnet/vars"
)

type Options struct {
	Epochs         int
	BatchSize      int
	LearningRate   float32
	ValSplit       float64
	Patience       int
	Workers        int
	MixedPrecision bool
	Seed           uint64
	BestPath       string
	FinalPath      string
	SummaryPath    string
	Resume         *checkpoints.Checkpoint
}

type Result struct {
	RunID         string
	EpochsTrained int
	BestOpcodeAcc float64
	BestValLoss   float32
	EarlyStopped  bool
}

// Train drives the whole optimization: shuffled train epochs, a gradient-
// free validation pass after each, best-checkpoint retention on validation
// opcode accuracy, and patience-based early stopping. The learning rate
// follows a cosine decay over the full epoch budget either way.
type Train func(
	ctx context.Context,
	model models.Model,
	samples []datasets.Sample,
	options Options,
) (*Result, error)

func (Module) Train(
	logger logs.Logger,
	newSpan logs.NewSpan,
	tap debugs.Tap,
) Train {
	return func(
		ctx context.Context,
		model models.Model,
		samples []datasets.Sample,
		options Options,
	) (*Result, error) {

		ctx, _ = newSpan(ctx, "")

		result := &Result{
			RunID: uuid.NewString(),
		}

		trainSet, valSet := datasets.Split(samples, options.ValSplit, options.Seed)
		if len(trainSet) == 0 {
			return nil, fmt.Errorf("no training samples after split")
		}
		logger.InfoContext(ctx, "training starts",
			"run", result.RunID,
			"train", len(trainSet),
			"val", len(valSet),
			"params", model.Params().Count(),
		)

		criterion := losses.New()
		optimizer := NewAdamW(model.Params(), 0.01)
		var scaler *LossScaler
		if options.MixedPrecision {
			scaler = NewLossScaler()
		}

		resume := vars.DerefOrZero(options.Resume)
		startEpoch := resume.Epoch
		optimizer.LoadState(resume.Optimizer)
		result.BestOpcodeAcc = float64(resume.BestOpcodeAcc)
		result.BestValLoss = resume.BestValLoss
		if options.Resume != nil {
			logger.InfoContext(ctx, "resuming", "epoch", startEpoch)
		}

		seqLen := model.Config().SeqLen
		patienceLeft := options.Patience
		bar := newProgress()

		for epoch := startEpoch; epoch < options.Epochs; epoch++ {
			lr := CosineLR(options.LearningRate, epoch, options.Epochs)

			trainLosses, err := trainEpoch(
				ctx, model, trainSet, criterion, optimizer, scaler, lr, options, epoch, bar,
			)
			if err != nil {
				return nil, logs.WrapSpan(ctx, err)
			}

			valLosses, counters, err := evalEpoch(ctx, model, valSet, criterion, options, seqLen)
			if err != nil {
				return nil, logs.WrapSpan(ctx, err)
			}

			result.EpochsTrained = epoch + 1
			logger.InfoContext(ctx, "epoch",
				"n", epoch+1,
				"lr", lr,
				"train_total", trainLosses["total"],
				"train_opcode", trainLosses["opcode"],
				"train_valid", trainLosses["valid"],
				"val_total", valLosses["total"],
				"val_valid_acc", counters.validAcc(),
				"val_opcode_acc", counters.opcodeAcc(),
			)
			tap(ctx, "epoch", map[string]any{
				"epoch":          epoch + 1,
				"lr":             lr,
				"train_losses":   trainLosses,
				"val_losses":     valLosses,
				"val_valid_acc":  counters.validAcc(),
				"val_opcode_acc": counters.opcodeAcc(),
			})

			// ties keep the earlier best
			if counters.opcodeAcc() > result.BestOpcodeAcc {
				result.BestOpcodeAcc = counters.opcodeAcc()
				result.BestValLoss = valLosses["total"]
				patienceLeft = options.Patience

				if options.BestPath != "" {
					if err := checkpoints.Save(options.BestPath, &checkpoints.Checkpoint{
						Params:        model.Params().State(),
						Epoch:         epoch + 1,
						Optimizer:     optimizer.State(),
						BestValLoss:   result.BestValLoss,
						BestOpcodeAcc: float32(result.BestOpcodeAcc),
					}); err != nil {
						return nil, logs.WrapSpan(ctx, err)
					}
					logger.InfoContext(ctx, "best checkpoint saved",
						"path", options.BestPath,
						"opcode_acc", result.BestOpcodeAcc,
					)
				}

			} else if options.Patience > 0 {
				patienceLeft--
				if patienceLeft <= 0 {
					result.EarlyStopped = true
					logger.InfoContext(ctx, "early stop", "epoch", epoch+1)
					break
				}
			}
		}

		if options.FinalPath != "" {
			if err := checkpoints.Save(options.FinalPath, &checkpoints.Checkpoint{
				Params:        model.Params().State(),
				Epoch:         result.EpochsTrained,
				Optimizer:     optimizer.State(),
				BestValLoss:   result.BestValLoss,
				BestOpcodeAcc: float32(result.BestOpcodeAcc),
			}); err != nil {
				return nil, logs.WrapSpan(ctx, err)
			}
		}
		if options.SummaryPath != "" {
			if err := writeSummary(options.SummaryPath, model.Config(), result); err != nil {
				return nil, logs.WrapSpan(ctx, err)
			}
		}

		return result, nil
	}
}

func trainEpoch(
	ctx context.Context,
	model models.Model,
	trainSet []datasets.Sample,
	criterion *losses.Loss,
	optimizer *AdamW,
	scaler *LossScaler,
	lr float32,
	options Options,
	epoch int,
	bar *progress,
) (map[string]float32, error) {

	epochCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	rng := rand.New(rand.NewPCG(options.Seed, uint64(epoch)+1))
	order := rng.Perm(len(trainSet))

	totals := make(map[string]float32)
	numBatches := 0
	totalBatches := (len(trainSet) + options.BatchSize - 1) / options.BatchSize
	defer bar.clear()

	for batch := range datasets.Batches(
		epochCtx, trainSet, order, options.BatchSize, model.Config().SeqLen, options.Workers,
	) {
		// the only supported cancellation point is between optimizer steps
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		model.Params().ZeroGrad()
		scores := model.Forward(batch.Tokens)
		total, breakdown := criterion.Forward(scores, batch.Targets)

		if v := float64(total.Data[0]); math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite loss %v at epoch %d", v, epoch+1)
		}

		scaled := total
		if scaler != nil {
			scaled = tensors.Scale(total, scaler.Scale())
		}
		scaled.Backward()

		if scaler.Unscale(model.Params()) {
			ClipGradNorm(model.Params(), 1.0)
			optimizer.Step(lr)
		}

		for name, v := range breakdown {
			totals[name] += v
		}
		numBatches++
		bar.step(epoch+1, numBatches, totalBatches)
	}

	if numBatches == 0 {
		return nil, fmt.Errorf("no batches in epoch %d", epoch+1)
	}
	for name := range totals {
		totals[name] /= float32(numBatches)
	}
	return totals, nil
}

func evalEpoch(
	ctx context.Context,
	model models.Model,
	valSet []datasets.Sample,
	criterion *losses.Loss,
	options Options,
	seqLen int,
) (map[string]float32, *accCounters, error) {

	counters := &accCounters{}
	totals := make(map[string]float32)
	numBatches := 0

	if len(valSet) == 0 {
		return totals, counters, nil
	}

	epochCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	order := make([]int, len(valSet))
	for i := range order {
		order[i] = i
	}

	for batch := range datasets.Batches(
		epochCtx, valSet, order, options.BatchSize, seqLen, options.Workers,
	) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		var scores map[string]*tensors.Tensor
		var breakdown map[string]float32
		tensors.NoGrad(func() {
			scores = model.Forward(batch.Tokens)
			_, breakdown = criterion.Forward(scores, batch.Targets)
		})

		counters.observe(scores, &batch)
		for name, v := range breakdown {
			totals[name] += v
		}
		numBatches++
	}

	for name := range totals {
		totals[name] /= float32(numBatches)
	}
	return totals, counters, nil
}
