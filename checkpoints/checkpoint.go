package checkpoints

// Checkpoint is the canonical on-disk form of a training run's state. Only
// Params is mandatory; everything else is best-effort metadata that resume
// uses when present.
type Checkpoint struct {
	Params        map[string][]float32
	Epoch         int
	Optimizer     *OptimizerState
	BestValLoss   float32
	BestOpcodeAcc float32
}

// OptimizerState carries the AdamW moment estimates so a resumed run keeps
// its adaptive step sizes.
type OptimizerState struct {
	Step int
	M    map[string][]float32
	V    map[string][]float32
}
