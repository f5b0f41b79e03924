package training

import (
	"encoding/json"
	"os"

	"github.com/slotnet/slotnet/models"
)

// Summary is the sidecar record written next to the trained model, small
// enough to read without loading any checkpoint.
type Summary struct {
	RunID         string  `json:"run_id"`
	Light         bool    `json:"light"`
	SeqLen        int     `json:"seq_len"`
	EpochsTrained int     `json:"epochs_trained"`
	BestOpcodeAcc float64 `json:"best_opcode_acc"`
	BestValLoss   float32 `json:"best_val_loss"`
	EarlyStopped  bool    `json:"early_stopped"`
}

func writeSummary(path string, cfg models.Config, result *Result) error {
	data, err := json.MarshalIndent(Summary{
		RunID:         result.RunID,
		Light:         cfg.Light,
		SeqLen:        cfg.SeqLen,
		EpochsTrained: result.EpochsTrained,
		BestOpcodeAcc: result.BestOpcodeAcc,
		BestValLoss:   result.BestValLoss,
		EarlyStopped:  result.EarlyStopped,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
