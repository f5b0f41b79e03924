package checkpoints

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/slotnet/slotnet/models"
)

// Load reads a checkpoint file in either accepted shape: the enriched
// Checkpoint struct, or a bare parameter map as written by older tooling.
// Both are canonicalized to the enriched form.
func Load(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var checkpoint Checkpoint
	if err := gob.NewDecoder(f).Decode(&checkpoint); err == nil {
		return canonicalize(&checkpoint)
	}

	// bare parameter blob
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	var params map[string][]float32
	if err := gob.NewDecoder(f).Decode(&params); err != nil {
		return nil, fmt.Errorf("unrecognized checkpoint %s: %w", path, err)
	}
	return canonicalize(&Checkpoint{
		Params: params,
	})
}

func canonicalize(checkpoint *Checkpoint) (*Checkpoint, error) {
	if len(checkpoint.Params) == 0 {
		return nil, fmt.Errorf("checkpoint has no parameters")
	}
	return checkpoint, nil
}

// Restore copies checkpoint parameters into the model. Architecture
// mismatches (loading a full-size checkpoint into the lightweight model,
// or vice versa) fail before anything is applied.
func Restore(checkpoint *Checkpoint, model models.Model) error {
	if err := model.Params().LoadState(checkpoint.Params); err != nil {
		return fmt.Errorf("checkpoint does not fit model: %w", err)
	}
	return nil
}
