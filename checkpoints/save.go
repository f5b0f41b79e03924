package checkpoints

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the checkpoint atomically: encode to a temp file in the same
// directory, then rename over the target. A crash mid-write leaves a stray
// temp file, never a torn checkpoint.
func Save(path string, checkpoint *Checkpoint) (err error) {
	if len(checkpoint.Params) == 0 {
		return fmt.Errorf("refusing to save checkpoint with no parameters")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = gob.NewEncoder(tmp).Encode(checkpoint); err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
