package slotconfigs

import (
	"os"
	"testing"

	"github.com/reusee/dscope"
	"github.com/slotnet/slotnet/modes"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Call(func(
		lr LearningRate,
		batchSize BatchSize,
		dir CheckpointDir,
		workers NumWorkers,
		epochs Epochs,
		valSplit ValSplit,
		patience Patience,
	) {
		if lr != 1e-3 {
			t.Fatalf("got %v", lr)
		}
		if batchSize != 32 {
			t.Fatalf("got %v", batchSize)
		}
		if dir != "." {
			t.Fatalf("got %v", dir)
		}
		if workers < 1 {
			t.Fatalf("got %v", workers)
		}
		if epochs != 50 {
			t.Fatalf("got %v", epochs)
		}
		if valSplit != 0.1 {
			t.Fatalf("got %v", valSplit)
		}
		if patience != 10 {
			t.Fatalf("got %v", patience)
		}
	})
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(dir+"/slotnet.cue", []byte(`
learning_rate: 0.01
batch_size: 64
checkpoint_dir: "/tmp/ckpt"
epochs: 7
val_split: 0.25
patience: 0
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Call(func(
		lr LearningRate,
		batchSize BatchSize,
		checkpointDir CheckpointDir,
		epochs Epochs,
		valSplit ValSplit,
		patience Patience,
	) {
		if lr != 0.01 {
			t.Fatalf("got %v", lr)
		}
		if batchSize != 64 {
			t.Fatalf("got %v", batchSize)
		}
		if checkpointDir != "/tmp/ckpt" {
			t.Fatalf("got %v", checkpointDir)
		}
		if epochs != 7 {
			t.Fatalf("got %v", epochs)
		}
		if valSplit != 0.25 {
			t.Fatalf("got %v", valSplit)
		}
		if patience != 0 {
			t.Fatalf("got %v", patience)
		}
	})
}

func TestFlagBeatsConfig(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(dir+"/slotnet.cue", []byte(`
batch_size: 64
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	*batchSizeFlag = 128
	defer func() {
		*batchSizeFlag = 0
	}()

	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Call(func(
		batchSize BatchSize,
	) {
		if batchSize != 128 {
			t.Fatalf("got %v", batchSize)
		}
	})
}

func TestSchemaRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(dir+"/slotnet.cue", []byte(`
no_such_setting: true
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	defer func() {
		if recover() == nil {
			t.Fatal("unknown setting accepted")
		}
	}()
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Call(func(
		batchSize BatchSize,
	) {
		_ = batchSize
	})
}
