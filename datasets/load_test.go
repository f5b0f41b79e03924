package datasets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reusee/dscope"
	"github.com/slotnet/slotnet/modes"
)

var testData = `{"context": "add 5 and 7", "category": "arith", "instructions": [{"valid":1,"opcode":3,"mode":0,"rd":0,"rs1":0,"rs2":1,"has_imm":0,"imm_bin":0}]}
{"prompt": "legacy prompt", "instructions": [{"valid":1,"opcode":99,"mode":12,"rd":40,"rs1":-1,"rs2":31,"has_imm":2,"imm_bin":-24}]}
not json at all
{"context": "", "instructions": [{"valid":1}]}
{"context": "no instructions", "instructions": []}
`

func writeTestData(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.jsonl")
	if err := os.WriteFile(path, []byte(testData), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSamples(t *testing.T) {
	path := writeTestData(t)
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Call(func(
		load LoadSamples,
	) {
		samples, stats, err := load(path, LoadOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if len(samples) != 2 {
			t.Fatalf("got %d samples", len(samples))
		}
		if stats.Loaded != 2 || stats.Skipped != 3 {
			t.Fatalf("got %+v", stats)
		}
		if stats.Categories["arith"] != 1 || stats.Categories["unknown"] != 1 {
			t.Fatalf("got %v", stats.Categories)
		}

		// legacy prompt alias
		if samples[1].Text != "legacy prompt" {
			t.Fatalf("got %q", samples[1].Text)
		}

		// out-of-range labels are clamped, not rejected
		instr := samples[1].Instructions[0]
		if instr.Opcode != 32 || instr.Mode != 7 || instr.Rd != 31 || instr.Rs1 != 0 {
			t.Fatalf("got %+v", instr)
		}
		if instr.HasImm != 1 {
			t.Fatalf("got %+v", instr)
		}
		// negative immediates wrap modulo 256
		if instr.ImmBin != 232 {
			t.Fatalf("got %d", instr.ImmBin)
		}
	})
}

func TestLoadMaxSamples(t *testing.T) {
	path := writeTestData(t)
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Call(func(
		load LoadSamples,
	) {
		samples, _, err := load(path, LoadOptions{MaxSamples: 1})
		if err != nil {
			t.Fatal(err)
		}
		if len(samples) != 1 {
			t.Fatalf("got %d", len(samples))
		}
	})
}

func TestLoadMissingFile(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Call(func(
		load LoadSamples,
	) {
		_, _, err := load("no-such-file.jsonl", LoadOptions{})
		if err == nil {
			t.Fatal("should error")
		}
	})
}

func TestIterMatchesEagerLoad(t *testing.T) {
	path := writeTestData(t)
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Call(func(
		load LoadSamples,
	) {
		eager, _, err := load(path, LoadOptions{})
		if err != nil {
			t.Fatal(err)
		}

		var lazy []Sample
		for sample, err := range Iter(path, LoadOptions{}, nil) {
			if err != nil {
				t.Fatal(err)
			}
			lazy = append(lazy, sample)
		}

		if len(lazy) != len(eager) {
			t.Fatalf("lazy %d, eager %d", len(lazy), len(eager))
		}
		for i := range lazy {
			if lazy[i] != eager[i] {
				t.Fatalf("sample %d differs", i)
			}
		}

		// restartable: a second range yields the same sequence
		n := 0
		for sample, err := range Iter(path, LoadOptions{}, nil) {
			if err != nil {
				t.Fatal(err)
			}
			if sample != lazy[n] {
				t.Fatal("second pass differs")
			}
			n++
		}
		if n != len(lazy) {
			t.Fatal()
		}
	})
}

func TestPaddingInvariant(t *testing.T) {
	path := writeTestData(t)
	dscope.New(
		modes.ForTest(t),
		new(Module),
	).Call(func(
		load LoadSamples,
	) {
		samples, _, err := load(path, LoadOptions{})
		if err != nil {
			t.Fatal(err)
		}
		for _, sample := range samples {
			count := sample.ValidCount()
			for s := count; s < NumSlots; s++ {
				if sample.Instructions[s] != (Instruction{}) {
					t.Fatalf("padding slot %d not zero", s)
				}
			}
		}
	})
}
