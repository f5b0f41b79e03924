package models

import (
	"math/rand/v2"
	"testing"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SeqLen = 16
	cfg.EmbedDim = 8
	cfg.HiddenDim = 16
	cfg.NumHeads = 4
	cfg.ConvChannels = []int{12}
	return cfg
}

func testIDs(cfg Config, batch int) [][]int32 {
	ids := make([][]int32, batch)
	for b := range ids {
		row := make([]int32, cfg.SeqLen)
		for i := range row {
			if i < 5 {
				row[i] = int32('a' + b + i)
			} else {
				row[i] = cfg.PadID
			}
		}
		ids[b] = row
	}
	return ids
}

func TestForwardShapes(t *testing.T) {
	for _, light := range []bool{false, true} {
		cfg := testConfig()
		if light {
			cfg = LightConfig()
			cfg.SeqLen = 16
			cfg.EmbedDim = 8
			cfg.HiddenDim = 16
			cfg.ConvChannels = []int{12}
		}
		model, err := New(cfg, rand.New(rand.NewPCG(1, 2)))
		if err != nil {
			t.Fatal(err)
		}

		const batch = 3
		scores := model.Forward(testIDs(cfg, batch))
		if len(scores) != 8 {
			t.Fatalf("got %d heads", len(scores))
		}
		for _, spec := range HeadTable() {
			tensor, ok := scores[spec.Name]
			if !ok {
				t.Fatalf("missing head %s", spec.Name)
			}
			shape := tensor.Shape()
			if len(shape) != 3 ||
				shape[0] != batch ||
				shape[1] != cfg.NumSlots ||
				shape[2] != spec.Classes {
				t.Fatalf("head %s: got shape %v", spec.Name, shape)
			}
		}
	}
}

func TestPredictLabels(t *testing.T) {
	cfg := testConfig()
	model, err := New(cfg, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatal(err)
	}

	labels := model.Predict(testIDs(cfg, 2))
	for _, spec := range HeadTable() {
		rows := labels[spec.Name]
		if len(rows) != 2 {
			t.Fatalf("head %s: got %d rows", spec.Name, len(rows))
		}
		for _, row := range rows {
			if len(row) != cfg.NumSlots {
				t.Fatalf("head %s: got %d slots", spec.Name, len(row))
			}
			for _, label := range row {
				if label < 0 || int(label) >= spec.Classes {
					t.Fatalf("head %s: label %d out of range", spec.Name, label)
				}
			}
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.NumHeads = 5
	if _, err := New(cfg, rand.New(rand.NewPCG(1, 2))); err == nil {
		t.Fatal("should reject hidden dim not divisible by heads")
	}
}

func TestPaddingRowStartsZero(t *testing.T) {
	cfg := testConfig()
	model, err := New(cfg, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatal(err)
	}
	embed := model.Params().Get("encoder.embed")
	off := int(cfg.PadID) * cfg.EmbedDim
	for i := range cfg.EmbedDim {
		if embed.Data[off+i] != 0 {
			t.Fatal("padding row not zero initialized")
		}
	}
}

func TestParamsDeterministic(t *testing.T) {
	cfg := testConfig()
	a, err := New(cfg, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(cfg, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatal(err)
	}
	if a.Params().Count() != b.Params().Count() {
		t.Fatal()
	}
	for p := range a.Params().All() {
		q := b.Params().Get(p.Name)
		if q == nil {
			t.Fatalf("missing %s", p.Name)
		}
		for i := range p.Data {
			if p.Data[i] != q.Data[i] {
				t.Fatalf("parameter %s differs at %d", p.Name, i)
			}
		}
	}
}

func TestSinusoidalTable(t *testing.T) {
	table := SinusoidalTable(8, 4)
	// position 0 is sin(0)=0 on even dims, cos(0)=1 on odd dims
	if table.Data[0] != 0 || table.Data[1] != 1 {
		t.Fatalf("got %v", table.Data[:4])
	}
	for _, v := range table.Data {
		if v < -1 || v > 1 {
			t.Fatal("positional value out of [-1, 1]")
		}
	}
}
