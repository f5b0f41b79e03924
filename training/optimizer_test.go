package training

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/slotnet/slotnet/models"
)

func testModel(t *testing.T) models.Model {
	t.Helper()
	cfg := models.DefaultConfig()
	cfg.SeqLen = 16
	cfg.EmbedDim = 8
	cfg.HiddenDim = 16
	cfg.NumHeads = 4
	cfg.ConvChannels = []int{12}
	model, err := models.New(cfg, rand.New(rand.NewPCG(42, 0)))
	if err != nil {
		t.Fatal(err)
	}
	return model
}

func absSum(params *models.Params) float64 {
	var sum float64
	for t := range params.All() {
		for _, v := range t.Data {
			sum += math.Abs(float64(v))
		}
	}
	return sum
}

func TestAdamWShrinksQuadratic(t *testing.T) {
	model := testModel(t)
	params := model.Params()
	optimizer := NewAdamW(params, 0)

	// gradient of 0.5*x^2 is x itself, so steps must pull every
	// parameter toward zero
	before := absSum(params)
	for step := 0; step < 20; step++ {
		for tensor := range params.All() {
			tensor.Grad = append(tensor.Grad[:0], tensor.Data...)
		}
		optimizer.Step(0.01)
	}
	after := absSum(params)

	if after >= before {
		t.Fatalf("no progress: %v -> %v", before, after)
	}
}

func TestAdamWStateRoundTrip(t *testing.T) {
	model := testModel(t)
	optimizer := NewAdamW(model.Params(), 0.01)
	for tensor := range model.Params().All() {
		tensor.Grad = append(tensor.Grad[:0], tensor.Data...)
	}
	optimizer.Step(0.01)

	state := optimizer.State()
	if state.Step != 1 {
		t.Fatalf("got step %d", state.Step)
	}

	restored := NewAdamW(model.Params(), 0.01)
	restored.LoadState(state)
	if restored.step != 1 {
		t.Fatalf("got step %d", restored.step)
	}
	for name, m := range state.M {
		if len(restored.m[name]) != len(m) {
			t.Fatalf("moment %s not restored", name)
		}
	}
}

func TestClipGradNorm(t *testing.T) {
	model := testModel(t)
	params := model.Params()

	for tensor := range params.All() {
		tensor.Grad = make([]float32, len(tensor.Data))
		for i := range tensor.Grad {
			tensor.Grad[i] = 1
		}
	}

	norm := ClipGradNorm(params, 1.0)
	if norm <= 1 {
		t.Fatalf("expected large pre-clip norm, got %v", norm)
	}

	var sum float64
	for tensor := range params.All() {
		for _, g := range tensor.Grad {
			sum += float64(g) * float64(g)
		}
	}
	if got := math.Sqrt(sum); math.Abs(got-1) > 1e-3 {
		t.Fatalf("post-clip norm %v", got)
	}

	// norms already below the threshold pass through untouched
	for tensor := range params.All() {
		for i := range tensor.Grad {
			tensor.Grad[i] = 0
		}
	}
	first := params.Get("encoder.embed")
	first.Grad[0] = 0.5
	if norm := ClipGradNorm(params, 1.0); norm != 0.5 {
		t.Fatalf("got %v", norm)
	}
	if first.Grad[0] != 0.5 {
		t.Fatalf("grad modified: %v", first.Grad[0])
	}
}

func TestLossScaler(t *testing.T) {
	model := testModel(t)
	params := model.Params()

	var nilScaler *LossScaler
	if nilScaler.Scale() != 1 {
		t.Fatal()
	}

	scaler := NewLossScaler()
	initial := scaler.Scale()

	for tensor := range params.All() {
		tensor.Grad = make([]float32, len(tensor.Data))
		for i := range tensor.Grad {
			tensor.Grad[i] = initial
		}
	}
	if !scaler.Unscale(params) {
		t.Fatal("finite gradients rejected")
	}
	first := params.Get("encoder.embed")
	if first.Grad[0] != 1 {
		t.Fatalf("not unscaled: %v", first.Grad[0])
	}

	// an overflow halves the scale and skips the step
	first.Grad[0] = float32(math.NaN())
	if scaler.Unscale(params) {
		t.Fatal("NaN gradient accepted")
	}
	if scaler.Scale() != initial/2 {
		t.Fatalf("got scale %v", scaler.Scale())
	}
}
