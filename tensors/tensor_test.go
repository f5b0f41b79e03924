package tensors

import (
	"math"
	"math/rand/v2"
	"testing"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(42, 7))
}

// numericGrad perturbs every element of x and compares the finite
// difference of loss() against the recorded gradient.
func numericGrad(t *testing.T, x *Tensor, loss func() *Tensor, tol float64) {
	t.Helper()

	out := loss()
	if out.Len() != 1 {
		t.Fatalf("loss must be scalar, got %v", out.Shape())
	}
	out.Backward()
	grad := make([]float32, x.Len())
	copy(grad, x.Grad)

	const eps = 1e-3
	for i := range x.Data {
		orig := x.Data[i]
		x.Data[i] = orig + eps
		hi := loss().Data[0]
		x.Data[i] = orig - eps
		lo := loss().Data[0]
		x.Data[i] = orig

		want := (float64(hi) - float64(lo)) / (2 * eps)
		got := float64(grad[i])
		if math.Abs(want-got) > tol*(1+math.Abs(want)) {
			t.Fatalf("element %d: numeric %v, backward %v", i, want, got)
		}
	}
}

func TestAddMulGrad(t *testing.T) {
	rng := newRNG()
	a := Randn(rng, 1, 2, 3)
	b := Randn(rng, 1, 2, 3)
	numericGrad(t, a, func() *Tensor {
		a.ZeroGrad()
		b.ZeroGrad()
		return Sum(Mul(Add(a, b), b))
	}, 1e-2)
}

func TestMatMulGrad(t *testing.T) {
	rng := newRNG()
	a := Randn(rng, 1, 2, 3, 4)
	b := Randn(rng, 1, 4, 5)
	numericGrad(t, a, func() *Tensor {
		a.ZeroGrad()
		b.ZeroGrad()
		return Sum(MatMul(a, b))
	}, 1e-2)
	numericGrad(t, b, func() *Tensor {
		a.ZeroGrad()
		b.ZeroGrad()
		return Sum(MatMul(a, b))
	}, 1e-2)
}

func TestLinearGrad(t *testing.T) {
	rng := newRNG()
	x := Randn(rng, 1, 2, 3)
	w := Randn(rng, 1, 4, 3)
	b := Randn(rng, 1, 4)
	for _, p := range []*Tensor{x, w, b} {
		numericGrad(t, p, func() *Tensor {
			x.ZeroGrad()
			w.ZeroGrad()
			b.ZeroGrad()
			return Sum(GELU(Linear(x, w, b)))
		}, 1e-2)
	}
}

func TestConv1DGrad(t *testing.T) {
	rng := newRNG()
	x := Randn(rng, 1, 2, 5, 3)
	w := Randn(rng, 1, 4, 3, 3)
	b := Randn(rng, 1, 4)
	for _, p := range []*Tensor{x, w, b} {
		numericGrad(t, p, func() *Tensor {
			x.ZeroGrad()
			w.ZeroGrad()
			b.ZeroGrad()
			return Sum(ReLU(Conv1D(x, w, b)))
		}, 1e-2)
	}
}

func TestLayerNormGrad(t *testing.T) {
	rng := newRNG()
	x := Randn(rng, 1, 2, 6)
	gamma := Randn(rng, 1, 6)
	beta := Randn(rng, 1, 6)
	weights := Randn(rng, 1, 2, 6)
	for _, p := range []*Tensor{x, gamma, beta} {
		numericGrad(t, p, func() *Tensor {
			x.ZeroGrad()
			gamma.ZeroGrad()
			beta.ZeroGrad()
			return Sum(Mul(LayerNorm(x, gamma, beta, 1e-5), weights))
		}, 1e-2)
	}
}

func TestSoftmaxGrad(t *testing.T) {
	rng := newRNG()
	x := Randn(rng, 1, 2, 4)
	weights := Randn(rng, 1, 2, 4)
	numericGrad(t, x, func() *Tensor {
		x.ZeroGrad()
		return Sum(Mul(Softmax(x), weights))
	}, 1e-2)
}

func TestCrossEntropyGrad(t *testing.T) {
	rng := newRNG()
	x := Randn(rng, 1, 3, 5)
	targets := []int32{1, 4, 0}
	numericGrad(t, x, func() *Tensor {
		x.ZeroGrad()
		return Sum(CrossEntropyRows(x, targets))
	}, 1e-2)
}

func TestEmbeddingGrad(t *testing.T) {
	rng := newRNG()
	table := Randn(rng, 1, 7, 3)
	ids := [][]int32{{0, 2, 2}, {6, 1, 0}}
	numericGrad(t, table, func() *Tensor {
		table.ZeroGrad()
		return Sum(GELU(Embedding(table, ids)))
	}, 1e-2)
}

func TestHeadsRoundTrip(t *testing.T) {
	rng := newRNG()
	x := Randn(rng, 1, 2, 3, 8)
	split := Heads(x, 4)
	wantShape := []int{2, 4, 3, 2}
	for i, d := range split.Shape() {
		if d != wantShape[i] {
			t.Fatalf("got %v", split.Shape())
		}
	}
	merged := MergeHeads(split)
	for i, v := range merged.Data {
		if v != x.Data[i] {
			t.Fatal("round trip mismatch")
		}
	}
	numericGrad(t, x, func() *Tensor {
		x.ZeroGrad()
		return Sum(GELU(MergeHeads(Heads(x, 4))))
	}, 1e-2)
}

func TestNoGrad(t *testing.T) {
	rng := newRNG()
	a := Randn(rng, 1, 3)
	var out *Tensor
	NoGrad(func() {
		out = Scale(a, 2)
	})
	if out.backward != nil || out.children != nil {
		t.Fatal("graph recorded under NoGrad")
	}
}

func TestTransposeLast2(t *testing.T) {
	x := New([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	y := TransposeLast2(x)
	if y.Dim(0) != 3 || y.Dim(1) != 2 {
		t.Fatalf("got %v", y.Shape())
	}
	if y.Data[0] != 1 || y.Data[1] != 4 || y.Data[2] != 2 {
		t.Fatalf("got %v", y.Data)
	}
}
