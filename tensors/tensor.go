package tensors

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Tensor is a dense float32 array plus the bookkeeping needed for
// reverse-mode differentiation. Ops record their inputs and a closure that
// routes the output gradient back to them.
type Tensor struct {
	Name string
	Data []float32
	Grad []float32

	shape    []int
	children []*Tensor
	backward func()
}

func New(shape []int, data []float32) *Tensor {
	n := numElems(shape)
	if len(data) != n {
		panic(fmt.Errorf("shape %v needs %d elements, got %d", shape, n, len(data)))
	}
	return &Tensor{
		shape: slices.Clone(shape),
		Data:  data,
	}
}

func Zeros(shape ...int) *Tensor {
	return New(shape, make([]float32, numElems(shape)))
}

func Randn(rng *rand.Rand, std float64, shape ...int) *Tensor {
	data := make([]float32, numElems(shape))
	for i := range data {
		data[i] = float32(rng.NormFloat64() * std)
	}
	return New(shape, data)
}

func (t *Tensor) Shape() []int {
	return t.shape
}

func (t *Tensor) Dim(i int) int {
	return t.shape[i]
}

func (t *Tensor) Len() int {
	return len(t.Data)
}

func numElems(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func (t *Tensor) grad() []float32 {
	if t.Grad == nil {
		t.Grad = make([]float32, len(t.Data))
	}
	return t.Grad
}

func (t *Tensor) ZeroGrad() {
	if t.Grad == nil {
		return
	}
	clear(t.Grad)
}

// Backward propagates gradients from t to every tensor it was computed
// from. t is seeded with a unit gradient; call on the scalar loss.
func (t *Tensor) Backward() {
	var topo []*Tensor
	visited := map[*Tensor]bool{}
	var build func(v *Tensor)
	build = func(v *Tensor) {
		if visited[v] {
			return
		}
		visited[v] = true
		for _, child := range v.children {
			build(child)
		}
		topo = append(topo, v)
	}
	build(t)

	g := t.grad()
	for i := range g {
		g[i] = 1
	}
	for i := len(topo) - 1; i >= 0; i-- {
		v := topo[i]
		if v.backward != nil {
			v.backward()
		}
	}
}

var gradOff bool

// NoGrad runs fn with gradient recording disabled. Ops executed inside
// produce plain tensors with no backward graph.
func NoGrad(fn func()) {
	gradOff = true
	defer func() {
		gradOff = false
	}()
	fn()
}

// node wires an op result into the graph unless recording is off.
func node(out *Tensor, backward func(), children ...*Tensor) *Tensor {
	if gradOff {
		return out
	}
	out.children = children
	out.backward = backward
	return out
}
