package tensors

import (
	"fmt"
	"slices"
)

func sameShape(a, b *Tensor) {
	if !slices.Equal(a.shape, b.shape) {
		panic(fmt.Errorf("shape mismatch: %v vs %v", a.shape, b.shape))
	}
}

func Add(a, b *Tensor) *Tensor {
	sameShape(a, b)
	out := Zeros(a.shape...)
	for i := range out.Data {
		out.Data[i] = a.Data[i] + b.Data[i]
	}
	return node(out, func() {
		ga, gb := a.grad(), b.grad()
		for i, g := range out.Grad {
			ga[i] += g
			gb[i] += g
		}
	}, a, b)
}

func Mul(a, b *Tensor) *Tensor {
	sameShape(a, b)
	out := Zeros(a.shape...)
	for i := range out.Data {
		out.Data[i] = a.Data[i] * b.Data[i]
	}
	return node(out, func() {
		ga, gb := a.grad(), b.grad()
		for i, g := range out.Grad {
			ga[i] += g * b.Data[i]
			gb[i] += g * a.Data[i]
		}
	}, a, b)
}

func Scale(a *Tensor, c float32) *Tensor {
	out := Zeros(a.shape...)
	for i := range out.Data {
		out.Data[i] = a.Data[i] * c
	}
	return node(out, func() {
		ga := a.grad()
		for i, g := range out.Grad {
			ga[i] += g * c
		}
	}, a)
}

func Sum(a *Tensor) *Tensor {
	out := Zeros(1)
	var s float32
	for _, v := range a.Data {
		s += v
	}
	out.Data[0] = s
	return node(out, func() {
		ga := a.grad()
		g := out.Grad[0]
		for i := range ga {
			ga[i] += g
		}
	}, a)
}

// AddSeq adds a (rows, cols) tensor to every leading batch of
// x shaped (..., rows, cols). Used for positional signals and biases that
// broadcast over the batch dimension.
func AddSeq(x, b *Tensor) *Tensor {
	n := len(b.Data)
	if len(x.Data)%n != 0 {
		panic(fmt.Errorf("cannot broadcast %v over %v", b.shape, x.shape))
	}
	out := Zeros(x.shape...)
	for i := range out.Data {
		out.Data[i] = x.Data[i] + b.Data[i%n]
	}
	return node(out, func() {
		gx, gb := x.grad(), b.grad()
		for i, g := range out.Grad {
			gx[i] += g
			gb[i%n] += g
		}
	}, x, b)
}

// Reshape returns a tensor viewing the same elements under a new shape.
func Reshape(a *Tensor, shape ...int) *Tensor {
	if numElems(shape) != len(a.Data) {
		panic(fmt.Errorf("cannot reshape %v to %v", a.shape, shape))
	}
	out := New(shape, slices.Clone(a.Data))
	return node(out, func() {
		ga := a.grad()
		for i, g := range out.Grad {
			ga[i] += g
		}
	}, a)
}

// MeanSeq averages x shaped (B, L, C) over the L dimension to (B, C).
func MeanSeq(x *Tensor) *Tensor {
	if len(x.shape) != 3 {
		panic(fmt.Errorf("MeanSeq wants 3 dims, got %v", x.shape))
	}
	b, l, c := x.shape[0], x.shape[1], x.shape[2]
	out := Zeros(b, c)
	for bi := range b {
		for li := range l {
			for ci := range c {
				out.Data[bi*c+ci] += x.Data[(bi*l+li)*c+ci]
			}
		}
	}
	inv := 1 / float32(l)
	for i := range out.Data {
		out.Data[i] *= inv
	}
	return node(out, func() {
		gx := x.grad()
		for bi := range b {
			for li := range l {
				for ci := range c {
					gx[(bi*l+li)*c+ci] += out.Grad[bi*c+ci] * inv
				}
			}
		}
	}, x)
}
