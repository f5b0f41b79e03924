package tensors

import (
	"fmt"
	"slices"
)

// MatMul multiplies a shaped (..., M, K) by b. b is either (K, N), shared
// across all leading batches of a, or (..., K, N) with the same leading
// dims as a.
func MatMul(a, b *Tensor) *Tensor {
	if len(a.shape) < 2 || len(b.shape) < 2 {
		panic(fmt.Errorf("matmul needs at least 2 dims: %v x %v", a.shape, b.shape))
	}
	m := a.shape[len(a.shape)-2]
	k := a.shape[len(a.shape)-1]
	if b.shape[len(b.shape)-2] != k {
		panic(fmt.Errorf("matmul inner dim mismatch: %v x %v", a.shape, b.shape))
	}
	n := b.shape[len(b.shape)-1]

	batched := len(b.shape) > 2
	if batched && !slices.Equal(a.shape[:len(a.shape)-2], b.shape[:len(b.shape)-2]) {
		panic(fmt.Errorf("matmul batch dims mismatch: %v x %v", a.shape, b.shape))
	}

	batches := len(a.Data) / (m * k)
	outShape := append(slices.Clone(a.shape[:len(a.shape)-2]), m, n)
	out := Zeros(outShape...)

	for batch := range batches {
		ao := batch * m * k
		oo := batch * m * n
		bo := 0
		if batched {
			bo = batch * k * n
		}
		for i := range m {
			for kk := range k {
				av := a.Data[ao+i*k+kk]
				if av == 0 {
					continue
				}
				for j := range n {
					out.Data[oo+i*n+j] += av * b.Data[bo+kk*n+j]
				}
			}
		}
	}

	return node(out, func() {
		ga, gb := a.grad(), b.grad()
		for batch := range batches {
			ao := batch * m * k
			oo := batch * m * n
			bo := 0
			if batched {
				bo = batch * k * n
			}
			for i := range m {
				for j := range n {
					g := out.Grad[oo+i*n+j]
					if g == 0 {
						continue
					}
					for kk := range k {
						ga[ao+i*k+kk] += g * b.Data[bo+kk*n+j]
						gb[bo+kk*n+j] += g * a.Data[ao+i*k+kk]
					}
				}
			}
		}
	}, a, b)
}

// TransposeLast2 swaps the last two dims.
func TransposeLast2(a *Tensor) *Tensor {
	if len(a.shape) < 2 {
		panic(fmt.Errorf("need at least 2 dims, got %v", a.shape))
	}
	m := a.shape[len(a.shape)-2]
	n := a.shape[len(a.shape)-1]
	batches := len(a.Data) / (m * n)

	outShape := slices.Clone(a.shape)
	outShape[len(outShape)-2] = n
	outShape[len(outShape)-1] = m
	out := Zeros(outShape...)

	for batch := range batches {
		off := batch * m * n
		for i := range m {
			for j := range n {
				out.Data[off+j*m+i] = a.Data[off+i*n+j]
			}
		}
	}

	return node(out, func() {
		ga := a.grad()
		for batch := range batches {
			off := batch * m * n
			for i := range m {
				for j := range n {
					ga[off+i*n+j] += out.Grad[off+j*m+i]
				}
			}
		}
	}, a)
}

// Linear applies y = x·wᵀ + b where x is (..., in), w is (out, in) and
// b is (out).
func Linear(x, w, b *Tensor) *Tensor {
	in := w.shape[1]
	outDim := w.shape[0]
	if x.shape[len(x.shape)-1] != in {
		panic(fmt.Errorf("linear dim mismatch: %v with weight %v", x.shape, w.shape))
	}
	rows := len(x.Data) / in

	outShape := append(slices.Clone(x.shape[:len(x.shape)-1]), outDim)
	out := Zeros(outShape...)

	for r := range rows {
		xo := r * in
		oo := r * outDim
		for o := range outDim {
			s := b.Data[o]
			wo := o * in
			for i := range in {
				s += x.Data[xo+i] * w.Data[wo+i]
			}
			out.Data[oo+o] = s
		}
	}

	return node(out, func() {
		gx, gw, gb := x.grad(), w.grad(), b.grad()
		for r := range rows {
			xo := r * in
			oo := r * outDim
			for o := range outDim {
				g := out.Grad[oo+o]
				if g == 0 {
					continue
				}
				gb[o] += g
				wo := o * in
				for i := range in {
					gx[xo+i] += g * w.Data[wo+i]
					gw[wo+i] += g * x.Data[xo+i]
				}
			}
		}
	}, x, w, b)
}
