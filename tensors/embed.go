package tensors

import "fmt"

// Embedding gathers rows of table (V, E) for ids shaped (B, L), producing
// (B, L, E). Ids index freely into the table; padding rows train like any
// other row.
func Embedding(table *Tensor, ids [][]int32) *Tensor {
	if len(table.shape) != 2 {
		panic(fmt.Errorf("embedding table wants 2 dims, got %v", table.shape))
	}
	vocab, width := table.shape[0], table.shape[1]
	batch := len(ids)
	length := len(ids[0])

	out := Zeros(batch, length, width)
	for bi, row := range ids {
		for li, id := range row {
			if int(id) >= vocab || id < 0 {
				panic(fmt.Errorf("token id %d out of vocab %d", id, vocab))
			}
			copy(
				out.Data[(bi*length+li)*width:(bi*length+li+1)*width],
				table.Data[int(id)*width:(int(id)+1)*width],
			)
		}
	}

	return node(out, func() {
		gt := table.grad()
		for bi, row := range ids {
			for li, id := range row {
				oo := (bi*length + li) * width
				to := int(id) * width
				for i := range width {
					gt[to+i] += out.Grad[oo+i]
				}
			}
		}
	}, table)
}

// Heads reshapes x (B, S, H) into per-head form (B, N, S, H/N).
func Heads(x *Tensor, numHeads int) *Tensor {
	if len(x.shape) != 3 {
		panic(fmt.Errorf("Heads wants 3 dims, got %v", x.shape))
	}
	b, s, h := x.shape[0], x.shape[1], x.shape[2]
	if h%numHeads != 0 {
		panic(fmt.Errorf("width %d not divisible by %d heads", h, numHeads))
	}
	hd := h / numHeads

	out := Zeros(b, numHeads, s, hd)
	for bi := range b {
		for si := range s {
			for n := range numHeads {
				copy(
					out.Data[((bi*numHeads+n)*s+si)*hd:((bi*numHeads+n)*s+si+1)*hd],
					x.Data[(bi*s+si)*h+n*hd:(bi*s+si)*h+(n+1)*hd],
				)
			}
		}
	}

	return node(out, func() {
		gx := x.grad()
		for bi := range b {
			for si := range s {
				for n := range numHeads {
					oo := ((bi*numHeads+n)*s + si) * hd
					xo := (bi*s+si)*h + n*hd
					for i := range hd {
						gx[xo+i] += out.Grad[oo+i]
					}
				}
			}
		}
	}, x)
}

// MergeHeads is the inverse of Heads: (B, N, S, H/N) back to (B, S, H).
func MergeHeads(x *Tensor) *Tensor {
	if len(x.shape) != 4 {
		panic(fmt.Errorf("MergeHeads wants 4 dims, got %v", x.shape))
	}
	b, n, s, hd := x.shape[0], x.shape[1], x.shape[2], x.shape[3]
	h := n * hd

	out := Zeros(b, s, h)
	for bi := range b {
		for ni := range n {
			for si := range s {
				copy(
					out.Data[(bi*s+si)*h+ni*hd:(bi*s+si)*h+(ni+1)*hd],
					x.Data[((bi*n+ni)*s+si)*hd:((bi*n+ni)*s+si+1)*hd],
				)
			}
		}
	}

	return node(out, func() {
		gx := x.grad()
		for bi := range b {
			for ni := range n {
				for si := range s {
					oo := (bi*s+si)*h + ni*hd
					xo := ((bi*n+ni)*s + si) * hd
					for i := range hd {
						gx[xo+i] += out.Grad[oo+i]
					}
				}
			}
		}
	}, x)
}
