package tensors

import "fmt"

// Conv1D applies a 1-D convolution over x shaped (B, L, Cin) with weight
// (Cout, Cin, K) and bias (Cout), stride 1 and same-length zero padding.
func Conv1D(x, w, b *Tensor) *Tensor {
	if len(x.shape) != 3 || len(w.shape) != 3 {
		panic(fmt.Errorf("conv1d wants (B,L,Cin) x (Cout,Cin,K), got %v x %v", x.shape, w.shape))
	}
	batch, length, cin := x.shape[0], x.shape[1], x.shape[2]
	cout, wcin, k := w.shape[0], w.shape[1], w.shape[2]
	if wcin != cin {
		panic(fmt.Errorf("conv1d channel mismatch: %v x %v", x.shape, w.shape))
	}
	pad := (k - 1) / 2

	out := Zeros(batch, length, cout)
	for bi := range batch {
		for l := range length {
			oo := (bi*length + l) * cout
			for co := range cout {
				s := b.Data[co]
				wo := co * cin * k
				for j := range k {
					idx := l + j - pad
					if idx < 0 || idx >= length {
						continue
					}
					xo := (bi*length + idx) * cin
					for ci := range cin {
						s += x.Data[xo+ci] * w.Data[wo+ci*k+j]
					}
				}
				out.Data[oo+co] = s
			}
		}
	}

	return node(out, func() {
		gx, gw, gb := x.grad(), w.grad(), b.grad()
		for bi := range batch {
			for l := range length {
				oo := (bi*length + l) * cout
				for co := range cout {
					g := out.Grad[oo+co]
					if g == 0 {
						continue
					}
					gb[co] += g
					wo := co * cin * k
					for j := range k {
						idx := l + j - pad
						if idx < 0 || idx >= length {
							continue
						}
						xo := (bi*length + idx) * cin
						for ci := range cin {
							gw[wo+ci*k+j] += g * x.Data[xo+ci]
							gx[xo+ci] += g * w.Data[wo+ci*k+j]
						}
					}
				}
			}
		}
	}, x, w, b)
}
