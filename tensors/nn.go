package tensors

import (
	"fmt"
	"math"
)

func ReLU(a *Tensor) *Tensor {
	out := Zeros(a.shape...)
	for i, v := range a.Data {
		if v > 0 {
			out.Data[i] = v
		}
	}
	return node(out, func() {
		ga := a.grad()
		for i, g := range out.Grad {
			if a.Data[i] > 0 {
				ga[i] += g
			}
		}
	}, a)
}

const geluCoef = 0.044715

var geluScale = float32(math.Sqrt(2 / math.Pi))

func GELU(a *Tensor) *Tensor {
	out := Zeros(a.shape...)
	for i, v := range a.Data {
		u := geluScale * (v + geluCoef*v*v*v)
		out.Data[i] = 0.5 * v * (1 + tanh32(u))
	}
	return node(out, func() {
		ga := a.grad()
		for i, g := range out.Grad {
			v := a.Data[i]
			u := geluScale * (v + geluCoef*v*v*v)
			t := tanh32(u)
			du := geluScale * (1 + 3*geluCoef*v*v)
			ga[i] += g * (0.5*(1+t) + 0.5*v*(1-t*t)*du)
		}
	}, a)
}

func tanh32(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}

// Softmax normalizes the last dim to a probability distribution.
func Softmax(a *Tensor) *Tensor {
	cols := a.shape[len(a.shape)-1]
	rows := len(a.Data) / cols
	out := Zeros(a.shape...)

	for r := range rows {
		off := r * cols
		maxVal := a.Data[off]
		for i := 1; i < cols; i++ {
			if a.Data[off+i] > maxVal {
				maxVal = a.Data[off+i]
			}
		}
		var total float32
		for i := range cols {
			e := float32(math.Exp(float64(a.Data[off+i] - maxVal)))
			out.Data[off+i] = e
			total += e
		}
		for i := range cols {
			out.Data[off+i] /= total
		}
	}

	return node(out, func() {
		ga := a.grad()
		for r := range rows {
			off := r * cols
			var dot float32
			for i := range cols {
				dot += out.Grad[off+i] * out.Data[off+i]
			}
			for i := range cols {
				ga[off+i] += out.Data[off+i] * (out.Grad[off+i] - dot)
			}
		}
	}, a)
}

// LayerNorm normalizes the last dim to zero mean and unit variance, then
// applies the learned gamma scale and beta shift.
func LayerNorm(a, gamma, beta *Tensor, eps float32) *Tensor {
	cols := a.shape[len(a.shape)-1]
	if gamma.Len() != cols || beta.Len() != cols {
		panic(fmt.Errorf("layernorm param size %d/%d, want %d", gamma.Len(), beta.Len(), cols))
	}
	rows := len(a.Data) / cols
	out := Zeros(a.shape...)
	xhat := make([]float32, len(a.Data))
	invStd := make([]float32, rows)

	for r := range rows {
		off := r * cols
		var mean float32
		for i := range cols {
			mean += a.Data[off+i]
		}
		mean /= float32(cols)
		var variance float32
		for i := range cols {
			d := a.Data[off+i] - mean
			variance += d * d
		}
		variance /= float32(cols)
		inv := 1 / float32(math.Sqrt(float64(variance+eps)))
		invStd[r] = inv
		for i := range cols {
			h := (a.Data[off+i] - mean) * inv
			xhat[off+i] = h
			out.Data[off+i] = gamma.Data[i]*h + beta.Data[i]
		}
	}

	return node(out, func() {
		ga, gGamma, gBeta := a.grad(), gamma.grad(), beta.grad()
		for r := range rows {
			off := r * cols
			var meanDh, meanDhH float32
			for i := range cols {
				g := out.Grad[off+i]
				gGamma[i] += g * xhat[off+i]
				gBeta[i] += g
				dh := g * gamma.Data[i]
				meanDh += dh
				meanDhH += dh * xhat[off+i]
			}
			meanDh /= float32(cols)
			meanDhH /= float32(cols)
			for i := range cols {
				dh := out.Grad[off+i] * gamma.Data[i]
				ga[off+i] += invStd[r] * (dh - meanDh - xhat[off+i]*meanDhH)
			}
		}
	}, a, gamma, beta)
}

// CrossEntropyRows computes per-row cross-entropy between logits
// (rows, classes) and integer targets. The result keeps one loss value per
// row so callers can mask and reduce however they need.
func CrossEntropyRows(logits *Tensor, targets []int32) *Tensor {
	cols := logits.shape[len(logits.shape)-1]
	rows := len(logits.Data) / cols
	if len(targets) != rows {
		panic(fmt.Errorf("got %d targets for %d rows", len(targets), rows))
	}

	outShape := logits.shape[:len(logits.shape)-1]
	if len(outShape) == 0 {
		outShape = []int{1}
	}
	out := Zeros(outShape...)
	probs := make([]float32, len(logits.Data))

	for r := range rows {
		off := r * cols
		maxVal := logits.Data[off]
		for i := 1; i < cols; i++ {
			if logits.Data[off+i] > maxVal {
				maxVal = logits.Data[off+i]
			}
		}
		var total float32
		for i := range cols {
			e := float32(math.Exp(float64(logits.Data[off+i] - maxVal)))
			probs[off+i] = e
			total += e
		}
		for i := range cols {
			probs[off+i] /= total
		}
		p := probs[off+int(targets[r])]
		out.Data[r] = -float32(math.Log(float64(p) + 1e-12))
	}

	return node(out, func() {
		ga := logits.grad()
		for r := range rows {
			off := r * cols
			g := out.Grad[r]
			if g == 0 {
				continue
			}
			for i := range cols {
				d := probs[off+i]
				if int32(i) == targets[r] {
					d -= 1
				}
				ga[off+i] += g * d
			}
		}
	}, logits)
}
