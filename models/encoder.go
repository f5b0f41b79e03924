package models

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/slotnet/slotnet/tensors"
)

// Encoder maps a padded token sequence to one feature vector per input
// position: embedding, a fixed sinusoidal positional signal, then a stack
// of width-increasing 1-D convolutions ending at the decoder hidden width.
type Encoder struct {
	cfg   Config
	embed *tensors.Tensor
	pos   *tensors.Tensor
	convs []convLayer
}

type convLayer struct {
	w *tensors.Tensor
	b *tensors.Tensor
}

func newEncoder(cfg Config, params *Params, rng *rand.Rand) *Encoder {
	enc := &Encoder{
		cfg: cfg,
	}

	enc.embed = params.add("encoder.embed",
		tensors.Randn(rng, 0.02, cfg.VocabSize, cfg.EmbedDim))
	// the padding row starts at zero but trains like any other row
	clear(enc.embed.Data[int(cfg.PadID)*cfg.EmbedDim : (int(cfg.PadID)+1)*cfg.EmbedDim])

	enc.pos = SinusoidalTable(cfg.SeqLen, cfg.EmbedDim)

	in := cfg.EmbedDim
	widths := append(append([]int{}, cfg.ConvChannels...), cfg.HiddenDim)
	for i, out := range widths {
		std := math.Sqrt(2 / float64(in*3))
		enc.convs = append(enc.convs, convLayer{
			w: params.add(fmt.Sprintf("encoder.conv%d.w", i),
				tensors.Randn(rng, std, out, in, 3)),
			b: params.add(fmt.Sprintf("encoder.conv%d.b", i),
				tensors.Zeros(out)),
		})
		in = out
	}

	return enc
}

// SinusoidalTable builds the deterministic (L, E) positional signal: sines
// on even dims, cosines on odd dims, geometrically spaced frequencies.
func SinusoidalTable(seqLen, dim int) *tensors.Tensor {
	table := tensors.Zeros(seqLen, dim)
	for pos := range seqLen {
		for i := 0; i < dim; i += 2 {
			freq := math.Exp(float64(i) * -math.Log(10000) / float64(dim))
			angle := float64(pos) * freq
			table.Data[pos*dim+i] = float32(math.Sin(angle))
			if i+1 < dim {
				table.Data[pos*dim+i+1] = float32(math.Cos(angle))
			}
		}
	}
	return table
}

// Forward returns features shaped (B, L, H).
func (e *Encoder) Forward(ids [][]int32) *tensors.Tensor {
	x := tensors.Embedding(e.embed, ids)
	x = tensors.AddSeq(x, e.pos)
	for _, conv := range e.convs {
		x = tensors.Conv1D(x, conv.w, conv.b)
		if e.cfg.Light {
			x = tensors.ReLU(x)
		} else {
			x = tensors.GELU(x)
		}
	}
	return x
}
