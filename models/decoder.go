package models

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/slotnet/slotnet/tensors"
)

// SlotDecoder turns a variable-length feature sequence into a fixed bank of
// per-slot vectors. A learned query per output slot cross-attends to the
// encoder features, so every slot sees the whole input regardless of its
// position.
type SlotDecoder struct {
	cfg     Config
	queries *tensors.Tensor
	layers  []attnLayer
	ffn     ffnBlock
}

type attnLayer struct {
	wq, bq *tensors.Tensor
	wk, bk *tensors.Tensor
	wv, bv *tensors.Tensor
	wo, bo *tensors.Tensor
	gamma  *tensors.Tensor
	beta   *tensors.Tensor
}

type ffnBlock struct {
	w1, b1 *tensors.Tensor
	w2, b2 *tensors.Tensor
	gamma  *tensors.Tensor
	beta   *tensors.Tensor
}

func newSlotDecoder(cfg Config, params *Params, rng *rand.Rand) *SlotDecoder {
	h := cfg.HiddenDim
	std := math.Sqrt(1 / float64(h))

	dec := &SlotDecoder{
		cfg: cfg,
		queries: params.add("decoder.queries",
			tensors.Randn(rng, 0.02, cfg.NumSlots, h)),
	}

	ones := func(name string) *tensors.Tensor {
		t := params.add(name, tensors.Zeros(h))
		for i := range t.Data {
			t.Data[i] = 1
		}
		return t
	}

	for i := range cfg.DecoderLayers {
		prefix := fmt.Sprintf("decoder.layer%d", i)
		dec.layers = append(dec.layers, attnLayer{
			wq:    params.add(prefix+".wq", tensors.Randn(rng, std, h, h)),
			bq:    params.add(prefix+".bq", tensors.Zeros(h)),
			wk:    params.add(prefix+".wk", tensors.Randn(rng, std, h, h)),
			bk:    params.add(prefix+".bk", tensors.Zeros(h)),
			wv:    params.add(prefix+".wv", tensors.Randn(rng, std, h, h)),
			bv:    params.add(prefix+".bv", tensors.Zeros(h)),
			wo:    params.add(prefix+".wo", tensors.Randn(rng, std, h, h)),
			bo:    params.add(prefix+".bo", tensors.Zeros(h)),
			gamma: ones(prefix + ".norm.gamma"),
			beta:  params.add(prefix+".norm.beta", tensors.Zeros(h)),
		})
	}

	dec.ffn = ffnBlock{
		w1:    params.add("decoder.ffn.w1", tensors.Randn(rng, std, 4*h, h)),
		b1:    params.add("decoder.ffn.b1", tensors.Zeros(4*h)),
		w2:    params.add("decoder.ffn.w2", tensors.Randn(rng, math.Sqrt(1/float64(4*h)), h, 4*h)),
		b2:    params.add("decoder.ffn.b2", tensors.Zeros(h)),
		gamma: ones("decoder.ffn.norm.gamma"),
		beta:  params.add("decoder.ffn.norm.beta", tensors.Zeros(h)),
	}

	return dec
}

// Forward cross-attends the slot queries to features (B, L, H) and returns
// slot vectors (B, NumSlots, H).
func (d *SlotDecoder) Forward(features *tensors.Tensor) *tensors.Tensor {
	batch := features.Dim(0)
	h := d.cfg.HiddenDim

	// broadcast the shared queries over the batch
	slots := tensors.Zeros(batch, d.cfg.NumSlots, h)
	slots = tensors.AddSeq(slots, d.queries)

	for _, layer := range d.layers {
		attended := d.crossAttend(layer, slots, features)
		slots = tensors.LayerNorm(
			tensors.Add(slots, attended),
			layer.gamma, layer.beta, 1e-5,
		)
	}

	ffnOut := tensors.Linear(
		tensors.GELU(tensors.Linear(slots, d.ffn.w1, d.ffn.b1)),
		d.ffn.w2, d.ffn.b2,
	)
	return tensors.LayerNorm(
		tensors.Add(slots, ffnOut),
		d.ffn.gamma, d.ffn.beta, 1e-5,
	)
}

func (d *SlotDecoder) crossAttend(layer attnLayer, slots, features *tensors.Tensor) *tensors.Tensor {
	numHeads := d.cfg.NumHeads
	headDim := d.cfg.HiddenDim / numHeads

	q := tensors.Heads(tensors.Linear(slots, layer.wq, layer.bq), numHeads)
	k := tensors.Heads(tensors.Linear(features, layer.wk, layer.bk), numHeads)
	v := tensors.Heads(tensors.Linear(features, layer.wv, layer.bv), numHeads)

	scores := tensors.Scale(
		tensors.MatMul(q, tensors.TransposeLast2(k)),
		1/float32(math.Sqrt(float64(headDim))),
	)
	attn := tensors.Softmax(scores)
	out := tensors.MergeHeads(tensors.MatMul(attn, v))
	return tensors.Linear(out, layer.wo, layer.bo)
}
