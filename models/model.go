package models

import (
	"math"
	"math/rand/v2"

	"github.com/slotnet/slotnet/tensors"
)

// Model is a prompt-to-instruction-slots predictor. Forward returns raw
// per-class scores for each head, shaped (B, NumSlots, Classes); Predict
// arg-maxes them into discrete labels, shaped (B, NumSlots) per head.
type Model interface {
	Forward(ids [][]int32) map[string]*tensors.Tensor
	Predict(ids [][]int32) map[string][][]int32
	Params() *Params
	Config() Config
}

// New builds the model for cfg: the cross-attention architecture, or the
// pooled lightweight variant when cfg.Light is set.
func New(cfg Config, rng *rand.Rand) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Light {
		return newLightModel(cfg, rng), nil
	}
	return newFullModel(cfg, rng), nil
}

type headBank struct {
	weights []*tensors.Tensor
	biases  []*tensors.Tensor
}

func newHeadBank(cfg Config, params *Params, rng *rand.Rand) headBank {
	var bank headBank
	std := math.Sqrt(1 / float64(cfg.HiddenDim))
	for _, spec := range HeadTable() {
		bank.weights = append(bank.weights, params.add("heads."+spec.Name+".w",
			tensors.Randn(rng, std, spec.Classes, cfg.HiddenDim)))
		bank.biases = append(bank.biases, params.add("heads."+spec.Name+".b",
			tensors.Zeros(spec.Classes)))
	}
	return bank
}

// apply runs every head on the slot vectors (B, NumSlots, H).
func (b headBank) apply(slots *tensors.Tensor) map[string]*tensors.Tensor {
	out := make(map[string]*tensors.Tensor, len(b.weights))
	for i, spec := range HeadTable() {
		out[spec.Name] = tensors.Linear(slots, b.weights[i], b.biases[i])
	}
	return out
}

type fullModel struct {
	cfg     Config
	params  *Params
	encoder *Encoder
	decoder *SlotDecoder
	heads   headBank
}

func newFullModel(cfg Config, rng *rand.Rand) *fullModel {
	params := newParams()
	return &fullModel{
		cfg:     cfg,
		params:  params,
		encoder: newEncoder(cfg, params, rng),
		decoder: newSlotDecoder(cfg, params, rng),
		heads:   newHeadBank(cfg, params, rng),
	}
}

func (m *fullModel) Forward(ids [][]int32) map[string]*tensors.Tensor {
	features := m.encoder.Forward(ids)
	slots := m.decoder.Forward(features)
	return m.heads.apply(slots)
}

func (m *fullModel) Predict(ids [][]int32) map[string][][]int32 {
	return predict(m, ids)
}

func (m *fullModel) Params() *Params {
	return m.params
}

func (m *fullModel) Config() Config {
	return m.cfg
}

func predict(m Model, ids [][]int32) map[string][][]int32 {
	var scores map[string]*tensors.Tensor
	tensors.NoGrad(func() {
		scores = m.Forward(ids)
	})
	out := make(map[string][][]int32, len(scores))
	for name, t := range scores {
		out[name] = argmaxSlots(t)
	}
	return out
}

func argmaxSlots(t *tensors.Tensor) [][]int32 {
	batch, slots, classes := t.Dim(0), t.Dim(1), t.Dim(2)
	out := make([][]int32, batch)
	for b := range batch {
		row := make([]int32, slots)
		for s := range slots {
			off := (b*slots + s) * classes
			best := int32(0)
			bestVal := t.Data[off]
			for c := 1; c < classes; c++ {
				if t.Data[off+c] > bestVal {
					bestVal = t.Data[off+c]
					best = int32(c)
				}
			}
			row[s] = best
		}
		out[b] = row
	}
	return out
}
