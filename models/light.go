package models

import (
	"math"
	"math/rand/v2"

	"github.com/slotnet/slotnet/tensors"
)

// lightModel trades the cross-attention decoder for a mean-pooled encoder
// summary projected into slot space. Far fewer parameters, same head
// contract.
type lightModel struct {
	cfg     Config
	params  *Params
	encoder *Encoder
	projW   *tensors.Tensor
	projB   *tensors.Tensor
	heads   headBank
}

func newLightModel(cfg Config, rng *rand.Rand) *lightModel {
	params := newParams()
	h := cfg.HiddenDim
	m := &lightModel{
		cfg:     cfg,
		params:  params,
		encoder: newEncoder(cfg, params, rng),
	}
	m.projW = params.add("proj.w",
		tensors.Randn(rng, math.Sqrt(1/float64(h)), cfg.NumSlots*h, h))
	m.projB = params.add("proj.b", tensors.Zeros(cfg.NumSlots*h))
	m.heads = newHeadBank(cfg, params, rng)
	return m
}

func (m *lightModel) Forward(ids [][]int32) map[string]*tensors.Tensor {
	features := m.encoder.Forward(ids) // (B, L, H)
	pooled := tensors.MeanSeq(features)
	slots := tensors.Reshape(
		tensors.Linear(pooled, m.projW, m.projB),
		len(ids), m.cfg.NumSlots, m.cfg.HiddenDim,
	)
	return m.heads.apply(slots)
}

func (m *lightModel) Predict(ids [][]int32) map[string][][]int32 {
	return predict(m, ids)
}

func (m *lightModel) Params() *Params {
	return m.params
}

func (m *lightModel) Config() Config {
	return m.cfg
}
