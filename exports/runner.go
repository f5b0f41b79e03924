package exports

import (
	"fmt"

	"github.com/slotnet/slotnet/tensors"
)

// Runner evaluates a graph forward-only. Constants are materialized once;
// each Run walks the node list in order with a fresh value table.
type Runner struct {
	graph  *Graph
	consts []*tensors.Tensor
}

func NewRunner(graph *Graph) (*Runner, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		graph:  graph,
		consts: make([]*tensors.Tensor, len(graph.Nodes)),
	}
	for i, n := range graph.Nodes {
		if n.Kind == KindConst {
			r.consts[i] = tensors.New(n.Shape, n.Data)
		}
	}
	return r, nil
}

// Run tokenizes nothing and pads nothing: ids must already be fixed-length
// rows as the training pipeline produces them. Returns per-head argmax
// labels shaped (B, NumSlots).
func (r *Runner) Run(ids [][]int32) (map[string][][]int32, error) {
	scores, err := r.forward(ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string][][]int32, len(scores))
	for name, t := range scores {
		out[name] = argmax(t)
	}
	return out, nil
}

// Scores returns the raw per-head score tensors, shaped (B, NumSlots, C).
func (r *Runner) Scores(ids [][]int32) (map[string][][]float32, error) {
	tensorScores, err := r.forward(ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string][][]float32, len(tensorScores))
	for name, t := range tensorScores {
		batch := t.Dim(0)
		per := t.Len() / batch
		rows := make([][]float32, batch)
		for b := range batch {
			rows[b] = t.Data[b*per : (b+1)*per]
		}
		out[name] = rows
	}
	return out, nil
}

func (r *Runner) forward(ids [][]int32) (map[string]*tensors.Tensor, error) {
	cfg := r.graph.Config
	for i, row := range ids {
		if len(row) != cfg.SeqLen {
			return nil, fmt.Errorf("input row %d has %d tokens, want %d",
				i, len(row), cfg.SeqLen)
		}
	}

	values := make([]*tensors.Tensor, len(r.graph.Nodes))
	tensors.NoGrad(func() {
		for i, n := range r.graph.Nodes {
			in := func(j int) *tensors.Tensor { return values[n.Inputs[j]] }

			switch n.Kind {
			case KindInput:
				// resolved per kind below; ids are not a tensor
			case KindConst:
				values[i] = r.consts[i]
			case KindEmbed:
				values[i] = tensors.Embedding(in(0), ids)
			case KindAddSeq:
				values[i] = tensors.AddSeq(in(0), in(1))
			case KindConv1D:
				values[i] = tensors.Conv1D(in(0), in(1), in(2))
			case KindGELU:
				values[i] = tensors.GELU(in(0))
			case KindReLU:
				values[i] = tensors.ReLU(in(0))
			case KindBroadcast:
				queries := in(0)
				base := tensors.Zeros(len(ids), queries.Dim(0), queries.Dim(1))
				values[i] = tensors.AddSeq(base, queries)
			case KindLinear:
				values[i] = tensors.Linear(in(0), in(1), in(2))
			case KindHeads:
				values[i] = tensors.Heads(in(0), n.Ints[0])
			case KindMergeHeads:
				values[i] = tensors.MergeHeads(in(0))
			case KindTransposeLast2:
				values[i] = tensors.TransposeLast2(in(0))
			case KindMatMul:
				values[i] = tensors.MatMul(in(0), in(1))
			case KindScale:
				values[i] = tensors.Scale(in(0), n.Floats[0])
			case KindSoftmax:
				values[i] = tensors.Softmax(in(0))
			case KindAdd:
				values[i] = tensors.Add(in(0), in(1))
			case KindLayerNorm:
				values[i] = tensors.LayerNorm(in(0), in(1), in(2), n.Floats[0])
			case KindMeanSeq:
				values[i] = tensors.MeanSeq(in(0))
			case KindReshapeSlots:
				values[i] = tensors.Reshape(in(0),
					in(0).Dim(0), n.Ints[0], n.Ints[1])
			}
		}
	})

	out := make(map[string]*tensors.Tensor, len(r.graph.Outputs))
	for name, idx := range r.graph.Outputs {
		out[name] = values[idx]
	}
	return out, nil
}

// argmax matches the trainable model's prediction rule exactly: first
// index wins ties.
func argmax(t *tensors.Tensor) [][]int32 {
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
