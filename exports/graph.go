package exports

import (
	"fmt"

	"github.com/slotnet/slotnet/models"
)

// Graph is a frozen, forward-only rendition of a trained model: a flat
// list of nodes in evaluation order, weights embedded as constants, and
// one named output per classification head. It carries no gradient state
// and can be evaluated without the training stack.
type Graph struct {
	Version int
	Config  models.Config
	Nodes   []Node
	Outputs map[string]int
}

const graphVersion = 1

type Node struct {
	Kind   Kind
	Inputs []int

	// Shape and Data are set on constants only
	Shape []int
	Data  []float32

	// kind-specific scalar arguments
	Ints   []int
	Floats []float32
}

type Kind uint8

const (
	KindInvalid Kind = iota
	KindInput
	KindConst
	KindEmbed
	KindAddSeq
	KindConv1D
	KindGELU
	KindReLU
	KindBroadcast
	KindLinear
	KindHeads
	KindMergeHeads
	KindTransposeLast2
	KindMatMul
	KindScale
	KindSoftmax
	KindAdd
	KindLayerNorm
	KindMeanSeq
	KindReshapeSlots
)

var kindNames = map[Kind]string{
	KindInput:          "input",
	KindConst:          "const",
	KindEmbed:          "embed",
	KindAddSeq:         "addseq",
	KindConv1D:         "conv1d",
	KindGELU:           "gelu",
	KindReLU:           "relu",
	KindBroadcast:      "broadcast",
	KindLinear:         "linear",
	KindHeads:          "heads",
	KindMergeHeads:     "mergeheads",
	KindTransposeLast2: "transpose",
	KindMatMul:         "matmul",
	KindScale:          "scale",
	KindSoftmax:        "softmax",
	KindAdd:            "add",
	KindLayerNorm:      "layernorm",
	KindMeanSeq:        "meanseq",
	KindReshapeSlots:   "reshapeslots",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// numInputs is the required input arity per kind.
var numInputs = map[Kind]int{
	KindInput:          0,
	KindConst:          0,
	KindEmbed:          2,
	KindAddSeq:         2,
	KindConv1D:         3,
	KindGELU:           1,
	KindReLU:           1,
	KindBroadcast:      1,
	KindLinear:         3,
	KindHeads:          1,
	KindMergeHeads:     1,
	KindTransposeLast2: 1,
	KindMatMul:         2,
	KindScale:          1,
	KindSoftmax:        1,
	KindAdd:            2,
	KindLayerNorm:      3,
	KindMeanSeq:        1,
	KindReshapeSlots:   1,
}
