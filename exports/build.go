package exports

import (
	"fmt"
	"math"

	"github.com/slotnet/slotnet/models"
)

// Build freezes a trained model into a Graph. Weights are copied, so the
// artifact is independent of the live model. The returned graph is already
// validated.
func Build(model models.Model) (*Graph, error) {
	cfg := model.Config()
	b := &builder{
		graph: &Graph{
			Version: graphVersion,
			Config:  cfg,
			Outputs: make(map[string]int),
		},
		model: model,
	}

	input := b.node(Node{Kind: KindInput})

	features, err := b.encoder(cfg, input)
	if err != nil {
		return nil, err
	}

	var slots int
	if cfg.Light {
		slots, err = b.pooledSlots(cfg, features)
	} else {
		slots, err = b.decoder(cfg, features)
	}
	if err != nil {
		return nil, err
	}

	for _, spec := range models.HeadTable() {
		w, err := b.param("heads." + spec.Name + ".w")
		if err != nil {
			return nil, err
		}
		bias, err := b.param("heads." + spec.Name + ".b")
		if err != nil {
			return nil, err
		}
		b.graph.Outputs[spec.Name] = b.node(Node{
			Kind:   KindLinear,
			Inputs: []int{slots, w, bias},
		})
	}

	if err := b.graph.Validate(); err != nil {
		return nil, fmt.Errorf("built graph does not validate: %w", err)
	}
	return b.graph, nil
}

type builder struct {
	graph *Graph
	model models.Model
}

func (b *builder) node(n Node) int {
	b.graph.Nodes = append(b.graph.Nodes, n)
	return len(b.graph.Nodes) - 1
}

func (b *builder) param(name string) (int, error) {
	t := b.model.Params().Get(name)
	if t == nil {
		return 0, fmt.Errorf("model has no parameter %s", name)
	}
	data := make([]float32, len(t.Data))
	copy(data, t.Data)
	return b.node(Node{
		Kind:  KindConst,
		Shape: append([]int{}, t.Shape()...),
		Data:  data,
	}), nil
}

func (b *builder) encoder(cfg models.Config, input int) (int, error) {
	embed, err := b.param("encoder.embed")
	if err != nil {
		return 0, err
	}
	x := b.node(Node{Kind: KindEmbed, Inputs: []int{embed, input}})

	pos := models.SinusoidalTable(cfg.SeqLen, cfg.EmbedDim)
	posConst := b.node(Node{
		Kind:  KindConst,
		Shape: append([]int{}, pos.Shape()...),
		Data:  pos.Data,
	})
	x = b.node(Node{Kind: KindAddSeq, Inputs: []int{x, posConst}})

	numConvs := len(cfg.ConvChannels) + 1
	for i := range numConvs {
		w, err := b.param(fmt.Sprintf("encoder.conv%d.w", i))
		if err != nil {
			return 0, err
		}
		bias, err := b.param(fmt.Sprintf("encoder.conv%d.b", i))
		if err != nil {
			return 0, err
		}
		x = b.node(Node{Kind: KindConv1D, Inputs: []int{x, w, bias}})
		if cfg.Light {
			x = b.node(Node{Kind: KindReLU, Inputs: []int{x}})
		} else {
			x = b.node(Node{Kind: KindGELU, Inputs: []int{x}})
		}
	}
	return x, nil
}

func (b *builder) decoder(cfg models.Config, features int) (int, error) {
	queries, err := b.param("decoder.queries")
	if err != nil {
		return 0, err
	}
	slots := b.node(Node{
		Kind:   KindBroadcast,
		Inputs: []int{queries},
	})

	headDim := cfg.HiddenDim / cfg.NumHeads
	for i := range cfg.DecoderLayers {
		prefix := fmt.Sprintf("decoder.layer%d", i)

		attended, err := b.crossAttend(cfg, prefix, slots, features,
			1/float32(math.Sqrt(float64(headDim))))
		if err != nil {
			return 0, err
		}
		slots, err = b.residualNorm(prefix+".norm", slots, attended)
		if err != nil {
			return 0, err
		}
	}

	w1, err := b.param("decoder.ffn.w1")
	if err != nil {
		return 0, err
	}
	b1, err := b.param("decoder.ffn.b1")
	if err != nil {
		return 0, err
	}
	w2, err := b.param("decoder.ffn.w2")
	if err != nil {
		return 0, err
	}
	b2, err := b.param("decoder.ffn.b2")
	if err != nil {
		return 0, err
	}
	hidden := b.node(Node{Kind: KindLinear, Inputs: []int{slots, w1, b1}})
	hidden = b.node(Node{Kind: KindGELU, Inputs: []int{hidden}})
	ffnOut := b.node(Node{Kind: KindLinear, Inputs: []int{hidden, w2, b2}})

	return b.residualNorm("decoder.ffn.norm", slots, ffnOut)
}

func (b *builder) crossAttend(
	cfg models.Config,
	prefix string,
	slots, features int,
	scale float32,
) (int, error) {

	proj := func(x int, suffix string) (int, error) {
		w, err := b.param(prefix + ".w" + suffix)
		if err != nil {
			return 0, err
		}
		bias, err := b.param(prefix + ".b" + suffix)
		if err != nil {
			return 0, err
		}
		linear := b.node(Node{Kind: KindLinear, Inputs: []int{x, w, bias}})
		return b.node(Node{
			Kind:   KindHeads,
			Inputs: []int{linear},
			Ints:   []int{cfg.NumHeads},
		}), nil
	}

	q, err := proj(slots, "q")
	if err != nil {
		return 0, err
	}
	k, err := proj(features, "k")
	if err != nil {
		return 0, err
	}
	v, err := proj(features, "v")
	if err != nil {
		return 0, err
	}

	kt := b.node(Node{Kind: KindTransposeLast2, Inputs: []int{k}})
	scores := b.node(Node{Kind: KindMatMul, Inputs: []int{q, kt}})
	scores = b.node(Node{
		Kind:   KindScale,
		Inputs: []int{scores},
		Floats: []float32{scale},
	})
	attn := b.node(Node{Kind: KindSoftmax, Inputs: []int{scores}})
	out := b.node(Node{Kind: KindMatMul, Inputs: []int{attn, v}})
	out = b.node(Node{Kind: KindMergeHeads, Inputs: []int{out}})

	wo, err := b.param(prefix + ".wo")
	if err != nil {
		return 0, err
	}
	bo, err := b.param(prefix + ".bo")
	if err != nil {
		return 0, err
	}
	return b.node(Node{Kind: KindLinear, Inputs: []int{out, wo, bo}}), nil
}

func (b *builder) residualNorm(prefix string, x, delta int) (int, error) {
	gamma, err := b.param(prefix + ".gamma")
	if err != nil {
		return 0, err
	}
	beta, err := b.param(prefix + ".beta")
	if err != nil {
		return 0, err
	}
	sum := b.node(Node{Kind: KindAdd, Inputs: []int{x, delta}})
	return b.node(Node{
		Kind:   KindLayerNorm,
		Inputs: []int{sum, gamma, beta},
		Floats: []float32{1e-5},
	}), nil
}

func (b *builder) pooledSlots(cfg models.Config, features int) (int, error) {
	pooled := b.node(Node{Kind: KindMeanSeq, Inputs: []int{features}})
	w, err := b.param("proj.w")
	if err != nil {
		return 0, err
	}
	bias, err := b.param("proj.b")
	if err != nil {
		return 0, err
	}
	projected := b.node(Node{Kind: KindLinear, Inputs: []int{pooled, w, bias}})
	return b.node(Node{
		Kind:   KindReshapeSlots,
		Inputs: []int{projected},
		Ints:   []int{cfg.NumSlots, cfg.HiddenDim},
	}), nil
}
