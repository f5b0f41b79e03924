package exports

import (
	"fmt"

	"github.com/slotnet/slotnet/models"
)

// Validate checks the graph for structural soundness: version, node
// arities, topological input references, constant payloads matching their
// declared shapes, consistent tensor shapes along every edge, and one
// output per classification head. A graph that fails here must never be
// written to disk or evaluated.
func (g *Graph) Validate() error {
	if g.Version != graphVersion {
		return fmt.Errorf("unsupported graph version %d", g.Version)
	}
	if err := g.Config.Validate(); err != nil {
		return fmt.Errorf("bad config: %w", err)
	}
	if len(g.Nodes) == 0 {
		return fmt.Errorf("empty graph")
	}

	for i, n := range g.Nodes {
		want, ok := numInputs[n.Kind]
		if !ok {
			return fmt.Errorf("node %d: unknown kind %s", i, n.Kind)
		}
		if len(n.Inputs) != want {
			return fmt.Errorf("node %d (%s): %d inputs, want %d",
				i, n.Kind, len(n.Inputs), want)
		}
		for _, in := range n.Inputs {
			if in < 0 || in >= i {
				return fmt.Errorf("node %d (%s): input %d out of order",
					i, n.Kind, in)
			}
		}
		if n.Kind == KindConst {
			size := 1
			for _, d := range n.Shape {
				if d <= 0 {
					return fmt.Errorf("node %d: bad const dim %d", i, d)
				}
				size *= d
			}
			if len(n.Shape) == 0 || len(n.Data) != size {
				return fmt.Errorf("node %d: const payload %d does not match shape %v",
					i, len(n.Data), n.Shape)
			}
		}
	}

	if _, err := g.inferShapes(); err != nil {
		return err
	}

	for _, spec := range models.HeadTable() {
		idx, ok := g.Outputs[spec.Name]
		if !ok {
			return fmt.Errorf("missing output %s", spec.Name)
		}
		if idx < 0 || idx >= len(g.Nodes) {
			return fmt.Errorf("output %s points at node %d", spec.Name, idx)
		}
	}
	return nil
}

// inferShapes runs a shape-only evaluation with a batch of one, catching
// dimension mismatches without touching any float data.
func (g *Graph) inferShapes() ([][]int, error) {
	cfg := g.Config
	shapes := make([][]int, len(g.Nodes))

	fail := func(i int, format string, args ...any) ([][]int, error) {
		return nil, fmt.Errorf("node %d (%s): %s",
			i, g.Nodes[i].Kind, fmt.Sprintf(format, args...))
	}

	for i, n := range g.Nodes {
		in := func(j int) []int { return shapes[n.Inputs[j]] }

		switch n.Kind {

		case KindInput:
			shapes[i] = []int{1, cfg.SeqLen}

		case KindConst:
			shapes[i] = n.Shape

		case KindEmbed:
			table, ids := in(0), in(1)
			if len(table) != 2 {
				return fail(i, "embedding table shape %v", table)
			}
			shapes[i] = []int{ids[0], ids[1], table[1]}

		case KindAddSeq:
			x, table := in(0), in(1)
			if len(x) < 2 || len(table) != 2 {
				return fail(i, "shapes %v + %v", x, table)
			}
			rows, cols := x[len(x)-2], x[len(x)-1]
			if table[0] != rows || table[1] != cols {
				return fail(i, "table %v against %v", table, x)
			}
			shapes[i] = x

		case KindConv1D:
			x, w, b := in(0), in(1), in(2)
			if len(x) != 3 || len(w) != 3 || len(b) != 1 {
				return fail(i, "shapes %v %v %v", x, w, b)
			}
			if w[1] != x[2] || w[2] != 3 || b[0] != w[0] {
				return fail(i, "kernel %v against input %v", w, x)
			}
			shapes[i] = []int{x[0], x[1], w[0]}

		case KindGELU, KindReLU, KindSoftmax:
			shapes[i] = in(0)

		case KindScale:
			if len(n.Floats) != 1 {
				return fail(i, "missing factor")
			}
			shapes[i] = in(0)

		case KindBroadcast:
			queries := in(0)
			if len(queries) != 2 {
				return fail(i, "queries shape %v", queries)
			}
			shapes[i] = []int{1, queries[0], queries[1]}

		case KindLinear:
			x, w, b := in(0), in(1), in(2)
			if len(x) < 1 || len(w) != 2 || len(b) != 1 {
				return fail(i, "shapes %v %v %v", x, w, b)
			}
			if x[len(x)-1] != w[1] || b[0] != w[0] {
				return fail(i, "weight %v against input %v", w, x)
			}
			out := append(append([]int{}, x[:len(x)-1]...), w[0])
			shapes[i] = out

		case KindHeads:
			x := in(0)
			if len(n.Ints) != 1 || len(x) != 3 {
				return fail(i, "shape %v args %v", x, n.Ints)
			}
			numHeads := n.Ints[0]
			if numHeads <= 0 || x[2]%numHeads != 0 {
				return fail(i, "%d heads against width %d", numHeads, x[2])
			}
			shapes[i] = []int{x[0], numHeads, x[1], x[2] / numHeads}

		case KindMergeHeads:
			x := in(0)
			if len(x) != 4 {
				return fail(i, "shape %v", x)
			}
			shapes[i] = []int{x[0], x[2], x[1] * x[3]}

		case KindTransposeLast2:
			x := in(0)
			if len(x) < 2 {
				return fail(i, "shape %v", x)
			}
			out := append([]int{}, x...)
			out[len(out)-2], out[len(out)-1] = out[len(out)-1], out[len(out)-2]
			shapes[i] = out

		case KindAdd:
			a, b := in(0), in(1)
			if !equalShape(a, b) {
				return fail(i, "shapes %v + %v", a, b)
			}
			shapes[i] = a

		case KindMatMul:
			a, b := in(0), in(1)
			if len(a) < 2 || len(b) < 2 || len(a) != len(b) {
				return fail(i, "shapes %v x %v", a, b)
			}
			if !equalShape(a[:len(a)-2], b[:len(b)-2]) {
				return fail(i, "batch dims %v x %v", a, b)
			}
			if a[len(a)-1] != b[len(b)-2] {
				return fail(i, "inner dims %v x %v", a, b)
			}
			out := append(append([]int{}, a[:len(a)-1]...), b[len(b)-1])
			shapes[i] = out

		case KindLayerNorm:
			x, gamma, beta := in(0), in(1), in(2)
			last := x[len(x)-1]
			if len(gamma) != 1 || len(beta) != 1 ||
				gamma[0] != last || beta[0] != last {
				return fail(i, "affine %v/%v against %v", gamma, beta, x)
			}
			if len(n.Floats) != 1 {
				return fail(i, "missing epsilon")
			}
			shapes[i] = x

		case KindMeanSeq:
			x := in(0)
			if len(x) != 3 {
				return fail(i, "shape %v", x)
			}
			shapes[i] = []int{x[0], x[2]}

		case KindReshapeSlots:
			x := in(0)
			if len(n.Ints) != 2 || len(x) != 2 {
				return fail(i, "shape %v args %v", x, n.Ints)
			}
			slots, width := n.Ints[0], n.Ints[1]
			if x[1] != slots*width {
				return fail(i, "cannot reshape %v to (%d, %d)", x, slots, width)
			}
			shapes[i] = []int{x[0], slots, width}

		default:
			return fail(i, "no shape rule")
		}
	}
	return shapes, nil
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
